package checks

import (
	"context"
	"log/slog"

	"ozzus/printq-probe/internal/lib/logger/sl"
)

// ElevatedRestarter re-enables a queue through a non-interactive elevation
// wrapper, e.g. "sudo -n /usr/bin/enable <queue>". The result is only logged;
// recovery is verified by the next run.
type ElevatedRestarter struct {
	runner  Runner
	elevate Command
	restart Command
	log     *slog.Logger
}

func NewElevatedRestarter(runner Runner, elevate, restart Command, log *slog.Logger) *ElevatedRestarter {
	return &ElevatedRestarter{
		runner:  runner,
		elevate: elevate,
		restart: restart,
		log:     log,
	}
}

func (r *ElevatedRestarter) Remediate(ctx context.Context, queue string) {
	args := append(r.elevate.For(queue), r.restart.Path)
	args = append(args, r.restart.For(queue)...)

	if _, err := r.runner.Run(ctx, r.elevate.Path, args...); err != nil {
		r.log.Debug("restart attempt failed", slog.String("queue", queue), sl.Err(err))
		return
	}

	r.log.Debug("restart issued", slog.String("queue", queue))
}
