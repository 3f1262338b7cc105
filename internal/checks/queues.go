package checks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// QueueResolver determines which queues a run inspects.
type QueueResolver struct {
	runner Runner
	list   Command
	log    *slog.Logger
}

func NewQueueResolver(runner Runner, list Command, log *slog.Logger) *QueueResolver {
	return &QueueResolver{runner: runner, list: list, log: log}
}

// List returns the system queue names in listing order. Blank lines are skipped.
func (r *QueueResolver) List(ctx context.Context) ([]string, error) {
	output, err := r.runner.Run(ctx, r.list.Path, r.list.For("")...)
	if err != nil {
		return nil, fmt.Errorf("list queues: %w", err)
	}

	var queues []string
	for _, line := range splitLines(output) {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		queues = append(queues, name)
	}

	r.log.Debug("queues listed", slog.Int("count", len(queues)), slog.Any("queues", queues))

	return queues, nil
}

// Resolve returns the target set. With an empty requested name it is the full
// listing; otherwise the requested name must match a listed queue exactly, and
// found reports whether it did.
func (r *QueueResolver) Resolve(ctx context.Context, requested string) (targets []string, found bool, err error) {
	queues, err := r.List(ctx)
	if err != nil {
		return nil, false, err
	}

	if requested == "" {
		return queues, true, nil
	}

	for _, q := range queues {
		if q == requested {
			return []string{requested}, true, nil
		}
	}

	return nil, false, nil
}
