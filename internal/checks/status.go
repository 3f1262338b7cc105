package checks

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sourcegraph/conc/iter"

	"ozzus/printq-probe/internal/domain"
	"ozzus/printq-probe/internal/lib/logger/sl"
)

const (
	headerPrefix    = "Queue"
	separatorPrefix = "-"
	echoSuffix      = ":"
	readyMarker     = "READY"
	downMarker      = "DOWN"
)

// Remediator tries to bring a down queue back. Failures are not reported.
type Remediator interface {
	Remediate(ctx context.Context, queue string)
}

// StatusInspector queries every target queue and tallies READY and DOWN lines.
type StatusInspector struct {
	runner      Runner
	status      Command
	remediator  Remediator
	concurrency int
	log         *slog.Logger
}

func NewStatusInspector(runner Runner, status Command, remediator Remediator, concurrency int, log *slog.Logger) *StatusInspector {
	if concurrency <= 0 {
		concurrency = 1
	}

	return &StatusInspector{
		runner:      runner,
		status:      status,
		remediator:  remediator,
		concurrency: concurrency,
		log:         log,
	}
}

// Inspect returns the combined tally of all queues. Per-queue tallies are
// summed in target order, so DownQueues does not depend on concurrency.
func (i *StatusInspector) Inspect(ctx context.Context, queues []string) domain.Tally {
	mapper := iter.Mapper[string, domain.Tally]{MaxGoroutines: i.concurrency}

	tallies := mapper.Map(queues, func(queue *string) domain.Tally {
		return i.inspectQueue(ctx, *queue)
	})

	var total domain.Tally
	for _, t := range tallies {
		total = total.Add(t)
	}

	return total
}

func (i *StatusInspector) inspectQueue(ctx context.Context, queue string) domain.Tally {
	start := time.Now()

	output, err := i.runner.Run(ctx, i.status.Path, i.status.For(queue)...)
	if err != nil {
		// whatever was printed before the failure is still parsed
		i.log.Warn("status query failed", slog.String("queue", queue), sl.Err(err))
	}

	var tally domain.Tally
	for _, obs := range ParseStatus(queue, output) {
		tally.Observe(obs)

		if obs.State == domain.QueueStateDown {
			i.log.Debug("queue is down, restarting", slog.String("queue", queue))
			i.remediator.Remediate(ctx, queue)
		}
	}

	i.log.Debug("queue inspected",
		slog.String("queue", queue),
		slog.Int("ready", tally.Ready),
		slog.Int("down", tally.Down),
		slog.String("took", formatSeconds(time.Since(start))),
	)

	return tally
}

// ParseStatus classifies each line of a status query independently. Header,
// separator and queue echo lines produce nothing; any other line produces one
// observation. READY wins over DOWN when a line carries both.
func ParseStatus(queue, output string) []domain.QueueObservation {
	var observations []domain.QueueObservation

	for _, line := range splitLines(output) {
		state, ok := classifyLine(line)
		if !ok {
			continue
		}
		observations = append(observations, domain.QueueObservation{Queue: queue, State: state})
	}

	return observations
}

func classifyLine(line string) (domain.QueueState, bool) {
	switch {
	case strings.HasPrefix(line, headerPrefix):
		return "", false
	case strings.HasPrefix(line, separatorPrefix):
		return "", false
	case strings.HasSuffix(line, echoSuffix):
		return "", false
	case strings.Contains(line, readyMarker):
		return domain.QueueStateReady, true
	case strings.Contains(line, downMarker):
		return domain.QueueStateDown, true
	default:
		return domain.QueueStateOther, true
	}
}
