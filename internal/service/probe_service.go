package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ozzus/printq-probe/internal/domain"
	"ozzus/printq-probe/internal/lib/logger/sl"
	"ozzus/printq-probe/internal/repository"
	"ozzus/printq-probe/internal/verdict"
)

type PreconditionValidator interface {
	Validate(tools []domain.Tool) error
}

type QueueResolver interface {
	Resolve(ctx context.Context, requested string) (targets []string, found bool, err error)
}

type StatusInspector interface {
	Inspect(ctx context.Context, queues []string) domain.Tally
}

type BacklogCounter interface {
	Count() int
}

type Config struct {
	Host                string
	RequiredTools       []domain.Tool
	QueuedJobsThreshold int
	ReportTimeout       time.Duration
}

// ProbeService runs the check pipeline once: preconditions, queue resolution,
// status inspection with remediation, backlog count, verdict.
type ProbeService struct {
	preconditions PreconditionValidator
	resolver      QueueResolver
	inspector     StatusInspector
	backlog       BacklogCounter
	reporters     []repository.ReportRepository
	cfg           Config
	log           *slog.Logger
	now           func() time.Time
}

func NewProbeService(
	preconditions PreconditionValidator,
	resolver QueueResolver,
	inspector StatusInspector,
	backlog BacklogCounter,
	cfg Config,
	log *slog.Logger,
) *ProbeService {
	if cfg.ReportTimeout <= 0 {
		cfg.ReportTimeout = 5 * time.Second
	}

	return &ProbeService{
		preconditions: preconditions,
		resolver:      resolver,
		inspector:     inspector,
		backlog:       backlog,
		cfg:           cfg,
		log:           log,
		now:           time.Now,
	}
}

// AddReporter registers a sink that receives the report of every run.
func (s *ProbeService) AddReporter(r repository.ReportRepository) {
	s.reporters = append(s.reporters, r)
}

// Run executes the pipeline for one queue, or for all queues when queue is
// empty, and returns the verdict. Reporting failures never change it.
func (s *ProbeService) Run(ctx context.Context, queue string) domain.Verdict {
	startedAt := s.now()

	v, tally := s.check(ctx, queue)

	s.log.Debug("run finished",
		slog.String("severity", v.Severity.String()),
		slog.Int("exit_code", v.ExitCode),
		slog.Duration("took", s.now().Sub(startedAt)),
	)

	s.publish(ctx, domain.Report{
		RunID:     uuid.NewString(),
		Host:      s.cfg.Host,
		Queue:     queue,
		Severity:  v.Severity.String(),
		ExitCode:  v.ExitCode,
		Message:   v.Message,
		Tally:     tally,
		StartedAt: startedAt.UTC(),
		Duration:  s.now().Sub(startedAt).Milliseconds(),
	})

	return v
}

func (s *ProbeService) check(ctx context.Context, queue string) (domain.Verdict, domain.Tally) {
	if err := s.preconditions.Validate(s.cfg.RequiredTools); err != nil {
		s.log.Debug("precondition failed", sl.Err(err))
		return verdict.MissingTool(err), domain.Tally{}
	}

	targets, found, err := s.resolver.Resolve(ctx, queue)
	if err != nil {
		s.log.Warn("queue listing failed", sl.Err(err))
		return verdict.ListingFailed(err), domain.Tally{}
	}
	if !found {
		s.log.Debug("requested queue not found", slog.String("queue", queue))
		return verdict.InvalidQueue(queue), domain.Tally{}
	}

	s.log.Debug("inspecting queues", slog.Any("queues", targets))

	tally := s.inspector.Inspect(ctx, targets)
	tally.QueuedJobs = s.backlog.Count()

	s.log.Debug("tally complete",
		slog.Int("ready", tally.Ready),
		slog.Int("down", tally.Down),
		slog.Any("down_queues", tally.DownQueues),
		slog.Int("queued_jobs", tally.QueuedJobs),
	)

	return verdict.Reduce(tally, s.cfg.QueuedJobsThreshold), tally
}

func (s *ProbeService) publish(ctx context.Context, report domain.Report) {
	if len(s.reporters) == 0 {
		return
	}

	reportCtx, cancel := context.WithTimeout(ctx, s.cfg.ReportTimeout)
	defer cancel()

	var errs []error
	for _, r := range s.reporters {
		if err := r.SendReport(reportCtx, report); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.log.Warn("report delivery failed", slog.String("run_id", report.RunID), sl.Err(err))
	}
}
