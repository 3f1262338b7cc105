package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"ozzus/printq-probe/internal/backend"
	"ozzus/printq-probe/internal/checks"
	"ozzus/printq-probe/internal/config"
	"ozzus/printq-probe/internal/domain"
	"ozzus/printq-probe/internal/lib/logger/sl"
	"ozzus/printq-probe/internal/lib/logger/slogpretty"
	"ozzus/printq-probe/internal/repository"
	"ozzus/printq-probe/internal/repository/kafka"
	"ozzus/printq-probe/internal/service"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code. The verdict line is always the last
// thing written to stdout.
func run(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("printq", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)

	help := flags.BoolP("help", "h", false, "print usage and exit")
	verbose := flags.BoolP("verbose", "v", false, "trace every step to stdout")
	configPath := flags.StringP("config", "c", "", "path to printq.yaml")

	if err := flags.Parse(args); err != nil || *help || flags.NArg() > 1 {
		printUsage(stdout, flags)
		return domain.SeverityUnknown.ExitCode()
	}

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "warning: .env: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return emit(stdout, domain.NewVerdict(domain.SeverityUnknown, fmt.Sprintf("UNKNOWN - %v", err)))
	}

	log := setupLogger(cfg.Env, *verbose, stdout, stderr)

	log.Debug("starting print queue check",
		slog.String("env", cfg.Env),
		slog.String("host", cfg.Host),
		slog.String("queue", flags.Arg(0)),
	)

	probe, closeReporters := buildService(cfg, log)

	v := probe.Run(context.Background(), flags.Arg(0))
	closeReporters()

	return emit(stdout, v)
}

func emit(stdout io.Writer, v domain.Verdict) int {
	fmt.Fprintln(stdout, v.Message)
	return v.ExitCode
}

func buildService(cfg *config.Config, log *slog.Logger) (*service.ProbeService, func()) {
	osFs := afero.NewOsFs()
	runner := checks.ExecRunner{}

	restarter := checks.NewElevatedRestarter(
		runner,
		checks.Command{Path: cfg.Commands.Elevate.Path, Args: cfg.Commands.Elevate.Args},
		checks.Command{Path: cfg.Commands.Restart.Path, Args: cfg.Commands.Restart.Args},
		log,
	)

	probe := service.NewProbeService(
		checks.NewPreconditionValidator(osFs, checks.UnixAccess{}, log),
		checks.NewQueueResolver(runner, checks.Command{Path: cfg.Commands.List.Path, Args: cfg.Commands.List.Args}, log),
		checks.NewStatusInspector(
			runner,
			checks.Command{Path: cfg.Commands.Status.Path, Args: cfg.Commands.Status.Args},
			restarter,
			cfg.Inspect.Concurrency,
			log,
		),
		checks.NewBacklogCounter(osFs, cfg.Spool.Dir, log),
		service.Config{
			Host:                cfg.Host,
			RequiredTools:       cfg.RequiredTools(),
			QueuedJobsThreshold: cfg.Thresholds.QueuedJobs,
			ReportTimeout:       cfg.GetReportTimeout(),
		},
		log,
	)

	var closers []func() error

	if cfg.Report.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Report.Kafka.Brokers, cfg.Report.Kafka.Topic)
		closers = append(closers, producer.Close)
		probe.AddReporter(repository.NewKafkaReportRepository(producer, log))
	}

	if cfg.Report.Backend.Enabled {
		client, err := backend.NewClient(cfg.Report.Backend.URL, cfg.Report.Backend.Name, cfg.Report.Backend.Token, cfg.GetReportTimeout())
		if err != nil {
			log.Warn("backend reporting disabled", sl.Err(err))
		} else {
			probe.AddReporter(repository.NewBackendReportRepository(client, log))
		}
	}

	return probe, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("failed to close reporter", sl.Err(err))
			}
		}
	}
}

// setupLogger keeps stdout free for the verdict unless verbose tracing is on;
// otherwise only warnings reach the operator on stderr.
func setupLogger(env string, verbose bool, stdout, stderr io.Writer) *slog.Logger {
	out, level := stderr, slog.LevelWarn
	if verbose {
		out, level = stdout, slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	switch env {
	case envDev, envProd:
		return slog.New(slog.NewJSONHandler(out, opts))
	case envLocal:
		return setupPrettySlog(out, opts)
	default:
		return setupPrettySlog(out, opts)
	}
}

func setupPrettySlog(out io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	prettyOpts := slogpretty.PrettyHandlerOptions{
		SlogOpts: opts,
	}

	return slog.New(prettyOpts.NewPrettyHandler(out))
}

func printUsage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: printq [--help|-h] [--verbose|-v] [--config|-c path] [queue-name]")
	fmt.Fprintln(w, "Checks print queue state and exits 0=OK 1=WARNING 2=CRITICAL 3=UNKNOWN.")
	fmt.Fprint(w, flags.FlagUsages())
}
