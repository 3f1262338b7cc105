package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"
	"syscall"
	"testing"

	"github.com/spf13/afero"

	"ozzus/printq-probe/internal/checks"
	"ozzus/printq-probe/internal/domain"
)

type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, cmdline)
	out, ok := f.outputs[cmdline]
	if !ok {
		return "", fmt.Errorf("%s: unexpected command", cmdline)
	}
	return out, nil
}

func (f *fakeRunner) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type allowAll struct{}

func (allowAll) CanExecute(string) error { return nil }

type denyPaths map[string]bool

func (d denyPaths) CanExecute(path string) error {
	if d[path] {
		return syscall.EACCES
	}
	return nil
}

type captureReporter struct {
	reports []domain.Report
	err     error
}

func (c *captureReporter) SendReport(_ context.Context, report domain.Report) error {
	c.reports = append(c.reports, report)
	return c.err
}

const (
	lsallq  = "/usr/bin/lsallq"
	enq     = "/usr/bin/enq"
	enable  = "/usr/bin/enable"
	sudo    = "/usr/bin/sudo"
	spool   = "/var/spool/lpd/qdir"
	restart = sudo + " -n " + enable
)

type fixture struct {
	fs     afero.Fs
	runner *fakeRunner
	access checks.AccessChecker
}

func newFixture(t *testing.T, listing string, status map[string]string, spoolEntries int) *fixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, tool := range []string{lsallq, enq, enable, sudo} {
		if err := afero.WriteFile(fs, tool, nil, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := fs.Chmod(tool, os.FileMode(0o755)); err != nil {
			t.Fatal(err)
		}
	}
	if err := fs.MkdirAll(spool, 0o755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < spoolEntries; i++ {
		if err := afero.WriteFile(fs, fmt.Sprintf("%s/j%03d", spool, i), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	runner := &fakeRunner{outputs: map[string]string{lsallq: listing}}
	for q, out := range status {
		runner.outputs[enq+" -q -P "+q] = out
		runner.outputs[restart+" "+q] = ""
	}

	return &fixture{fs: fs, runner: runner, access: allowAll{}}
}

func (f *fixture) service(concurrency int) *ProbeService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := f.runner

	restarter := checks.NewElevatedRestarter(runner,
		checks.Command{Path: sudo, Args: []string{"-n"}},
		checks.Command{Path: enable, Args: []string{"{queue}"}},
		log,
	)

	return NewProbeService(
		checks.NewPreconditionValidator(f.fs, f.access, log),
		checks.NewQueueResolver(runner, checks.Command{Path: lsallq}, log),
		checks.NewStatusInspector(runner, checks.Command{Path: enq, Args: []string{"-q", "-P", "{queue}"}}, restarter, concurrency, log),
		checks.NewBacklogCounter(f.fs, spool, log),
		Config{
			Host:                "aix01",
			RequiredTools:       []domain.Tool{{Path: lsallq}, {Path: enq}, {Path: enable, Elevated: true}, {Path: sudo}},
			QueuedJobsThreshold: 50,
		},
		log,
	)
}

func TestProbeService_DownQueueIsCritical(t *testing.T) {
	f := newFixture(t, "q1\nq2\n", map[string]string{
		"q1": "Queue Dev Status\n------\nq1 lp0 READY\n",
		"q2": "Queue Dev Status\n------\nq2 lp1 DOWN\n",
	}, 3)

	reporter := &captureReporter{}
	svc := f.service(1)
	svc.AddReporter(reporter)

	v := svc.Run(context.Background(), "")

	if v.Severity != domain.SeverityCritical || v.ExitCode != 2 {
		t.Fatalf("verdict = %+v, want CRITICAL/2", v)
	}
	if got := f.runner.count(restart + " q2"); got != 1 {
		t.Fatalf("restart q2 issued %d times, want 1", got)
	}
	if got := f.runner.count(restart + " q1"); got != 0 {
		t.Fatalf("restart q1 issued %d times, want 0", got)
	}

	if len(reporter.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(reporter.reports))
	}
	want := domain.Tally{Ready: 1, Down: 1, DownQueues: []string{"q2"}, QueuedJobs: 3}
	if got := reporter.reports[0].Tally; !reflect.DeepEqual(got, want) {
		t.Fatalf("tally = %+v, want %+v", got, want)
	}
	if reporter.reports[0].RunID == "" || reporter.reports[0].Host != "aix01" {
		t.Fatalf("report not stamped: %+v", reporter.reports[0])
	}
}

func TestProbeService_BacklogIsWarning(t *testing.T) {
	f := newFixture(t, "q1\n", map[string]string{
		"q1": "q1 lp0 READY\n",
	}, 60)

	v := f.service(1).Run(context.Background(), "")

	if v.Severity != domain.SeverityWarning || v.ExitCode != 1 {
		t.Fatalf("verdict = %+v, want WARNING/1", v)
	}
	if !strings.Contains(v.Message, "60 job(s) queued") {
		t.Fatalf("message = %q", v.Message)
	}
}

func TestProbeService_AllReadyIsOK(t *testing.T) {
	f := newFixture(t, "q1\nq2\n", map[string]string{
		"q1": "q1 lp0 READY\n",
		"q2": "q2 lp1 READY\n",
	}, 50)

	v := f.service(4).Run(context.Background(), "")

	if v.Severity != domain.SeverityOK || v.ExitCode != 0 {
		t.Fatalf("verdict = %+v, want OK/0", v)
	}
}

func TestProbeService_SingleQueue(t *testing.T) {
	f := newFixture(t, "q1\nq2\n", map[string]string{
		"q1": "q1 lp0 READY\n",
		"q2": "q2 lp1 DOWN\n",
	}, 0)

	v := f.service(1).Run(context.Background(), "q1")

	if v.Severity != domain.SeverityOK {
		t.Fatalf("verdict = %+v, want OK", v)
	}
	if got := f.runner.count(enq + " -q -P q2"); got != 0 {
		t.Fatalf("q2 was queried %d times", got)
	}
}

func TestProbeService_UnknownQueueIsCriticalWithoutStatusQuery(t *testing.T) {
	f := newFixture(t, "q1\n", map[string]string{"q1": "q1 lp0 DOWN\n"}, 0)

	v := f.service(1).Run(context.Background(), "nope")

	if v.Severity != domain.SeverityCritical || v.ExitCode != 2 {
		t.Fatalf("verdict = %+v, want CRITICAL/2", v)
	}
	if !strings.Contains(v.Message, "nope") {
		t.Fatalf("message = %q", v.Message)
	}
	if got := f.runner.count(enq); got != 0 {
		t.Fatalf("status queried %d times, want 0", got)
	}
}

func TestProbeService_MissingToolIsUnknown(t *testing.T) {
	f := newFixture(t, "q1\n", map[string]string{"q1": "q1 lp0 READY\n"}, 0)
	if err := f.fs.Remove(enable); err != nil {
		t.Fatal(err)
	}

	v := f.service(1).Run(context.Background(), "")

	if v.Severity != domain.SeverityUnknown || v.ExitCode != 3 {
		t.Fatalf("verdict = %+v, want UNKNOWN/3", v)
	}
	if !strings.Contains(v.Message, enable) {
		t.Fatalf("message = %q", v.Message)
	}
	if len(f.runner.calls) != 0 {
		t.Fatalf("commands run before precondition failure: %v", f.runner.calls)
	}
}

func TestProbeService_StatusToolNotRunnableByUserIsUnknown(t *testing.T) {
	f := newFixture(t, "q1\n", map[string]string{"q1": ""}, 0)
	f.access = denyPaths{enq: true}

	v := f.service(1).Run(context.Background(), "")

	if v.Severity != domain.SeverityUnknown || v.ExitCode != 3 {
		t.Fatalf("verdict = %+v, want UNKNOWN/3", v)
	}
	if !strings.Contains(v.Message, enq) {
		t.Fatalf("message = %q", v.Message)
	}
	if len(f.runner.calls) != 0 {
		t.Fatalf("commands run before precondition failure: %v", f.runner.calls)
	}
}

func TestProbeService_ListingFailureIsUnknown(t *testing.T) {
	f := newFixture(t, "", nil, 0)
	delete(f.runner.outputs, lsallq)

	v := f.service(1).Run(context.Background(), "")

	if v.Severity != domain.SeverityUnknown || v.ExitCode != 3 {
		t.Fatalf("verdict = %+v, want UNKNOWN/3", v)
	}
}

func TestProbeService_UnreadableSpoolDegradesToZero(t *testing.T) {
	f := newFixture(t, "q1\n", map[string]string{"q1": "q1 lp0 READY\n"}, 0)
	if err := f.fs.RemoveAll(spool); err != nil {
		t.Fatal(err)
	}

	v := f.service(1).Run(context.Background(), "")

	if v.Severity != domain.SeverityOK || !strings.Contains(v.Message, "0 job(s) queued") {
		t.Fatalf("verdict = %+v, want OK with 0 jobs", v)
	}
}

func TestProbeService_ReporterErrorKeepsVerdict(t *testing.T) {
	f := newFixture(t, "q1\n", map[string]string{"q1": "q1 lp0 READY\n"}, 0)

	failing := &captureReporter{err: errors.New("broker unavailable")}
	ok := &captureReporter{}
	svc := f.service(1)
	svc.AddReporter(failing)
	svc.AddReporter(ok)

	v := svc.Run(context.Background(), "")

	if v.ExitCode != 0 {
		t.Fatalf("verdict = %+v, want exit 0", v)
	}
	if len(ok.reports) != 1 {
		t.Fatal("second reporter was skipped after the first failed")
	}
}
