package checks

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// fakeRunner answers commands from a table keyed by "name arg1 arg2".
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (f *fakeRunner) on(cmdline, output string, err error) *fakeRunner {
	f.outputs[cmdline] = output
	if err != nil {
		f.errs[cmdline] = err
	}
	return f
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, cmdline)
	return f.outputs[cmdline], f.errs[cmdline]
}

func (f *fakeRunner) called(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
