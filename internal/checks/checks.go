package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				return stdout.String(), fmt.Errorf("%s exited with code %d", name, exitErr.ExitCode())
			}
			return stdout.String(), fmt.Errorf("%s exited with code %d: %s", name, exitErr.ExitCode(), msg)
		}
		return stdout.String(), fmt.Errorf("run %s: %w", name, err)
	}

	return stdout.String(), nil
}

// Command is an executable with an argument template.
type Command struct {
	Path string
	Args []string
}

// For returns the arguments with every "{queue}" replaced by queue.
func (c Command) For(queue string) []string {
	return expandArgs(c.Args, queue)
}
