package checks

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/afero"

	"ozzus/printq-probe/internal/domain"
)

// MissingToolError reports a required executable that is absent or not runnable.
type MissingToolError struct {
	Path   string
	Reason string
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("required tool %s %s", e.Path, e.Reason)
}

type PreconditionValidator struct {
	fs     afero.Fs
	access AccessChecker
	log    *slog.Logger
}

func NewPreconditionValidator(fsys afero.Fs, access AccessChecker, log *slog.Logger) *PreconditionValidator {
	return &PreconditionValidator{fs: fsys, access: access, log: log}
}

// Validate checks every tool in order and stops at the first one that is
// missing, a directory, has no execute bit set, or, unless elevated, cannot
// be executed by the current user.
func (v *PreconditionValidator) Validate(tools []domain.Tool) error {
	for _, tool := range tools {
		path := tool.Path

		info, err := v.fs.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &MissingToolError{Path: path, Reason: "is missing"}
			}
			return &MissingToolError{Path: path, Reason: fmt.Sprintf("cannot be inspected: %v", err)}
		}

		if info.IsDir() {
			return &MissingToolError{Path: path, Reason: "is a directory"}
		}

		if info.Mode().Perm()&0o111 == 0 {
			return &MissingToolError{Path: path, Reason: "is not executable"}
		}

		if !tool.Elevated {
			if err := v.access.CanExecute(path); err != nil {
				return &MissingToolError{Path: path, Reason: fmt.Sprintf("is not executable by the current user: %v", err)}
			}
		}

		v.log.Debug("precondition ok", slog.String("path", path), slog.String("mode", info.Mode().String()))
	}

	return nil
}
