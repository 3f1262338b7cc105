package checks

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// AccessChecker reports whether the current process may execute path.
type AccessChecker interface {
	CanExecute(path string) error
}

// UnixAccess asks the kernel through access(2), which uses the real uid and
// groups of the process.
type UnixAccess struct{}

func (UnixAccess) CanExecute(path string) error {
	if err := unix.Access(path, unix.X_OK); err != nil {
		return fmt.Errorf("access %s: %w", path, err)
	}
	return nil
}
