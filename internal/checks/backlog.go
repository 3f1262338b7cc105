package checks

import (
	"log/slog"

	"github.com/spf13/afero"

	"ozzus/printq-probe/internal/lib/logger/sl"
)

// BacklogCounter approximates pending jobs by counting spool directory entries.
type BacklogCounter struct {
	fs  afero.Fs
	dir string
	log *slog.Logger
}

func NewBacklogCounter(fsys afero.Fs, dir string, log *slog.Logger) *BacklogCounter {
	return &BacklogCounter{fs: fsys, dir: dir, log: log}
}

// Count never fails: an unreadable directory is reported as a warning and
// counts as zero jobs.
func (b *BacklogCounter) Count() int {
	f, err := b.fs.Open(b.dir)
	if err != nil {
		b.log.Warn("cannot open spool directory", slog.String("dir", b.dir), sl.Err(err))
		return 0
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		b.log.Warn("cannot read spool directory", slog.String("dir", b.dir), sl.Err(err))
		return 0
	}

	count := 0
	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		count++
	}

	b.log.Debug("spool counted", slog.String("dir", b.dir), slog.Int("entries", count))

	return count
}
