package checks

import (
	"fmt"
	"strings"
	"time"
)

const queuePlaceholder = "{queue}"

func expandArgs(args []string, queue string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = strings.ReplaceAll(arg, queuePlaceholder, queue)
	}
	return out
}

// splitLines splits command output into lines without trailing CR.
func splitLines(output string) []string {
	if output == "" {
		return nil
	}

	lines := strings.Split(output, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}

	// drop the empty tail produced by a trailing newline
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	return lines
}

func formatSeconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.3f s", d.Seconds())
}
