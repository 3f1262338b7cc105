// Package verdict reduces a run's tally into the single line and exit code
// reported to the monitoring controller.
package verdict

import (
	"fmt"
	"strings"

	"ozzus/printq-probe/internal/domain"
)

// DefaultQueuedJobsThreshold is the backlog size above which a run warns.
const DefaultQueuedJobsThreshold = 50

const remediationHint = "Automatic restart was attempted; check printer connectivity and run 'enable <queue>' if the queue stays down."

// Reduce applies the decision table in priority order: any down queue is
// CRITICAL, then a backlog above threshold is WARNING, then OK.
func Reduce(t domain.Tally, threshold int) domain.Verdict {
	switch {
	case t.Down > 0:
		return domain.NewVerdict(domain.SeverityCritical, fmt.Sprintf(
			"CRITICAL - %d queue(s) ready, %d queue(s) down: %s. %s",
			t.Ready, t.Down, strings.Join(t.DownQueues, " "), remediationHint,
		))
	case t.QueuedJobs > threshold:
		return domain.NewVerdict(domain.SeverityWarning, fmt.Sprintf(
			"WARNING - %d job(s) queued, %d queue(s) ready, %d queue(s) down",
			t.QueuedJobs, t.Ready, t.Down,
		))
	case t.Down == 0:
		return domain.NewVerdict(domain.SeverityOK, fmt.Sprintf(
			"OK - %d queue(s) ready, %d queue(s) down, %d job(s) queued",
			t.Ready, t.Down, t.QueuedJobs,
		))
	}

	return fallback()
}

// fallback is reported with UNKNOWN text but exit code 0; the monitoring
// controller has always received 0 here.
func fallback() domain.Verdict {
	return domain.Verdict{
		Severity: domain.SeverityUnknown,
		Message:  "UNKNOWN - print queue state could not be determined",
		ExitCode: domain.SeverityOK.ExitCode(),
	}
}

// MissingTool is the verdict for a failed precondition check.
func MissingTool(err error) domain.Verdict {
	return domain.NewVerdict(domain.SeverityUnknown, fmt.Sprintf("UNKNOWN - %v", err))
}

// InvalidQueue is the verdict for a requested queue that is not configured.
func InvalidQueue(queue string) domain.Verdict {
	return domain.NewVerdict(domain.SeverityCritical, fmt.Sprintf("CRITICAL - print queue %q does not exist", queue))
}

// ListingFailed is the verdict when the queue listing command fails.
func ListingFailed(err error) domain.Verdict {
	return domain.NewVerdict(domain.SeverityUnknown, fmt.Sprintf("UNKNOWN - %v", err))
}
