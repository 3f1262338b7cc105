package domain

type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
	SeverityUnknown
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "OK"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode is the process exit code the monitoring controller expects.
func (s Severity) ExitCode() int {
	switch s {
	case SeverityOK, SeverityWarning, SeverityCritical, SeverityUnknown:
		return int(s)
	default:
		return int(SeverityUnknown)
	}
}

// Verdict is the single outcome of a run. ExitCode normally equals
// Severity.ExitCode(); the reducer fallback is the one place it does not.
type Verdict struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	ExitCode int      `json:"exit_code"`
}

func NewVerdict(severity Severity, message string) Verdict {
	return Verdict{
		Severity: severity,
		Message:  message,
		ExitCode: severity.ExitCode(),
	}
}
