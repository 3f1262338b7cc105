package domain

import "time"

// Report описывает результат одного запуска для внешних получателей
type Report struct {
	RunID     string    `json:"run_id"`
	Host      string    `json:"host"`
	Queue     string    `json:"queue,omitempty"`
	Severity  string    `json:"severity"`
	ExitCode  int       `json:"exit_code"`
	Message   string    `json:"message"`
	Tally     Tally     `json:"tally"`
	StartedAt time.Time `json:"started_at"`
	Duration  int64     `json:"duration"`
}
