package models

import (
	"time"
)

// SearchReport summarises one session
type SearchReport struct {
	// Session details
	SessionID string     `json:"session_id"`
	Mode      SearchMode `json:"mode"`
	Roots     []string   `json:"roots"`

	// Timing
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`

	// Statistics
	Stats Statistics `json:"stats"`

	// Log collected from the engine
	Log []LogEntry `json:"log,omitempty"`

	// Error is set when Status is StatusFailed
	Error string `json:"error,omitempty"`

	// Overall status
	Status SessionStatus `json:"status"`
}

// Statistics holds session counters
type Statistics struct {
	DirsScanned     int64 `json:"dirs_scanned"`
	DirsIgnored     int64 `json:"dirs_ignored"`
	EntriesExamined int64 `json:"entries_examined"`
	FilesGrepped    int64 `json:"files_grepped"`
	Matches         int64 `json:"matches"`
	BytesHashed     int64 `json:"bytes_hashed"`
	Groups          int64 `json:"groups"`
	Errors          int64 `json:"errors"`
}

// SessionStatus represents how a session ended
type SessionStatus string

const (
	// StatusRunning is reported while the worker is active
	StatusRunning SessionStatus = "running"
	// StatusCompleted indicates the whole configuration was processed
	StatusCompleted SessionStatus = "completed"
	// StatusStopped indicates the user cancelled; partial results are kept
	StatusStopped SessionStatus = "stopped"
	// StatusFailed indicates a fatal error such as a rejected result
	StatusFailed SessionStatus = "failed"
)

// ExitCode returns the process exit code for the status
func (s SessionStatus) ExitCode() int {
	switch s {
	case StatusCompleted:
		return 0
	case StatusStopped:
		return 1
	default:
		return 2
	}
}

// Severity of a log entry
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// LogEntry is one message produced by the engine
type LogEntry struct {
	Time     time.Time `json:"time"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Path     string    `json:"path,omitempty"`
}
