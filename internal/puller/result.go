package puller

import "time"

// Status of a pull invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result captures the outcome of one pull invocation. The failure error is
// still returned to the caller (the scheduler owns retries); Result exists
// so the CLI always has something to display.
type Result struct {
	PipelineID    string
	Workspace     string
	RepoPath      string
	Status        Status
	Output        string // combined git stdout+stderr, trimmed
	KeyEnvVarUsed string // "N/A" when the key was passed explicitly
	Stage         string // "validate", "key", "pull" on failure
	Duration      time.Duration
	Alerted       bool // an alert was sent (or would be, on dry-run)
	Suppressed    bool // failure reported recently, alert withheld
}
