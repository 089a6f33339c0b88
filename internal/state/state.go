// Package state persists per-pipeline alert history so repeated failures
// can be suppressed across invocations.
package state

import (
	"fmt"
	"log/slog"
	"time"
)

// Status is the last recorded outcome for a pipeline.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// AlertState holds the last recorded failure for one pipeline.
// LastAlertTime is kept as an RFC 3339 string so a corrupt value read from
// an external store surfaces at parse time, where the alert policy can
// fail safe, instead of at load time.
//
// Invariant: LastAlertTime is non-empty iff LastErrorMessage is non-empty.
type AlertState struct {
	PipelineID       string `json:"pipeline_id"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
	LastAlertTime    string `json:"last_alert_time,omitempty"`
	PipelineStatus   Status `json:"pipeline_status,omitempty"`
}

// Empty reports whether no failure is recorded.
func (s AlertState) Empty() bool {
	return s.LastErrorMessage == "" && s.LastAlertTime == ""
}

// Store is the persistence contract for alert state. Load never fails:
// absent records and backend read errors both yield the empty state, so a
// store problem can never mask the pull failure being reported. Clear
// resets a record to empty/success rather than deleting it.
type Store interface {
	Load(pipelineID string) AlertState
	Save(pipelineID, errorMessage string, alertTime time.Time, status Status)
	Clear(pipelineID string)
	Close() error
}

// Open selects a backend by name. The redis backend degrades to memory
// when the server is unreachable, so a broken store never blocks a pull.
func Open(backend, dir, redisAddr string, logger *slog.Logger) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(dir, logger)
	case "redis":
		s, err := NewRedis(redisAddr, logger)
		if err != nil {
			logger.Warn("redis state store unavailable, falling back to in-memory", "error", err)
			return NewMemory(), nil
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", backend)
	}
}
