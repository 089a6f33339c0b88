// Package alert decides whether a pipeline failure should notify, based on
// the stored failure history and a suppression window. Suppression exists
// only to avoid repeating an unchanged, already-reported failure: any
// ambiguity (no prior state, a new error, a corrupt timestamp) resolves to
// sending, since a missed alert is worse than a duplicate one.
package alert

import (
	"log/slog"
	"time"

	"github.com/pullwatch/pullwatch/internal/state"
)

// DefaultSuppressionWindow is the minimum gap between two alerts for the
// same recurring error signature.
const DefaultSuppressionWindow = time.Hour

// Reason explains a decision; it ends up in logs, not in control flow.
type Reason string

const (
	ReasonFirstFailure  Reason = "first_failure"
	ReasonNewError      Reason = "new_error"
	ReasonWindowElapsed Reason = "window_elapsed"
	ReasonSuppressed    Reason = "suppressed"
	ReasonBadTimestamp  Reason = "bad_timestamp"
)

// Decision is the outcome of a suppression check, carrying the prior state
// so callers can log what the decision was based on.
type Decision struct {
	Send          bool
	Reason        Reason
	PrevError     string
	PrevAlertTime string
	Elapsed       time.Duration // set on the same-error path only
}

// Manager applies the suppression policy over a state store.
type Manager struct {
	store  state.Store
	clock  Clock
	logger *slog.Logger
}

// New creates a Manager on the system clock.
func New(store state.Store, logger *slog.Logger) *Manager {
	return NewWithClock(store, logger, systemClock{})
}

// NewWithClock creates a Manager with an explicit clock, for tests.
func NewWithClock(store state.Store, logger *slog.Logger, clock Clock) *Manager {
	return &Manager{store: store, clock: clock, logger: logger}
}

// ShouldSend evaluates the suppression rules in order:
//
//  1. no prior error or alert time → send (first-ever failure)
//  2. stored error differs from current → send (new failure class)
//  3. same error, elapsed ≥ window → send; elapsed < window → suppress
//  4. stored timestamp unparseable → send (fail safe)
//
// A window of zero or less means the default one hour.
func (m *Manager) ShouldSend(pipelineID, currentError string, window time.Duration) Decision {
	if window <= 0 {
		window = DefaultSuppressionWindow
	}

	st := m.store.Load(pipelineID)
	if st.LastErrorMessage == "" || st.LastAlertTime == "" {
		return Decision{Send: true, Reason: ReasonFirstFailure}
	}

	prev := Decision{PrevError: st.LastErrorMessage, PrevAlertTime: st.LastAlertTime}
	if st.LastErrorMessage != currentError {
		prev.Send = true
		prev.Reason = ReasonNewError
		return prev
	}

	lastAlert, err := time.Parse(time.RFC3339, st.LastAlertTime)
	if err != nil {
		m.logger.Warn("stored alert time is unparseable, sending to be safe",
			"pipeline", pipelineID, "last_alert_time", st.LastAlertTime)
		prev.Send = true
		prev.Reason = ReasonBadTimestamp
		return prev
	}

	prev.Elapsed = m.clock.Now().Sub(lastAlert)
	if prev.Elapsed >= window {
		prev.Send = true
		prev.Reason = ReasonWindowElapsed
	} else {
		prev.Reason = ReasonSuppressed
	}
	return prev
}

// Record persists the current error with the current time and a failed
// status. Called when the caller has decided to send.
func (m *Manager) Record(pipelineID, errorMessage string) {
	m.store.Save(pipelineID, errorMessage, m.clock.Now(), state.StatusFailed)
}

// ClearState resets the pipeline's history on success, so the next failure
// is always treated as first-ever regardless of the window.
func (m *Manager) ClearState(pipelineID string) {
	m.store.Clear(pipelineID)
}
