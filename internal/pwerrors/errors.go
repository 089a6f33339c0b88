// Package pwerrors defines the sentinel errors shared across pullwatch
// packages. Callers categorize failures with errors.Is.
package pwerrors

import "errors"

var (
	// ErrConfig marks a fatal configuration problem: missing repo path,
	// missing deploy key, missing webhook URL. Never retried.
	ErrConfig = errors.New("invalid configuration")

	// ErrPull marks a git pull that exited non-zero. Surfaced to the
	// caller after alerting side effects have run.
	ErrPull = errors.New("git pull failed")
)
