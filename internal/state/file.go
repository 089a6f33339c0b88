package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore persists one JSON file per pipeline under a state directory.
// This is the default backend: a scheduler-spawned process loses in-memory
// state between runs, which would defeat the suppression window entirely.
//
// Read and write failures are logged and degrade to the empty state, never
// propagated.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFile creates the state directory (owner-only) if needed.
func NewFile(dir string, logger *slog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("state dir is required for the file backend")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) path(pipelineID string) string {
	// Pipeline ids come from config names; flatten any separators anyway.
	name := strings.ReplaceAll(pipelineID, string(os.PathSeparator), "_")
	return filepath.Join(s.dir, name+".json")
}

// Load reads the pipeline's state file. Missing or corrupt files yield the
// empty state.
func (s *FileStore) Load(pipelineID string) AlertState {
	data, err := os.ReadFile(s.path(pipelineID))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("could not read alert state", "pipeline", pipelineID, "error", err)
		}
		return AlertState{PipelineID: pipelineID}
	}

	var st AlertState
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("corrupt alert state, treating as empty", "pipeline", pipelineID, "error", err)
		return AlertState{PipelineID: pipelineID}
	}
	st.PipelineID = pipelineID
	return st
}

// Save records a failure.
func (s *FileStore) Save(pipelineID, errorMessage string, alertTime time.Time, status Status) {
	s.write(pipelineID, AlertState{
		PipelineID:       pipelineID,
		LastErrorMessage: errorMessage,
		LastAlertTime:    alertTime.Format(time.RFC3339),
		PipelineStatus:   status,
	})
}

// Clear resets the record to empty/success.
func (s *FileStore) Clear(pipelineID string) {
	s.write(pipelineID, AlertState{
		PipelineID:     pipelineID,
		PipelineStatus: StatusSuccess,
	})
}

func (s *FileStore) write(pipelineID string, st AlertState) {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		s.logger.Warn("could not encode alert state", "pipeline", pipelineID, "error", err)
		return
	}
	if err := os.WriteFile(s.path(pipelineID), data, 0o600); err != nil {
		s.logger.Warn("could not write alert state", "pipeline", pipelineID, "error", err)
	}
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }
