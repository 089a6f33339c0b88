package state

import (
	"sync"
	"time"
)

// MemoryStore keeps alert state for the lifetime of the process. Suited to
// long-running hosts; a scheduler that spawns a fresh process per run
// should prefer the file or redis backend.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]AlertState
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{items: make(map[string]AlertState)}
}

// Load returns the stored state, or the empty state when absent.
func (s *MemoryStore) Load(pipelineID string) AlertState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.items[pipelineID]; ok {
		return st
	}
	return AlertState{PipelineID: pipelineID}
}

// Save records a failure.
func (s *MemoryStore) Save(pipelineID, errorMessage string, alertTime time.Time, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[pipelineID] = AlertState{
		PipelineID:       pipelineID,
		LastErrorMessage: errorMessage,
		LastAlertTime:    alertTime.Format(time.RFC3339),
		PipelineStatus:   status,
	}
}

// Clear resets the record to empty/success. The record itself is kept.
func (s *MemoryStore) Clear(pipelineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[pipelineID] = AlertState{
		PipelineID:     pipelineID,
		PipelineStatus: StatusSuccess,
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
