package state

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestFile_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s1, err := NewFile(dir, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	s1.Save("p1", "timeout", at, StatusFailed)

	// A fresh instance simulates the next scheduler invocation.
	s2, err := NewFile(dir, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	st := s2.Load("p1")
	if st.LastErrorMessage != "timeout" || st.LastAlertTime != at.Format(time.RFC3339) {
		t.Errorf("state did not survive reopen: %+v", st)
	}
}

func TestFile_LoadAbsent(t *testing.T) {
	s, err := NewFile(t.TempDir(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if st := s.Load("nope"); !st.Empty() {
		t.Errorf("absent pipeline must load as empty, got %+v", st)
	}
}

func TestFile_CorruptFileDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "p1.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if st := s.Load("p1"); !st.Empty() {
		t.Errorf("corrupt file must degrade to empty state, got %+v", st)
	}
}

func TestFile_ClearKeepsRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	s.Save("p1", "timeout", time.Now(), StatusFailed)
	s.Clear("p1")

	if _, err := os.Stat(filepath.Join(dir, "p1.json")); err != nil {
		t.Error("clear must keep the record file")
	}
	st := s.Load("p1")
	if !st.Empty() || st.PipelineStatus != StatusSuccess {
		t.Errorf("cleared state = %+v", st)
	}
}

func TestFile_StateDirPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	if _, err := NewFile(dir, testLogger()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("state dir perm = %o, want 700", perm)
	}
}
