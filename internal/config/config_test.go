package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
notify:
  slack_webhook_url: https://hooks.example.com/T00/B00/xyz
pipelines:
  - name: nightly_sync
    workspace: PROD
    repo_path: /srv/repos/data
    git_url: git@github.com:example/data.git
`

func TestLoad_Minimal(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Pipelines) != 1 {
		t.Fatalf("pipelines = %d, want 1", len(cfg.Pipelines))
	}
	p := cfg.Pipelines[0]
	if p.Name != "nightly_sync" || p.Workspace != "PROD" {
		t.Errorf("pipeline = %+v", p)
	}
	if cfg.Notify.SlackWebhookURL != "https://hooks.example.com/T00/B00/xyz" {
		t.Errorf("webhook = %q", cfg.Notify.SlackWebhookURL)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_WEBHOOK", "https://hooks.example.com/expanded")
	path := writeConfig(t, `
notify:
  slack_webhook_url: ${TEST_WEBHOOK}
pipelines:
  - name: p1
    repo_path: /srv/r
    git_url: git@h:o/r.git
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Notify.SlackWebhookURL != "https://hooks.example.com/expanded" {
		t.Errorf("webhook = %q, want env-expanded value", cfg.Notify.SlackWebhookURL)
	}
}

func TestWindow_DurationString(t *testing.T) {
	path := writeConfig(t, `
pipelines:
  - name: p1
    repo_path: /srv/r
    git_url: git@h:o/r.git
    suppression_window: 90m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Pipelines[0].SuppressionWindow.Duration; got != 90*time.Minute {
		t.Errorf("window = %s, want 90m", got)
	}
}

func TestWindow_HourCount(t *testing.T) {
	path := writeConfig(t, `
pipelines:
  - name: p1
    repo_path: /srv/r
    git_url: git@h:o/r.git
    suppression_window: 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Pipelines[0].SuppressionWindow.Duration; got != 2*time.Hour {
		t.Errorf("window = %s, want 2h", got)
	}
}

func TestWindow_Invalid(t *testing.T) {
	path := writeConfig(t, `
pipelines:
  - name: p1
    repo_path: /srv/r
    git_url: git@h:o/r.git
    suppression_window: soon
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid window")
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	path := writeConfig(t, `
pipelines:
  - name: p1
    repo_path: /srv/r
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing git_url")
	}
}

func TestValidate_NoPipelines(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty pipeline list")
	}
}

func TestValidate_DuplicateNames(t *testing.T) {
	cfg := &Config{
		Pipelines: []Pipeline{
			{Name: "p1", RepoPath: "/a", GitURL: "g@h:a.git"},
			{Name: "p1", RepoPath: "/b", GitURL: "g@h:b.git"},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for duplicate names")
	}
}

func TestValidate_BadTimeout(t *testing.T) {
	cfg := &Config{
		Pipelines: []Pipeline{
			{Name: "p1", RepoPath: "/a", GitURL: "g@h:a.git", Timeout: "banana"},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad timeout")
	}
}

func TestValidate_BadBackend(t *testing.T) {
	cfg := &Config{
		Options:   Options{StateBackend: "etcd"},
		Pipelines: []Pipeline{{Name: "p1", RepoPath: "/a", GitURL: "g@h:a.git"}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
}

func TestResolve_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := Resolve(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Options.StateBackend != "file" {
		t.Errorf("backend = %q, want file default", cfg.Options.StateBackend)
	}
	if cfg.Options.StateDir == "" {
		t.Error("state dir default not applied")
	}
	if cfg.Pipelines[0].Branch != "master" {
		t.Errorf("branch = %q, want master default", cfg.Pipelines[0].Branch)
	}
}

func TestResolve_ExplicitMissing(t *testing.T) {
	if _, err := Resolve("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}
