package notify

import (
	"strings"
	"testing"
)

func TestRender_DefaultTemplate(t *testing.T) {
	got, err := Render(DefaultTemplate, TemplateData{
		Repo:     "data-repo",
		Pipeline: "nightly_sync",
		Error:    "fatal: could not read from remote",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "data-repo") || !strings.Contains(got, "nightly_sync") {
		t.Errorf("rendered = %q", got)
	}
	if !strings.Contains(got, "could not read from remote") {
		t.Errorf("rendered = %q, want error text", got)
	}
}

func TestRender_NoPipeline(t *testing.T) {
	got, err := Render(DefaultTemplate, TemplateData{Repo: "r", Error: "e"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "pipeline") {
		t.Errorf("rendered = %q, want no pipeline mention", got)
	}
}

func TestRender_SprigFunctions(t *testing.T) {
	got, err := Render(`{{ .Error | trunc 5 }}`, TemplateData{Error: "abcdefghij"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "abcde" {
		t.Errorf("rendered = %q, want %q", got, "abcde")
	}
}

func TestRender_ParseError(t *testing.T) {
	if _, err := Render(`{{ .Repo`, TemplateData{}); err == nil {
		t.Fatal("expected parse error")
	}
}
