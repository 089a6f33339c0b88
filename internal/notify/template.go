package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// TemplateData holds the fields available to secondary-target message
// templates.
type TemplateData struct {
	Repo      string
	Pipeline  string
	Workspace string
	Error     string
}

// DefaultTemplate is used for secondary targets with no template of their
// own. The slack webhook has a fixed Block Kit layout and does not use
// templates.
const DefaultTemplate = "git pull failed for {{ .Repo }}" +
	"{{ if .Pipeline }} (pipeline {{ .Pipeline }}){{ end }}\n" +
	"{{ .Error | trunc 500 }}"

// Render executes a Go text/template string with Sprig functions over the
// alert data.
func Render(tmplStr string, data TemplateData) (string, error) {
	t, err := template.New("notify").Funcs(sprig.TxtFuncMap()).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}
