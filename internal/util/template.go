package util

import (
	"bytes"
	"strings"
	"text/template"
)

// RenderTemplate substitutes {{.key}} placeholders in prompt text using Go's
// text/template package. Prompts are plain text, never HTML, so no escaping
// is applied. This lives in internal to avoid committing to public API
// stability prematurely.
func RenderTemplate(text string, vars map[string]any) (string, error) {
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return text, nil
	}

	tmpl, err := template.New("prompt").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"join":  strings.Join,
	}).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", err
	}

	return buf.String(), nil
}
