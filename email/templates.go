package email

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aymerick/raymond"
)

const (
	TemplateResourceRequest = "resource-request"
	TemplateAuditAlert      = "audit-alert"
	TemplateAutoResponse    = "auto-response"
	TemplateWeeklyReport    = "weekly-report"
	TemplateTestEmail       = "test-email"
)

// Templates reads <name>.html and the optional <name>.txt from Dir
type Templates struct {
	Dir string
}

func NewTemplates(dir string) *Templates {
	return &Templates{Dir: dir}
}

// Render loads the template pair from disk and renders it with vars.
// Values in {{var}} are HTML escaped, {{{var}}} writes them as is. The
// plain text templates use {{{var}}} only.
func (t *Templates) Render(name string, vars map[string]any) (html, text string, err error) {
	htmlSrc, err := os.ReadFile(filepath.Join(t.Dir, name+".html"))
	if err != nil {
		return "", "", fmt.Errorf("failed to read template %s, %w", name, err)
	}

	html, err = raymond.Render(string(htmlSrc), vars)
	if err != nil {
		return "", "", fmt.Errorf("failed to render template %s, %w", name, err)
	}

	textSrc, err := os.ReadFile(filepath.Join(t.Dir, name+".txt"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return html, "", nil
		}

		return "", "", fmt.Errorf("failed to read template %s, %w", name, err)
	}

	text, err = raymond.Render(string(textSrc), vars)
	if err != nil {
		return "", "", fmt.Errorf("failed to render template %s, %w", name, err)
	}

	return html, text, nil
}
