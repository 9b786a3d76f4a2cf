// Package render draws the branded authentication pages from templates
// embedded in the binary.
package render

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/membergate/membergate/internal/model"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var _ model.PageRenderer = (*Renderer)(nil)

// Renderer renders the embedded page templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{templates: templates}, nil
}

// Render writes the named page with the given attributes.
func (r *Renderer) Render(ctx context.Context, w io.Writer, name string, attrs model.PageAttributes) error {
	if err := r.templates.ExecuteTemplate(w, name+".html.tmpl", attrs); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}
