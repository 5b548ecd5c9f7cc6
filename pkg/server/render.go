package server

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer renders the embedded page templates.
type Renderer struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// NewRenderer creates a renderer over fsys. A nil fsys uses the embedded
// templates.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	if fsys == nil {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("server: templates: %w", err)
		}
		fsys = sub
	}
	return &Renderer{
		set:       pongo2.NewSet("signup", pongo2.NewFSLoader(fsys)),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// Render executes the named template into w.
func (r *Renderer) Render(w io.Writer, name string, data pongo2.Context) error {
	tmpl, err := r.template(name)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteWriter(data, w); err != nil {
		return fmt.Errorf("server: render %q: %w", name, err)
	}
	return nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.templates[name]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("server: load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}
