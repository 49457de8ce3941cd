// Package web embeds the HTML templates and static assets of the site.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	PageIndex      = "index"
	PageAdminLogin = "admin_login"
	PageAdminPanel = "admin_panel"
)

// Pages holds one parsed template set per page.
type Pages struct {
	pages map[string]*template.Template
}

// ParsePages parses every page together with the shared partials.
func ParsePages() (*Pages, error) {
	p := &Pages{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageIndex, PageAdminLogin, PageAdminPanel} {
		t, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		p.pages[name] = t
	}
	return p, nil
}

// Render executes the named page.
func (p *Pages) Render(w io.Writer, name string, data any) error {
	t, ok := p.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, name+".html", data)
}

// Static returns the static asset tree. Files in overlayDir, when given,
// shadow the embedded ones.
func Static(overlayDir string) fs.FS {
	embedded, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	if overlayDir == "" {
		return embedded
	}
	return overlayFS{primary: os.DirFS(overlayDir), fallback: embedded}
}

type overlayFS struct {
	primary  fs.FS
	fallback fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.fallback.Open(name)
}
