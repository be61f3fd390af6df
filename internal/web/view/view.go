// Package view renders named page templates with a data bag. Handlers never
// build markup themselves; they pick a view name and supply the data the
// layout and page expect. Every data bag carries "User" (possibly nil) for
// the shared navigation.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed templates
var files embed.FS

// Data is the bag of values handed to a template.
type Data map[string]any

// Renderer holds the parsed template set, one entry per page view.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page under templates/ against the shared layout.
func New() (*Renderer, error) {
	pages := map[string]*template.Template{}

	err := fs.WalkDir(files, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == "templates/layout.html" {
			return nil
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		tmpl, err := template.ParseFS(files, "templates/layout.html", path)
		if err != nil {
			return fmt.Errorf("parse view %s: %w", name, err)
		}
		pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Renderer{pages: pages}, nil
}

// Render writes the named view. The page is built in full before any byte is
// written so a template fault never produces a half-rendered response.
func (r *Renderer) Render(w http.ResponseWriter, name string, data Data) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}
	if data == nil {
		data = Data{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = nil
	}
	// Form backs input repopulation on re-rendered forms; default it so
	// pages can reference fields unconditionally.
	if _, ok := data["Form"]; !ok {
		data["Form"] = map[string]string{}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render view %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
