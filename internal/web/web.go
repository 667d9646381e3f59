// Package web renders the studio page that wraps the music pad.
package web

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/Masterminds/sprig"

	"github.com/satindergrewal/voicepad/internal/content"
)

//go:embed index.html.tmpl
var indexTemplate string

// PageData is what the page template sees.
type PageData struct {
	Title   string
	Lead    string
	Catalog content.Catalog
}

// Page is the pre-rendered studio page.
type Page struct {
	html []byte
}

// NewPage renders the page once; the content is static for the process.
func NewPage(data PageData) (*Page, error) {
	tmpl, err := template.New("index").Funcs(sprig.FuncMap()).Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return &Page{html: buf.Bytes()}, nil
}

// DefaultData is the page for the built-in catalog.
func DefaultData() PageData {
	return PageData{
		Title:   "Kids Music Voice Over Studio",
		Lead:    "Craft imaginative stories, layer them with a gentle musical pad, and record playful voice overs that sparkle with kid-friendly energy.",
		Catalog: content.Default(),
	}
}

func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(p.html)
}
