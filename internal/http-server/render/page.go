// Package render turns a dashboard snapshot into the HTML page.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/speedwagon-io/plantwatch/internal/model"
)

//go:embed templates/page.html
var templates embed.FS

// PageData is the renderer's whole input. When FetchError is set Reading is
// ignored.
type PageData struct {
	PlantName   string
	Reading     *model.GenerationReading
	FetchError  string
	News        []model.NewsItem
	GeneratedAt time.Time
}

type Page struct {
	tmpl *template.Template
}

// NewPage parses the page template. Timestamps are shown in loc, or UTC
// when loc is nil.
func NewPage(loc *time.Location) (*Page, error) {
	if loc == nil {
		loc = time.UTC
	}

	tmpl, err := template.New("page.html").Funcs(template.FuncMap{
		"mw": func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"stamp": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format("2006-01-02 15:04 MST")
		},
	}).ParseFS(templates, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return &Page{tmpl: tmpl}, nil
}

func MustNewPage(loc *time.Location) *Page {
	p, err := NewPage(loc)
	if err != nil {
		panic(err.Error())
	}
	return p
}

func (p *Page) Render(w io.Writer, data PageData) error {
	if data.FetchError != "" {
		data.Reading = nil
	}
	return p.tmpl.Execute(w, data)
}
