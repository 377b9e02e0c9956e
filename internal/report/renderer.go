package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"math"

	"balloonsum/domain/summary"
	"balloonsum/internal/aggregate"
	"balloonsum/internal/config"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Renderer produces the HTML documents for summary tables, the upload
// page, the run history, and the methodology notes
type Renderer struct {
	templates *template.Template
	cfg       config.ReportConfig
}

// SummaryPage is the data handed to the summary template
type SummaryPage struct {
	Title       string
	HeaderWidth int
	Columns     []string
	Rows        []summary.Row
	Profiles    []aggregate.Profile
}

// IndexPage is the data handed to the upload form template
type IndexPage struct {
	Title       string
	MaxFiles    int
	MaxFileMB   int64
	HistoryOn   bool
}

// NotesPage is the data handed to the notes template
type NotesPage struct {
	Title   string
	Content template.HTML
}

// HistoryPage is the data handed to the history template
type HistoryPage struct {
	Title   string
	Columns []string
	Batches []*summary.Batch
}

// NewRenderer parses the embedded templates
func NewRenderer(cfg config.ReportConfig) (*Renderer, error) {
	funcMap := template.FuncMap{
		// Summary cells print the way the tabular library the logs came
		// from would: NaN stays literal "NaN".
		"fmtnum": func(v float64) string {
			if math.IsNaN(v) {
				return "NaN"
			}
			return fmt.Sprintf("%.6g", v)
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: templates, cfg: cfg}, nil
}

// RenderSummary writes the summary document: one table, columns in
// canonical order, one row per dataset in upload order
func (r *Renderer) RenderSummary(w io.Writer, table summary.Table, profiles []aggregate.Profile) error {
	page := SummaryPage{
		Title:       r.cfg.Title,
		HeaderWidth: r.cfg.HeaderCellWidth,
		Columns:     summary.Columns(),
		Rows:        table.Rows(),
		Profiles:    profiles,
	}
	return r.render(w, "summary.html", page)
}

// RenderIndex writes the upload form page
func (r *Renderer) RenderIndex(w io.Writer, page IndexPage) error {
	if page.Title == "" {
		page.Title = r.cfg.Title
	}
	return r.render(w, "index.html", page)
}

// RenderNotes writes the methodology notes page
func (r *Renderer) RenderNotes(w io.Writer, content template.HTML) error {
	return r.render(w, "notes.html", NotesPage{Title: r.cfg.Title, Content: content})
}

// RenderHistory writes the persisted batch list
func (r *Renderer) RenderHistory(w io.Writer, batches []*summary.Batch) error {
	page := HistoryPage{
		Title:   r.cfg.Title,
		Columns: summary.Columns(),
		Batches: batches,
	}
	return r.render(w, "history.html", page)
}

// render executes to a buffer first so template errors never leave a
// half-written response behind
func (r *Renderer) render(w io.Writer, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("Template error for %s: %v", name, err)
		return fmt.Errorf("template %s failed: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
