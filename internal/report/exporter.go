package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Afrawles/sprintboard/internal/burndown"
	"github.com/Afrawles/sprintboard/internal/classify"
)

//go:embed "templates"
var templateFS embed.FS

type Exporter struct {
	OutputDir string
}

func NewExporter(outputDir string) *Exporter {
	return &Exporter{OutputDir: outputDir}
}

func (e *Exporter) ExportJSON(r *Report, filename string) error {
	data, err := json.MarshalIndent(r, "", "\t")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(e.OutputDir, filename), data, 0644)
}

type listRow struct {
	Name   string
	Class  string
	Points int
}

// ExportHTML renders the report page. series may be nil when no burndown
// history is kept for the board.
func (e *Exporter) ExportHTML(r *Report, rules classify.Rules, series *burndown.Series, stats map[string]any, filename string) error {
	funcMap := template.FuncMap{
		"title": cases.Title(language.English).String,
	}
	tmpl, err := template.New("report.tmpl").Funcs(funcMap).ParseFS(templateFS, "templates/report.tmpl")
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	outputPath := filepath.Join(e.OutputDir, filename)
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create HTML file: %w", err)
	}
	defer f.Close()

	lists := make([]listRow, 0, len(r.Tracked))
	for _, ref := range r.Tracked {
		lists = append(lists, listRow{
			Name:   ref.Name,
			Class:  rules.Classify(ref.Name).String(),
			Points: r.Burndown[ref.Name].Points,
		})
	}

	data := map[string]any{
		"Date":      r.GeneratedAt.Format("2006-01-02 15:04:05"),
		"BoardName": r.BoardName,
		"Report":    r,
		"Lists":     lists,
		"Stats":     stats,
		"Series":    series,
	}
	if series != nil {
		header, rows := series.Table()
		data["SeriesHeader"] = header
		data["SeriesRows"] = rows
	}

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}
