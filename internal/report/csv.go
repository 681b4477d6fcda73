package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Afrawles/sprintboard/internal/backlog"
	"github.com/Afrawles/sprintboard/internal/burndown"
)

type CSVExporter struct {
	OutputDir string
}

func NewCSVExporter(outputDir string) *CSVExporter {
	return &CSVExporter{OutputDir: outputDir}
}

// ExportBurndown writes the series as one row per sample.
func (e *CSVExporter) ExportBurndown(series *burndown.Series, filename string) error {
	header, rows := series.Table()

	return e.write(filename, func(w *csv.Writer) error {
		if err := w.Write(header); err != nil {
			return err
		}
		for _, r := range rows {
			record := []string{r.Date}
			for _, v := range r.Values {
				record = append(record, strconv.Itoa(v))
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// ExportBacklog writes the prioritized backlog. Slice markers become a
// row holding only the separator.
func (e *CSVExporter) ExportBacklog(entries []backlog.Entry, filename string) error {
	return e.write(filename, func(w *csv.Writer) error {
		if err := w.Write([]string{"Priority", "Points", "Title"}); err != nil {
			return err
		}
		for _, entry := range entries {
			record := []string{Separator, "", ""}
			if !entry.Marker {
				record = []string{
					strconv.Itoa(entry.Row.Rank),
					strconv.Itoa(entry.Row.Points),
					entry.Row.Title,
				}
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *CSVExporter) write(filename string, fill func(w *csv.Writer) error) error {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(filepath.Join(e.OutputDir, filename))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := fill(writer); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
