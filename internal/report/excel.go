package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Afrawles/sprintboard/internal/burndown"
)

type ExcelExporter struct {
	OutputDir string
}

func NewExcelExporter(outputDir string) *ExcelExporter {
	return &ExcelExporter{OutputDir: outputDir}
}

// Export writes a workbook with a Backlog, a Burndown and a Checklists
// sheet. series may be nil; the Burndown sheet then holds the current
// sample only.
func (e *ExcelExporter) Export(r *Report, series *burndown.Series, filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.createBacklogSheet(f, "Backlog", r); err != nil {
		return fmt.Errorf("failed to create backlog sheet: %w", err)
	}

	if series == nil {
		series = &burndown.Series{Meta: burndown.Meta{Lists: r.Tracked}}
		series.Append(r.Sample)
	}
	if err := e.createBurndownSheet(f, "Burndown", series); err != nil {
		return fmt.Errorf("failed to create burndown sheet: %w", err)
	}

	if err := e.createChecklistSheet(f, "Checklists", r); err != nil {
		return fmt.Errorf("failed to create checklist sheet: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex("Backlog"); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(filepath.Join(e.OutputDir, filename)); err != nil {
		return fmt.Errorf("failed to save excel file: %w", err)
	}
	return nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "#000000", Style: 1},
			{Type: "right", Color: "#000000", Style: 1},
			{Type: "top", Color: "#000000", Style: 1},
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
}

func writeHeader(f *excelize.File, sheetName string, headers []string) error {
	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return err
		}
	}
	return f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (e *ExcelExporter) createBacklogSheet(f *excelize.File, sheetName string, r *Report) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}
	if err := writeHeader(f, sheetName, []string{"Priority", "Points", "Title"}); err != nil {
		return err
	}

	sliceStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#B4C7E7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	row := 2
	for _, entry := range r.Backlog {
		if entry.Marker {
			if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), sliceStyle); err != nil {
				return err
			}
			row++
			continue
		}
		if err := setRow(f, sheetName, row, entry.Row.Rank, entry.Row.Points, entry.Row.Title); err != nil {
			return err
		}
		row++
	}

	return setColWidths(f, sheetName, map[string]float64{"A:B": 10, "C:C": 60})
}

func (e *ExcelExporter) createBurndownSheet(f *excelize.File, sheetName string, series *burndown.Series) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	header, rows := series.Table()
	if err := writeHeader(f, sheetName, header); err != nil {
		return err
	}

	for i, r := range rows {
		values := make([]any, 0, len(r.Values)+1)
		values = append(values, r.Date)
		for _, v := range r.Values {
			values = append(values, v)
		}
		if err := setRow(f, sheetName, i+2, values...); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := setColWidths(f, sheetName, map[string]float64{"A:A": 12, "B:" + lastCol: 16}); err != nil {
		return err
	}

	if len(rows) < 2 {
		return nil
	}

	// chart the remaining and done totals, the last two columns
	last := len(rows) + 1
	categories := fmt.Sprintf("'%s'!$A$2:$A$%d", sheetName, last)
	var chartSeries []excelize.ChartSeries
	for _, col := range []int{len(header) - 1, len(header)} {
		letter, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		chartSeries = append(chartSeries, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", sheetName, letter),
			Categories: categories,
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheetName, letter, letter, last),
		})
	}
	anchor, err := excelize.CoordinatesToCellName(len(header)+2, 2)
	if err != nil {
		return err
	}
	return f.AddChart(sheetName, anchor, &excelize.Chart{
		Type:   excelize.Line,
		Series: chartSeries,
		Title:  []excelize.RichTextRun{{Text: fmt.Sprintf("Sprint %d", series.Meta.Sprint)}},
	})
}

func (e *ExcelExporter) createChecklistSheet(f *excelize.File, sheetName string, r *Report) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}
	if err := writeHeader(f, sheetName, []string{"List", "Card", "Checklist", "Done", "Total"}); err != nil {
		return err
	}

	for i, s := range r.ChecklistProgress {
		if err := setRow(f, sheetName, i+2, s.List, s.Card, s.Name, s.Done, s.Total); err != nil {
			return err
		}
	}

	return setColWidths(f, sheetName, map[string]float64{"A:A": 20, "B:B": 45, "C:C": 20})
}

// setRow writes values into row starting at column A.
func setRow(f *excelize.File, sheetName string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheetName, cell, &values)
}

// setColWidths applies widths keyed by "first:last" column ranges.
func setColWidths(f *excelize.File, sheetName string, widths map[string]float64) error {
	for cols, width := range widths {
		first, last, _ := strings.Cut(cols, ":")
		if err := f.SetColWidth(sheetName, first, last, width); err != nil {
			return fmt.Errorf("failed to size columns %s: %w", cols, err)
		}
	}
	return nil
}
