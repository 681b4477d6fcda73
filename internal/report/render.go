package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Afrawles/sprintboard/internal/backlog"
	"github.com/Afrawles/sprintboard/internal/board"
	"github.com/Afrawles/sprintboard/internal/burndown"
)

// Separator is printed where a backlog slice ends.
var Separator = strings.Repeat("-", 25)

// Renderer prints reports as plain text, one item per line.
type Renderer struct {
	w io.Writer
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

func (r *Renderer) Lines(lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(r.w, l); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) Lists(b board.Board) error {
	return r.Lines(b.ListNames())
}

func (r *Renderer) Cards(b board.Board) error {
	return r.Lines(b.CardTitles())
}

func (r *Renderer) Checklists(names []string) error {
	return r.Lines(names)
}

// Backlog prints the backlog table:
//
//	Priority | Points | Title
//	       1 |      3 | (3) P1: Fill Backlog column
//	-------------------------
func (r *Renderer) Backlog(entries []backlog.Entry) error {
	var b strings.Builder
	b.WriteString("\nPriority | Points | Title\n")
	for _, e := range entries {
		if e.Marker {
			b.WriteString(Separator + "\n")
			continue
		}
		fmt.Fprintf(&b, "%8d | %6d | %s\n", e.Row.Rank, e.Row.Points, e.Row.Title)
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Burndown prints one line per tracked list with its current points,
// followed by the remaining and done totals.
func (r *Renderer) Burndown(tracked []burndown.ListRef, dp burndown.DataPoint) error {
	width := len("Remaining")
	for _, ref := range tracked {
		width = max(width, len(ref.Name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Burndown %s\n", dp.Date)
	for _, ref := range tracked {
		fmt.Fprintf(&b, "  %-*s %4d\n", width, ref.Name, dp.Lists[ref.Name])
	}
	fmt.Fprintf(&b, "  %-*s %4d\n", width, "Remaining", dp.Remaining)
	fmt.Fprintf(&b, "  %-*s %4d\n", width, "Done", dp.Done)
	_, err := io.WriteString(r.w, b.String())
	return err
}
