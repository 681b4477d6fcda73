package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Afrawles/sprintboard/internal/backlog"
	"github.com/Afrawles/sprintboard/internal/board"
	"github.com/Afrawles/sprintboard/internal/burndown"
	"github.com/Afrawles/sprintboard/internal/checklist"
	"github.com/Afrawles/sprintboard/internal/classify"
	"github.com/Afrawles/sprintboard/internal/estimate"
)

var ErrBacklogNotFound = errors.New("backlog list not found")

type Options struct {
	Rules classify.Rules
	// Tracked defaults to every list that is not classified as Other.
	Tracked []burndown.ListRef
	Backlog backlog.Options
	At      time.Time
}

// Report is everything derived from one board snapshot.
type Report struct {
	BoardID     string    `json:"board_id"`
	BoardName   string    `json:"board_name"`
	GeneratedAt time.Time `json:"generated_at"`

	// Burndown maps list names to the points left in them.
	Burndown map[string]burndown.Point `json:"burndown"`
	Tracked  []burndown.ListRef        `json:"tracked_lists"`
	Sample   burndown.DataPoint        `json:"sample"`

	BacklogName string          `json:"backlog_name"`
	Backlog     []backlog.Entry `json:"backlog"`

	Checklists        []string            `json:"checklists"`
	ChecklistProgress []checklist.Summary `json:"checklist_progress"`
}

// BacklogEntries prioritizes the board's backlog list.
func BacklogEntries(b board.Board, rules classify.Rules, opts backlog.Options) ([]backlog.Entry, error) {
	l, ok := b.FindList("", rules.BacklogName)
	if !ok {
		return nil, fmt.Errorf("%w: %q on board %s", ErrBacklogNotFound, rules.BacklogName, b.ID)
	}
	return backlog.Build(l, opts)
}

// Assemble derives the burndown sample, backlog and checklists of b. A
// board without a backlog list yields an empty backlog.
func Assemble(b board.Board, opts Options) (*Report, error) {
	at := opts.At
	if at.IsZero() {
		at = time.Now()
	}

	tracked := opts.Tracked
	if len(tracked) == 0 {
		tracked = burndown.TrackableLists(b, opts.Rules)
	}

	points, err := burndown.Accumulate(b, tracked)
	if err != nil {
		return nil, fmt.Errorf("failed to accumulate burndown: %w", err)
	}
	sample, err := burndown.Sample(b, tracked, opts.Rules, at)
	if err != nil {
		return nil, fmt.Errorf("failed to sample burndown: %w", err)
	}

	byName := make(map[string]burndown.Point, len(tracked))
	for _, ref := range tracked {
		byName[ref.Name] = points[ref]
	}

	entries, err := BacklogEntries(b, opts.Rules, opts.Backlog)
	if err != nil && !errors.Is(err, ErrBacklogNotFound) {
		return nil, fmt.Errorf("failed to prioritize backlog: %w", err)
	}

	return &Report{
		BoardID:           b.ID,
		BoardName:         b.Name,
		GeneratedAt:       at,
		Burndown:          byName,
		Tracked:           tracked,
		Sample:            sample,
		BacklogName:       opts.Rules.BacklogName,
		Backlog:           entries,
		Checklists:        checklist.Flatten(b),
		ChecklistProgress: checklist.Progress(b),
	}, nil
}

type Generator struct {
	Source BoardSource
	Logger *slog.Logger
}

func NewGenerator(source BoardSource, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{Source: source, Logger: logger}
}

// Board checks the source and fetches one snapshot.
func (g *Generator) Board(ctx context.Context, boardID string) (board.Board, error) {
	select {
	case <-ctx.Done():
		return board.Board{}, ctx.Err()
	default:
	}

	if err := g.Source.HealthCheck(ctx); err != nil {
		return board.Board{}, fmt.Errorf("%s health check failed: %w", g.Source.Name(), err)
	}

	g.Logger.Debug("fetching board", "source", g.Source.Name(), "board", boardID)
	b, err := g.Source.FetchBoard(ctx, boardID)
	if err != nil {
		return board.Board{}, fmt.Errorf("failed to fetch board %s from %s: %w", boardID, g.Source.Name(), err)
	}

	g.Logger.Debug("board fetched", "board", b.ID, "lists", len(b.Lists))
	return b, nil
}

// Generate fetches a board and assembles its report.
func (g *Generator) Generate(ctx context.Context, boardID string, opts Options) (*Report, error) {
	b, err := g.Board(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return Assemble(b, opts)
}

// Statistics summarizes a board for logs and the HTML report.
func Statistics(b board.Board, rules classify.Rules) map[string]any {
	stats := make(map[string]any)

	byClass := make(map[string]int)
	cards, estimated := 0, 0
	for _, l := range b.Lists {
		class := rules.Classify(l.Name).String()
		for _, c := range l.Cards {
			cards++
			e := estimate.Parse(c.Title)
			if e.Present {
				estimated++
			}
			byClass[class] += e.Points
		}
	}

	stats["lists"] = len(b.Lists)
	stats["cards"] = cards
	stats["estimated"] = estimated
	stats["points_by_class"] = byClass
	return stats
}
