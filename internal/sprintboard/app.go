package sprintboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Afrawles/sprintboard/internal/backlog"
	"github.com/Afrawles/sprintboard/internal/board"
	"github.com/Afrawles/sprintboard/internal/burndown"
	"github.com/Afrawles/sprintboard/internal/checklist"
	"github.com/Afrawles/sprintboard/internal/classify"
	"github.com/Afrawles/sprintboard/internal/config"
	"github.com/Afrawles/sprintboard/internal/report"
)

// CardEditor reads and writes card descriptions.
type CardEditor interface {
	GetCardDescription(ctx context.Context, cardID string) (string, error)
	SetCardDescription(ctx context.Context, cardID, desc string) error
}

type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Generator *report.Generator
	Editor    CardEditor
	Rules     classify.Rules
	Now       func() time.Time
	Wg        sync.WaitGroup
}

// NewLogger logs text records to w, at Debug level when verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// New wires an application around source. cards may be nil when card
// descriptions are not reachable, e.g. when reading a snapshot.
func New(cfg *config.Config, source report.BoardSource, cards CardEditor, logger *slog.Logger) *Application {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("board source initialized", "source", source.Name())

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Generator: report.NewGenerator(source, logger),
		Editor:    cards,
		Rules:     cfg.Rules(),
		Now:       time.Now,
	}
}

func (app *Application) Lists(ctx context.Context, boardID string, w io.Writer) error {
	b, err := app.Generator.Board(ctx, boardID)
	if err != nil {
		return err
	}
	return report.NewRenderer(w).Lists(b)
}

func (app *Application) Cards(ctx context.Context, boardID string, w io.Writer) error {
	b, err := app.Generator.Board(ctx, boardID)
	if err != nil {
		return err
	}
	return report.NewRenderer(w).Cards(b)
}

func (app *Application) Checklists(ctx context.Context, boardID string, w io.Writer) error {
	b, err := app.Generator.Board(ctx, boardID)
	if err != nil {
		return err
	}
	return report.NewRenderer(w).Checklists(checklist.Flatten(b))
}

// ShowBacklog prints the prioritized backlog list of the board. An empty
// backlogName keeps the configured one.
func (app *Application) ShowBacklog(ctx context.Context, boardID, backlogName string, opts backlog.Options, w io.Writer) error {
	b, err := app.Generator.Board(ctx, boardID)
	if err != nil {
		return err
	}

	rules := app.Rules
	if backlogName != "" {
		rules.BacklogName = backlogName
	}

	entries, err := report.BacklogEntries(b, rules, opts)
	if err != nil {
		return err
	}
	app.Logger.Debug("backlog prioritized", "list", rules.BacklogName, "rows", len(backlog.Rows(entries)))
	return report.NewRenderer(w).Backlog(entries)
}

func (app *Application) CardDescription(ctx context.Context, cardID string) (string, error) {
	if app.Editor == nil {
		return "", errors.New("card descriptions need a Trello connection")
	}
	return app.Editor.GetCardDescription(ctx, cardID)
}

func (app *Application) SetCardDescription(ctx context.Context, cardID, desc string) error {
	if app.Editor == nil {
		return errors.New("card descriptions need a Trello connection")
	}
	if err := app.Editor.SetCardDescription(ctx, cardID, desc); err != nil {
		return fmt.Errorf("failed to update card %s: %w", cardID, err)
	}
	app.Logger.Info("card description updated", "card", cardID, "bytes", len(desc))
	return nil
}

// Backup writes the board snapshot to <dir>/<board-id>/board.json.
func (app *Application) Backup(ctx context.Context, boardID, dir string) (string, error) {
	b, err := app.Generator.Board(ctx, boardID)
	if err != nil {
		return "", err
	}
	path, err := board.Backup(b, dir)
	if err != nil {
		return "", err
	}
	app.Logger.Info("board backed up", "board", b.ID, "file", path)
	return path, nil
}

// BurndownInit starts the first sprint in dir with the lists named in
// lists, or every trackable list when lists is empty, and records today's
// sample.
func (app *Application) BurndownInit(ctx context.Context, boardID, dir string, lists []string) (*burndown.Series, error) {
	b, err := app.Generator.Board(ctx, boardID)
	if err != nil {
		return nil, err
	}

	tracked := burndown.TrackableLists(b, app.Rules)
	if len(lists) > 0 {
		tracked = burndown.SelectLists(b, lists)
	}

	store := burndown.NewStore(dir)
	series, err := store.Init(burndown.Meta{BoardID: b.ID, Sprint: 1, Lists: tracked})
	if err != nil {
		return nil, err
	}
	app.Logger.Info("burndown initialized", "board", b.ID, "dir", dir, "lists", len(tracked))

	return series, app.record(b, store, series)
}

// Burndown samples the board into the latest sprint of dir, or into a new
// sprint after it when newSprint is set. An empty boardID reuses the board
// the series was started for.
func (app *Application) Burndown(ctx context.Context, boardID, dir string, newSprint bool) (*burndown.Series, error) {
	store := burndown.NewStore(dir)
	series, err := store.Latest()
	if err != nil {
		return nil, err
	}

	if newSprint {
		series, err = store.StartSprint(series)
		if err != nil {
			return nil, err
		}
		app.Logger.Info("sprint started", "sprint", series.Meta.Sprint, "dir", dir)
	}

	if boardID == "" {
		boardID = series.Meta.BoardID
	}
	b, err := app.Generator.Board(ctx, boardID)
	if err != nil {
		return nil, err
	}

	return series, app.record(b, store, series)
}

func (app *Application) record(b board.Board, store *burndown.Store, series *burndown.Series) error {
	dp, err := burndown.Sample(b, series.Meta.Lists, app.Rules, app.Now())
	if err != nil {
		return err
	}
	series.Append(dp)
	if err := store.Save(series); err != nil {
		return err
	}
	app.Logger.Debug("burndown sample saved",
		"sprint", series.Meta.Sprint,
		"date", dp.Date,
		"remaining", dp.Remaining,
		"done", dp.Done,
	)
	return nil
}

// Burndowns updates the burndown of every board in entries concurrently,
// each in <dir>/<name>. Boards without data yet are initialized. Failures
// of single boards are logged and joined into the returned error.
func (app *Application) Burndowns(ctx context.Context, entries []config.BoardEntry, dir string) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	for _, entry := range entries {
		app.Wg.Add(1)
		go func(entry config.BoardEntry) {
			defer app.Wg.Done()

			boardDir := filepath.Join(dir, entry.Name)
			_, err := app.Burndown(ctx, entry.BoardID, boardDir, false)
			if errors.Is(err, burndown.ErrNoSeries) {
				_, err = app.BurndownInit(ctx, entry.BoardID, boardDir, nil)
			}
			if err != nil {
				app.Logger.Error("burndown failed", "board", entry.Name, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", entry.Name, err))
				mu.Unlock()
				return
			}
			app.Logger.Info("burndown updated", "board", entry.Name, "dir", boardDir)
		}(entry)
	}

	app.Wg.Wait()
	return errors.Join(errs...)
}

var validFormats = map[string]bool{"json": true, "html": true, "csv": true, "xlsx": true}

// ReportOptions selects what Report writes.
type ReportOptions struct {
	Dir     string
	Formats []string
	Backlog backlog.Options
	// BurndownDir holds the board's burndown series, if any.
	BurndownDir string
}

// Report generates the board report and exports it in every requested
// format (json, html, csv, xlsx). It returns the written file names.
func (app *Application) Report(ctx context.Context, boardID string, opts ReportOptions) ([]string, error) {
	for _, format := range opts.Formats {
		if !validFormats[format] {
			return nil, fmt.Errorf("unknown report format %q", format)
		}
	}

	b, err := app.Generator.Board(ctx, boardID)
	if err != nil {
		return nil, err
	}

	r, err := report.Assemble(b, report.Options{Rules: app.Rules, Backlog: opts.Backlog, At: app.Now()})
	if err != nil {
		return nil, err
	}

	var series *burndown.Series
	if opts.BurndownDir != "" {
		series, err = burndown.NewStore(opts.BurndownDir).Latest()
		if err != nil && !errors.Is(err, burndown.ErrNoSeries) {
			return nil, err
		}
		if errors.Is(err, burndown.ErrNoSeries) {
			app.Logger.Warn("no burndown history found", "dir", opts.BurndownDir)
		}
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	stats := report.Statistics(b, app.Rules)
	base := fmt.Sprintf("report_%s_%s", b.ID, r.GeneratedAt.Format("20060102_150405"))

	var written []string
	for _, format := range opts.Formats {
		switch format {
		case "json":
			filename := base + ".json"
			if err := report.NewExporter(opts.Dir).ExportJSON(r, filename); err != nil {
				return written, fmt.Errorf("failed to export JSON: %w", err)
			}
			written = append(written, filename)

		case "html":
			filename := base + ".html"
			if err := report.NewExporter(opts.Dir).ExportHTML(r, app.Rules, series, stats, filename); err != nil {
				return written, fmt.Errorf("failed to export HTML: %w", err)
			}
			written = append(written, filename)

		case "csv":
			csvExporter := report.NewCSVExporter(opts.Dir)
			filename := base + "_backlog.csv"
			if err := csvExporter.ExportBacklog(r.Backlog, filename); err != nil {
				return written, fmt.Errorf("failed to export CSV: %w", err)
			}
			written = append(written, filename)

			if series != nil {
				filename = base + "_burndown.csv"
				if err := csvExporter.ExportBurndown(series, filename); err != nil {
					return written, fmt.Errorf("failed to export CSV: %w", err)
				}
				written = append(written, filename)
			}

		case "xlsx":
			filename := base + ".xlsx"
			if err := report.NewExcelExporter(opts.Dir).Export(r, series, filename); err != nil {
				return written, fmt.Errorf("failed to export Excel: %w", err)
			}
			written = append(written, filename)
		}
		app.Logger.Debug("report exported", "format", format)
	}

	app.Logger.Info("report generation complete",
		"board", b.ID,
		"cards", stats["cards"],
		"estimated", stats["estimated"],
		"files", len(written),
	)
	return written, nil
}
