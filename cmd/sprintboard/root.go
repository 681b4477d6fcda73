package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Afrawles/sprintboard/internal/backlog"
	"github.com/Afrawles/sprintboard/internal/burndown"
	"github.com/Afrawles/sprintboard/internal/clierr"
	"github.com/Afrawles/sprintboard/internal/config"
	"github.com/Afrawles/sprintboard/internal/report"
	"github.com/Afrawles/sprintboard/internal/sprintboard"
	"github.com/Afrawles/sprintboard/internal/trello"
)

type rootOptions struct {
	configPath string
	snapshot   string
	verbose    bool
}

// runEnv is what a single command run works with.
type runEnv struct {
	app    *sprintboard.Application
	cfg    *config.Config
	remote bool
	stderr io.Writer
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "sprintboard",
		Short:         "Scrum sprint reporting for Trello boards",
		Long:          `Sprintboard reads a Trello board and prints its lists, cards and checklists, prioritizes the backlog into sprint slices and keeps burndown data per sprint.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/"+config.DefaultFile+")")
	cmd.PersistentFlags().StringVar(&opts.snapshot, "snapshot", "", "Read the board from a saved snapshot instead of Trello")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newGetListsCmd(opts),
		newGetCardsCmd(opts),
		newGetChecklistsCmd(opts),
		newShowBacklogCmd(opts),
		newGetDescriptionCmd(opts),
		newSetDescriptionCmd(opts),
		newBackupCmd(opts),
		newBurndownInitCmd(opts),
		newBurndownCmd(opts),
		newBurndownsCmd(opts),
		newReportCmd(opts),
	)
	return cmd
}

// setup loads the config and wires the application for one command run.
// Without a snapshot the Trello credentials must be configured.
func (o *rootOptions) setup(cmd *cobra.Command) (*runEnv, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeConfig, "invalid configuration", err)
	}

	stderr := cmd.ErrOrStderr()
	logger := sprintboard.NewLogger(stderr, o.verbose)

	if o.snapshot != "" {
		src := report.NewSnapshotSource(o.snapshot)
		return &runEnv{app: sprintboard.New(cfg, src, nil, logger), cfg: cfg, stderr: stderr}, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, clierr.Wrap(clierr.CodeConfig, "invalid configuration", err)
	}
	src := trello.NewTrelloSource(cfg.DeveloperPublicKey, cfg.MemberToken)
	return &runEnv{app: sprintboard.New(cfg, src, src.Client, logger), cfg: cfg, remote: true, stderr: stderr}, nil
}

// spin shows a spinner while talking to Trello.
func (e *runEnv) spin(description string) func() {
	if !e.remote {
		return func() {}
	}
	bar := newSpinner(e.stderr, description)
	return func() { finishBar(bar) }
}

// boardID resolves the --board-id flag, which may name an alias.
func (e *runEnv) boardID(id string) (string, error) {
	if id == "" {
		return "", clierr.New(clierr.CodeUsage, "--board-id is required")
	}
	return e.cfg.ResolveBoard(id), nil
}

func (e *runEnv) outputDir(dir string) string {
	if dir == "" {
		return e.cfg.OutputDir
	}
	return dir
}

// fail attaches an exit code to errors the user can act on.
func fail(cmd *cobra.Command, err error) error {
	var apiErr *trello.APIError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, backlog.ErrInvalidVelocity):
		return clierr.Wrap(clierr.CodeUsage, cmd.Name()+" failed", err)
	case errors.As(err, &apiErr):
		return clierr.Wrap(clierr.CodeRemote, cmd.Name()+" failed", err)
	}
	return err
}

func velocityFlag(cmd *cobra.Command, v int) *int {
	if !cmd.Flags().Changed("velocity") {
		return nil
	}
	return &v
}

func boardCommand(opts *rootOptions, use, short string, run func(ctx context.Context, env *runEnv, boardID string, w io.Writer) error) *cobra.Command {
	var boardID string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			id, err := env.boardID(boardID)
			if err != nil {
				return err
			}
			return fail(cmd, run(cmd.Context(), env, id, cmd.OutOrStdout()))
		},
	}
	cmd.Flags().StringVar(&boardID, "board-id", "", "Board id or alias")
	return cmd
}

func newGetListsCmd(opts *rootOptions) *cobra.Command {
	return boardCommand(opts, "get-lists", "Print the names of the board's lists",
		func(ctx context.Context, env *runEnv, boardID string, w io.Writer) error {
			defer env.spin("Fetching board")()
			return env.app.Lists(ctx, boardID, w)
		})
}

func newGetCardsCmd(opts *rootOptions) *cobra.Command {
	return boardCommand(opts, "get-cards", "Print the titles of the board's cards",
		func(ctx context.Context, env *runEnv, boardID string, w io.Writer) error {
			defer env.spin("Fetching board")()
			return env.app.Cards(ctx, boardID, w)
		})
}

func newGetChecklistsCmd(opts *rootOptions) *cobra.Command {
	return boardCommand(opts, "get-checklists", "Print the names of the board's checklists",
		func(ctx context.Context, env *runEnv, boardID string, w io.Writer) error {
			defer env.spin("Fetching board")()
			return env.app.Checklists(ctx, boardID, w)
		})
}

func newShowBacklogCmd(opts *rootOptions) *cobra.Command {
	var (
		boardID       string
		backlogName   string
		velocity      int
		estimatedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "show-backlog",
		Short: "Print the prioritized backlog, sliced by velocity",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		env, err := opts.setup(cmd)
		if err != nil {
			return err
		}
		id, err := env.boardID(boardID)
		if err != nil {
			return err
		}

		stop := env.spin("Fetching board")
		err = env.app.ShowBacklog(cmd.Context(), id, backlogName, backlog.Options{
			Velocity:      velocityFlag(cmd, velocity),
			EstimatedOnly: estimatedOnly,
		}, cmd.OutOrStdout())
		stop()
		return fail(cmd, err)
	}

	cmd.Flags().StringVar(&boardID, "board-id", "", "Board id or alias")
	cmd.Flags().StringVar(&backlogName, "backlog-name", "", "Name of the backlog list (default from config)")
	cmd.Flags().IntVar(&velocity, "velocity", 0, "Points per sprint; slices the backlog when set")
	cmd.Flags().BoolVar(&estimatedOnly, "estimated-only", false, "Leave out cards without an estimate")
	return cmd
}

func newGetDescriptionCmd(opts *rootOptions) *cobra.Command {
	var cardID string

	cmd := &cobra.Command{
		Use:   "get-description",
		Short: "Print the description of a card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cardID == "" {
				return clierr.New(clierr.CodeUsage, "--card-id is required")
			}
			env, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			stop := env.spin("Fetching card")
			desc, err := env.app.CardDescription(cmd.Context(), cardID)
			stop()
			if err != nil {
				return fail(cmd, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), desc)
			return err
		},
	}
	cmd.Flags().StringVar(&cardID, "card-id", "", "Card id")
	return cmd
}

func newSetDescriptionCmd(opts *rootOptions) *cobra.Command {
	var cardID string

	cmd := &cobra.Command{
		Use:   "set-description",
		Short: "Replace the description of a card with standard input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cardID == "" {
				return clierr.New(clierr.CodeUsage, "--card-id is required")
			}
			env, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			desc, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read description: %w", err)
			}

			defer env.spin("Updating card")()
			return fail(cmd, env.app.SetCardDescription(cmd.Context(), cardID, string(desc)))
		},
	}
	cmd.Flags().StringVar(&cardID, "card-id", "", "Card id")
	return cmd
}

func newBackupCmd(opts *rootOptions) *cobra.Command {
	var boardID, output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Save a snapshot of the board as JSON",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		env, err := opts.setup(cmd)
		if err != nil {
			return err
		}
		id, err := env.boardID(boardID)
		if err != nil {
			return err
		}

		stop := env.spin("Fetching board")
		path, err := env.app.Backup(cmd.Context(), id, env.outputDir(output))
		stop()
		if err != nil {
			return fail(cmd, err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Board saved to %s\n", path)
		return err
	}
	cmd.Flags().StringVar(&boardID, "board-id", "", "Board id or alias")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Backup directory (default output_dir from config)")
	return cmd
}

func printBurndown(w io.Writer, series *burndown.Series) error {
	dp, ok := series.Last()
	if !ok {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Sprint %d\n", series.Meta.Sprint); err != nil {
		return err
	}
	return report.NewRenderer(w).Burndown(series.Meta.Lists, dp)
}

func newBurndownInitCmd(opts *rootOptions) *cobra.Command {
	var (
		boardID string
		output  string
		lists   string
	)

	cmd := &cobra.Command{
		Use:   "burndown-init",
		Short: "Start burndown data for the first sprint",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		env, err := opts.setup(cmd)
		if err != nil {
			return err
		}
		id, err := env.boardID(boardID)
		if err != nil {
			return err
		}

		stop := env.spin("Fetching board")
		series, err := env.app.BurndownInit(cmd.Context(), id, env.outputDir(output), parseCommaList(lists))
		stop()
		if err != nil {
			return fail(cmd, err)
		}
		return printBurndown(cmd.OutOrStdout(), series)
	}
	cmd.Flags().StringVar(&boardID, "board-id", "", "Board id or alias")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Burndown data directory (default output_dir from config)")
	cmd.Flags().StringVar(&lists, "lists", "", "Comma-separated list names to track (default every sprint, backlog and done list)")
	return cmd
}

func newBurndownCmd(opts *rootOptions) *cobra.Command {
	var (
		boardID   string
		output    string
		newSprint bool
	)

	cmd := &cobra.Command{
		Use:   "burndown",
		Short: "Record today's burndown sample",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if boardID != "" {
				boardID = env.cfg.ResolveBoard(boardID)
			}

			stop := env.spin("Fetching board")
			series, err := env.app.Burndown(cmd.Context(), boardID, env.outputDir(output), newSprint)
			stop()
			if err != nil {
				return fail(cmd, err)
			}
			return printBurndown(cmd.OutOrStdout(), series)
		},
	}
	cmd.Flags().StringVar(&boardID, "board-id", "", "Board id or alias (default the board the data was started for)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Burndown data directory (default output_dir from config)")
	cmd.Flags().BoolVar(&newSprint, "new-sprint", false, "Start the next sprint before sampling")
	return cmd
}

func newBurndownsCmd(opts *rootOptions) *cobra.Command {
	var (
		boardList string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "burndowns",
		Short: "Record burndown samples for every board of a board list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if boardList == "" {
				return clierr.New(clierr.CodeUsage, "--board-list is required")
			}
			env, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			entries, err := config.LoadBoardList(boardList)
			if err != nil {
				return clierr.Wrap(clierr.CodeConfig, "invalid board list", err)
			}

			dir := env.outputDir(output)
			stop := env.spin(fmt.Sprintf("Fetching %d boards", len(entries)))
			err = env.app.Burndowns(cmd.Context(), entries, dir)
			stop()
			if err != nil {
				return fail(cmd, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated %d boards in %s\n", len(entries), dir)
			return err
		},
	}
	cmd.Flags().StringVar(&boardList, "board-list", "", "YAML file mapping board names to board ids")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Burndown data directory (default output_dir from config)")
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		boardID       string
		output        string
		formats       string
		burndownDir   string
		velocity      int
		estimatedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export a board report as JSON, HTML, CSV or Excel",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		env, err := opts.setup(cmd)
		if err != nil {
			return err
		}
		id, err := env.boardID(boardID)
		if err != nil {
			return err
		}

		dir := env.outputDir(output)
		stop := env.spin("Generating report")
		files, err := env.app.Report(cmd.Context(), id, sprintboard.ReportOptions{
			Dir:     dir,
			Formats: parseCommaList(formats),
			Backlog: backlog.Options{
				Velocity:      velocityFlag(cmd, velocity),
				EstimatedOnly: estimatedOnly,
			},
			BurndownDir: burndownDir,
		})
		stop()
		if err != nil {
			return fail(cmd, err)
		}

		w := cmd.OutOrStdout()
		if _, err := fmt.Fprintf(w, "Reports saved to %s/\n", dir); err != nil {
			return err
		}
		for _, f := range files {
			if _, err := fmt.Fprintf(w, "  -> %s\n", f); err != nil {
				return err
			}
		}
		return nil
	}

	cmd.Flags().StringVar(&boardID, "board-id", "", "Board id or alias")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default output_dir from config)")
	cmd.Flags().StringVar(&formats, "format", "json,html", "Comma-separated formats: json, html, csv, xlsx")
	cmd.Flags().StringVar(&burndownDir, "burndown-dir", "", "Directory with the board's burndown data")
	cmd.Flags().IntVar(&velocity, "velocity", 0, "Points per sprint; slices the backlog when set")
	cmd.Flags().BoolVar(&estimatedOnly, "estimated-only", false, "Leave out cards without an estimate")
	return cmd
}
