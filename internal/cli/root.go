// Package cli wires the staffgrid commands: scriptable JSON commands over
// the local store, a server, and the interactive grid when no subcommand is
// given.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"staffgrid/internal/client"
	"staffgrid/internal/config"
	"staffgrid/internal/format"
	"staffgrid/internal/store"
	"staffgrid/internal/tui"
)

type App struct {
	Dir        string
	Addr       string
	Department string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "staffgrid",
		Short:        "Weekly staffing grid: CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive grid on the local store
  staffgrid

  # Join a shared planning server
  staffgrid --addr http://plan.example:7420

  # Scriptable commands
  staffgrid people list
  staffgrid snapshot --weeks 8
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive grid.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runGrid(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("STAFFGRID_DIR", ""), "Path to the data dir (default: ~/.staffgrid)")
	cmd.PersistentFlags().StringVar(&app.Addr, "addr", envOr("STAFFGRID_ADDR", ""), "Server URL; when set the grid runs against the server instead of the local store")
	cmd.PersistentFlags().StringVar(&app.Department, "department", envOr("STAFFGRID_DEPARTMENT", ""), "Limit the grid to one department")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("STAFFGRID_FORMAT", "json"), "Output format (json|jsonl)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newPeopleCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newAssignmentsCmd(app))
	cmd.AddCommand(newSnapshotCmd(app))
	cmd.AddCommand(newEventsCmd(app))

	return cmd
}

// dataDir resolves the store location: --dir / STAFFGRID_DIR, else
// ~/.staffgrid.
func dataDir(app *App) (string, error) {
	if strings.TrimSpace(app.Dir) != "" {
		return app.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	app.Dir = filepath.Join(home, ".staffgrid")
	return app.Dir, nil
}

func loadStore(app *App) (store.Store, error) {
	dir, err := dataDir(app)
	if err != nil {
		return store.Store{}, err
	}
	s := store.Store{Dir: dir}
	if err := s.Ensure(); err != nil {
		return store.Store{}, err
	}
	return s, nil
}

func runGrid(app *App) error {
	dir, err := dataDir(app)
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	dept := app.Department
	if dept == "" {
		dept = cfg.Department
	}

	opts := tui.Options{
		Department:  dept,
		Weeks:       cfg.WeekHorizon,
		ColumnWidth: cfg.ColumnWidth,
		Overscan:    cfg.Overscan,
		FlushDelay:  cfg.FlushDelay(),
	}

	addr := strings.TrimSpace(app.Addr)
	if addr == "" {
		st, err := loadStore(app)
		if err != nil {
			return err
		}
		origin := store.NewID("tui")
		events, stop := localEvents(st)
		defer stop()

		opts.Backend = &localBackend{st: st, origin: origin}
		opts.Events = events
		opts.SessionID = origin
		opts.Title = dir
		return tui.Run(opts)
	}

	return runRemoteGrid(addr, opts)
}

// runRemoteGrid connects the grid to a planning server. Backend writes and
// the session share one ID so the change stream's own echoes are dropped.
func runRemoteGrid(addr string, opts tui.Options) error {
	sessionID := store.NewID("tui")
	c, err := client.New(addr, sessionID)
	if err != nil {
		return err
	}
	stream, err := c.OpenStream(context.Background())
	if err != nil {
		return fmt.Errorf("connect change stream: %w", err)
	}
	defer stream.Close()

	opts.Backend = c
	opts.Events = stream.Events
	opts.SessionID = sessionID
	opts.Title = addr
	return tui.Run(opts)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
