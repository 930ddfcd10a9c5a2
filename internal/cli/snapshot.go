package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"staffgrid/internal/week"
)

func newSnapshotCmd(app *App) *cobra.Command {
	var (
		weeks int
		start string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the full grid snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if weeks < 1 {
				return writeErr(cmd, fmt.Errorf("weeks must be >= 1, got %d", weeks))
			}
			from := time.Now()
			if start != "" {
				t, err := week.Parse(start)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("invalid --start: %w", err))
				}
				from = t
			}
			st, err := loadStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			snap, err := st.Snapshot(cmd.Context(), app.Department, week.Horizon(from, weeks))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": snap})
		},
	}

	cmd.Flags().IntVar(&weeks, "weeks", 12, "Number of week columns")
	cmd.Flags().StringVar(&start, "start", "", "First week (YYYY-MM-DD Monday, default: current week)")
	return cmd
}
