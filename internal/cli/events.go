package cli

import (
	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var (
		after int64
		limit int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the change log",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			changes, err := st.ChangesSince(cmd.Context(), after, limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": changes})
		},
	}

	cmd.Flags().Int64Var(&after, "after", 0, "Only changes with a sequence number greater than this")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of changes")
	return cmd
}
