package cli

import (
	"os"

	"github.com/spf13/cobra"

	"staffgrid/internal/config"
)

func newInitCmd(app *App) *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data dir, database and default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			// Write a config file only when none exists yet, so re-running
			// init never clobbers tuned settings.
			if _, err := os.Stat(config.Path(app.Dir)); os.IsNotExist(err) {
				if err := config.Save(app.Dir, config.Default()); err != nil {
					return writeErr(cmd, err)
				}
			}

			if demo {
				if err := st.SeedDemo(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":    app.Dir,
					"config": config.Path(app.Dir),
					"demo":   demo,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "Seed a small demo plan")
	return cmd
}
