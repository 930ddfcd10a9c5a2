package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"staffgrid/internal/week"
)

const cliOrigin = "cli"

func newAssignmentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assignments",
		Aliases: []string{"asn"},
		Short:   "Manage person/project assignments and their weekly hours",
	}
	cmd.AddCommand(newAssignmentsAddCmd(app))
	cmd.AddCommand(newAssignmentsRemoveCmd(app))
	cmd.AddCommand(newAssignmentsShowCmd(app))
	cmd.AddCommand(newAssignmentsSetCmd(app))
	return cmd
}

func newAssignmentsAddCmd(app *App) *cobra.Command {
	var personID, projectID string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Assign a person to a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, err := st.CreateAssignment(cmd.Context(), personID, projectID, cliOrigin)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": a})
		},
	}

	cmd.Flags().StringVar(&personID, "person", "", "Person ID (required)")
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (required)")
	_ = cmd.MarkFlagRequired("person")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newAssignmentsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <assignment-id>",
		Short: "Remove an assignment and its planned hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.DeleteAssignment(cmd.Context(), args[0], cliOrigin); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"id": args[0], "deleted": true},
			})
		},
	}
}

func newAssignmentsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <assignment-id>",
		Short: "Show one assignment with its weekly hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, err := st.GetAssignment(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": a})
		},
	}
}

func newAssignmentsSetCmd(app *App) *cobra.Command {
	var (
		weekKey string
		hours   float64
	)

	cmd := &cobra.Command{
		Use:   "set <assignment-id>",
		Short: "Set the planned hours for one assignment week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := week.Parse(weekKey); err != nil {
				return writeErr(cmd, fmt.Errorf("invalid --week: %w", err))
			}
			if hours < 0 {
				return writeErr(cmd, fmt.Errorf("hours must be >= 0, got %v", hours))
			}
			st, err := loadStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, err := st.SetHours(cmd.Context(), args[0], weekKey, hours, cliOrigin)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": a})
		},
	}

	cmd.Flags().StringVar(&weekKey, "week", "", "Week key, the Monday date (YYYY-MM-DD, required)")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Planned hours for the week; 0 clears the cell")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}
