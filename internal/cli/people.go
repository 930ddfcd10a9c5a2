package cli

import (
	"github.com/spf13/cobra"

	"staffgrid/internal/model"
)

func newPeopleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "people",
		Short: "Manage people",
	}
	cmd.AddCommand(newPeopleListCmd(app))
	cmd.AddCommand(newPeopleAddCmd(app))
	cmd.AddCommand(newPeopleCapacityCmd(app))
	return cmd
}

func newPeopleListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List people",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			people, err := st.ListPeople(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": people})
		},
	}
}

func newPeopleAddCmd(app *App) *cobra.Command {
	var (
		name       string
		department string
		capacity   float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a person",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := st.CreatePerson(cmd.Context(), model.Person{
				Name:           name,
				Department:     department,
				WeeklyCapacity: capacity,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Person name (required)")
	cmd.Flags().StringVar(&department, "department", "", "Department")
	cmd.Flags().Float64Var(&capacity, "capacity", 40, "Weekly capacity in hours")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newPeopleCapacityCmd(app *App) *cobra.Command {
	var hours float64

	cmd := &cobra.Command{
		Use:   "capacity <person-id>",
		Short: "Set a person's weekly capacity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.SetCapacity(cmd.Context(), args[0], hours); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"id": args[0], "weeklyCapacity": hours},
			})
		},
	}

	cmd.Flags().Float64Var(&hours, "hours", 40, "Weekly capacity in hours")
	return cmd
}
