// Package tui renders the interactive staffing grid in the terminal.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Run loads the initial snapshot and hands the terminal to the grid until
// the user quits.
func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	opts.applyDefaults()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	snap, err := opts.Backend.Snapshot(ctx, opts.Department, opts.Weeks)
	cancel()
	if err != nil {
		return err
	}

	m := newAppModel(opts, snap)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
