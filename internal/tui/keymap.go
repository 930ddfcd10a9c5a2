package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Move    key.Binding
	Extend  key.Binding
	Tab     key.Binding
	Edit    key.Binding
	Clear   key.Binding
	Escape  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Move: key.NewBinding(
			key.WithKeys("up", "down", "left", "right"),
			key.WithHelp("arrows", "move"),
		),
		Extend: key.NewBinding(
			key.WithKeys("shift+left", "shift+right"),
			key.WithHelp("shift+arrows", "extend"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "next cell"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "edit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("bksp", "clear"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpLine renders the one-row hint bar from the bindings' help text.
func (k keyMap) helpLine(editing bool) string {
	var parts []string
	add := func(b key.Binding) {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	if editing {
		parts = append(parts, "enter commit", "esc discard", "tab commit+next")
	} else {
		add(k.Move)
		add(k.Extend)
		add(k.Edit)
		add(k.Tab)
		add(k.Refresh)
		add(k.Quit)
	}
	return strings.Join(parts, "  ")
}
