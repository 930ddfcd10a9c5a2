package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"staffgrid/internal/grid"
	"staffgrid/internal/model"
)

const backendTimeout = 10 * time.Second

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case eventMsg:
		m.session.HandleEvent(msg.ev)
		cmds := m.collectSessionCmds()
		if m.opts.Events != nil {
			cmds = append(cmds, waitForEvent(m.opts.Events))
		}
		return m, tea.Batch(cmds...)

	case eventsClosedMsg:
		m.setStatus("event stream closed; showing last known state", true)
		return m, nil

	case timerMsg:
		m.sched.fire(msg.id)
		return m, tea.Batch(m.collectSessionCmds()...)

	case commitResultMsg:
		if msg.err != nil {
			// The optimistic value stays in place; the next event or reload
			// reconciles it.
			m.setStatus("save failed: "+msg.err.Error(), true)
			return m, nil
		}
		for _, a := range msg.updated {
			m.session.Rec.HandleCommitResult(a)
		}
		return m, tea.Batch(m.collectSessionCmds()...)

	case refetchMsg:
		if msg.err != nil {
			// Dropped: a later event or snapshot reload reconciles.
			return m, nil
		}
		a := msg.assignment
		m.session.Rec.Enqueue(model.ChangeEvent{
			AssignmentID: a.ID,
			Kind:         model.ChangeUpdated,
			Assignment:   &a,
			ServerTS:     a.UpdatedAt,
		})
		return m, tea.Batch(m.collectSessionCmds()...)

	case reloadMsg:
		if msg.err != nil {
			m.setStatus("reload failed: "+msg.err.Error(), true)
			return m, nil
		}
		// The event-stream reader armed at startup keeps running and will
		// deliver to the fresh model, so Init is not re-run here.
		fresh := newAppModel(m.opts, msg.snap)
		fresh.width = m.width
		fresh.height = m.height
		fresh.setStatus("reloaded", false)
		return fresh, nil
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	editing := m.session.Nav.State() == grid.StateEditing

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if !editing {
			return m, tea.Quit
		}
	case "ctrl+r":
		if !editing {
			return m, m.reloadCmd()
		}
		return m, nil
	}

	ev, ok := keyEventFor(msg)
	if !ok {
		return m, nil
	}
	m.status = ""
	eff := m.session.HandleKey(ev)
	if eff.Warning != "" {
		m.setStatus(eff.Warning, true)
	}

	cmds := m.collectSessionCmds()
	for _, req := range eff.Commits {
		cmds = append(cmds, m.commitCmd(req))
	}
	return m, tea.Batch(cmds...)
}

// keyEventFor maps a terminal key press onto the grid's logical key space.
func keyEventFor(msg tea.KeyMsg) (grid.KeyEvent, bool) {
	switch msg.String() {
	case "up":
		return grid.KeyEvent{Kind: grid.KeyArrow, Dir: grid.DirUp}, true
	case "down":
		return grid.KeyEvent{Kind: grid.KeyArrow, Dir: grid.DirDown}, true
	case "left":
		return grid.KeyEvent{Kind: grid.KeyArrow, Dir: grid.DirLeft}, true
	case "right":
		return grid.KeyEvent{Kind: grid.KeyArrow, Dir: grid.DirRight}, true
	case "shift+up":
		return grid.KeyEvent{Kind: grid.KeyArrow, Dir: grid.DirUp, Shift: true}, true
	case "shift+down":
		return grid.KeyEvent{Kind: grid.KeyArrow, Dir: grid.DirDown, Shift: true}, true
	case "shift+left":
		return grid.KeyEvent{Kind: grid.KeyArrow, Dir: grid.DirLeft, Shift: true}, true
	case "shift+right":
		return grid.KeyEvent{Kind: grid.KeyArrow, Dir: grid.DirRight, Shift: true}, true
	case "enter":
		return grid.KeyEvent{Kind: grid.KeyEnter}, true
	case "tab":
		return grid.KeyEvent{Kind: grid.KeyTab}, true
	case "shift+tab":
		return grid.KeyEvent{Kind: grid.KeyTab, Shift: true}, true
	case "esc":
		return grid.KeyEvent{Kind: grid.KeyEscape}, true
	case "backspace":
		return grid.KeyEvent{Kind: grid.KeyBackspace}, true
	case " ":
		return grid.KeyEvent{Kind: grid.KeySpace}, true
	}
	if rs := []rune(msg.String()); len(rs) == 1 {
		return grid.KeyEvent{Kind: grid.KeyRune, Rune: rs[0]}, true
	}
	return grid.KeyEvent{}, false
}

// collectSessionCmds turns session side effects into commands: armed flush
// timers become ticks and pending point fetches become backend calls.
func (m *appModel) collectSessionCmds() []tea.Cmd {
	var cmds []tea.Cmd
	for _, t := range m.sched.takeArmed() {
		id := t.id
		cmds = append(cmds, tea.Tick(t.delay, func(time.Time) tea.Msg {
			return timerMsg{id: id}
		}))
	}
	for _, assignmentID := range m.session.Rec.DrainFetchRequests() {
		cmds = append(cmds, m.refetchCmd(assignmentID))
	}
	return cmds
}

func (m appModel) commitCmd(req *grid.CommitRequest) tea.Cmd {
	be := m.opts.Backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		if req.Bulk {
			updated, err := be.SetHoursBulk(ctx, req.BulkCells(), req.Hours)
			return commitResultMsg{updated: updated, err: err}
		}
		c := req.Cells[0]
		a, err := be.SetHours(ctx, c.Row.AssignmentID, c.Week, req.Hours)
		if err != nil {
			return commitResultMsg{err: err}
		}
		return commitResultMsg{updated: []model.Assignment{a}}
	}
}

func (m appModel) refetchCmd(assignmentID string) tea.Cmd {
	be := m.opts.Backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		a, err := be.Assignment(ctx, assignmentID)
		return refetchMsg{assignment: a, err: err}
	}
}

func (m appModel) reloadCmd() tea.Cmd {
	be := m.opts.Backend
	dept := m.opts.Department
	weeks := m.opts.Weeks
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		snap, err := be.Snapshot(ctx, dept, weeks)
		return reloadMsg{snap: snap, err: err}
	}
}

func (m *appModel) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}
