package grid

import (
	"strconv"
	"unicode"
)

// NavState is the keyboard state machine's mode.
type NavState int

const (
	StateNavigating NavState = iota
	StateEditing
)

// KeyKind classifies the key events the grid understands. The presentation
// layer maps its own key representation onto these; the machine never sees
// terminal- or DOM-specific key types.
type KeyKind int

const (
	KeyArrow KeyKind = iota
	KeyEnter
	KeySpace
	KeyTab
	KeyEscape
	KeyBackspace
	KeyRune
)

// KeyEvent is one logical key press.
type KeyEvent struct {
	Kind  KeyKind
	Dir   Direction // for KeyArrow
	Shift bool      // shift+arrow extension, shift+tab reverse
	Rune  rune      // for KeyRune
}

// Effect is what a key press asks the surrounding layer to do: send a commit
// to the backend and/or surface a warning. A zero Effect means the press was
// fully handled internally.
type Effect struct {
	Commits []*CommitRequest
	Warning string
}

func (e Effect) add(req *CommitRequest) Effect {
	if req != nil {
		e.Commits = append(e.Commits, req)
	}
	return e
}

// Machine translates key events into selection/editing transitions. Its
// state is derived from the editor: exactly one cell in edit mode means
// StateEditing.
type Machine struct {
	data *Dataset
	sel  *Selection
	ed   *Editor
}

func NewMachine(data *Dataset, sel *Selection, ed *Editor) *Machine {
	return &Machine{data: data, sel: sel, ed: ed}
}

func (m *Machine) State() NavState {
	if _, editing := m.ed.EditingCell(); editing {
		return StateEditing
	}
	return StateNavigating
}

// HandleKey advances the state machine by one key press.
func (m *Machine) HandleKey(k KeyEvent) Effect {
	if m.State() == StateEditing {
		return m.handleEditing(k)
	}
	return m.handleNavigating(k)
}

func (m *Machine) handleNavigating(k KeyEvent) Effect {
	switch k.Kind {
	case KeyArrow:
		if k.Shift {
			m.sel.Extend(k.Dir)
			return Effect{}
		}
		m.move(k.Dir)
		return Effect{}

	case KeyTab:
		m.moveRowMajor(!k.Shift)
		return Effect{}

	case KeyEnter:
		return m.startEdit(m.seedFromValue())

	case KeySpace:
		return m.startEdit("")

	case KeyRune:
		if unicode.IsDigit(k.Rune) {
			// Digit entry pre-seeds the buffer with the typed character.
			return m.startEdit(string(k.Rune))
		}
		return Effect{}

	case KeyEscape:
		// Collapse any multi-cell range back to the focused cell.
		if focus, ok := m.sel.Focus(); ok {
			m.sel.SelectCell(focus, false)
		}
		return Effect{}
	}
	return Effect{}
}

func (m *Machine) handleEditing(k KeyEvent) Effect {
	switch k.Kind {
	case KeyEnter:
		eff, _ := m.commit()
		return eff

	case KeyEscape:
		m.ed.Cancel()
		return Effect{}

	case KeyTab:
		// Commit, then move row-major; edit mode is not re-entered unless
		// explicitly re-triggered. A failed commit holds position with the
		// edit still pending, so the buffer can never land on another cell.
		eff, ok := m.commit()
		if ok {
			m.moveRowMajor(!k.Shift)
		}
		return eff

	case KeyArrow:
		if k.Shift {
			// Permitted while editing: force a commit of the in-progress
			// value, then perform the extension. On failure the edit stays
			// where it is and the selection does not move.
			eff, ok := m.commit()
			if ok {
				m.sel.Extend(k.Dir)
			}
			return eff
		}
		return Effect{}

	case KeyBackspace:
		m.ed.Backspace()
		return Effect{}

	case KeyRune:
		if unicode.IsPrint(k.Rune) {
			m.ed.Type(k.Rune)
		}
		return Effect{}
	}
	return Effect{}
}

func (m *Machine) startEdit(seed string) Effect {
	focus, ok := m.sel.Focus()
	if !ok {
		return Effect{}
	}
	prior, err := m.ed.StartEditing(focus, seed)
	eff := Effect{}.add(prior)
	if err != nil {
		eff.Warning = err.Error()
	}
	return eff
}

func (m *Machine) commit() (Effect, bool) {
	req, err := m.ed.Commit()
	if err != nil {
		// Contiguity failure: abort the bulk apply, keep data untouched,
		// surface a warning. The pending edit stays active.
		return Effect{Warning: "bulk apply aborted: " + err.Error()}, false
	}
	return Effect{}.add(req), true
}

// move shifts focus one cell. Horizontal movement stays on the row,
// vertical movement keeps the week column; attempts past the grid edges do
// not wrap and do not move.
func (m *Machine) move(dir Direction) {
	focus, ok := m.sel.Focus()
	if !ok {
		m.selectFirst()
		return
	}
	ri, ok := m.data.RowIndex(focus.Row)
	if !ok {
		m.selectFirst()
		return
	}
	wi, ok := m.data.WeekIndex(focus.Week)
	if !ok {
		m.selectFirst()
		return
	}

	switch dir {
	case DirLeft:
		wi--
	case DirRight:
		wi++
	case DirUp:
		ri--
	case DirDown:
		ri++
	}
	row, ok := m.data.RowAt(ri)
	if !ok {
		return
	}
	wk, ok := m.data.WeekAt(wi)
	if !ok {
		return
	}
	m.sel.SelectCell(CellAddr{Row: row.Key, Week: wk}, false)
}

// moveRowMajor moves focus to the next (or previous) cell in row-major
// order, crossing from the last week of one row to the first week of the
// next. At the grid's first/last cell it is a no-op.
func (m *Machine) moveRowMajor(forward bool) {
	focus, ok := m.sel.Focus()
	if !ok {
		m.selectFirst()
		return
	}
	ri, rok := m.data.RowIndex(focus.Row)
	wi, wok := m.data.WeekIndex(focus.Week)
	if !rok || !wok {
		m.selectFirst()
		return
	}
	if forward {
		wi++
		if wi >= m.data.NumWeeks() {
			wi = 0
			ri++
		}
	} else {
		wi--
		if wi < 0 {
			wi = m.data.NumWeeks() - 1
			ri--
		}
	}
	row, ok := m.data.RowAt(ri)
	if !ok {
		return
	}
	wk, ok := m.data.WeekAt(wi)
	if !ok {
		return
	}
	m.sel.SelectCell(CellAddr{Row: row.Key, Week: wk}, false)
}

func (m *Machine) selectFirst() {
	row, ok := m.data.RowAt(0)
	if !ok {
		return
	}
	wk, ok := m.data.WeekAt(0)
	if !ok {
		return
	}
	m.sel.SelectCell(CellAddr{Row: row.Key, Week: wk}, false)
}

// seedFromValue formats the focused cell's current hours as the initial edit
// buffer; zero-hour cells start empty so typing replaces rather than appends.
func (m *Machine) seedFromValue() string {
	focus, ok := m.sel.Focus()
	if !ok {
		return ""
	}
	v := m.data.ValueAt(focus)
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
