package grid

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNonContiguous aborts a bulk commit whose selection no longer forms a
// contiguous single-row range at commit time.
var ErrNonContiguous = errors.New("selection is not a contiguous single-row range")

// CommitRequest is the backend write produced by a successful commit. Bulk
// is true when more than one cell is applied; bulk applies always go out as
// one logical operation.
type CommitRequest struct {
	Cells []CellAddr
	Hours float64
	Bulk  bool
}

// Editor owns the transient "currently typing" state: at most one cell is
// ever in edit mode. Commits sanitize the buffer, apply optimistically via
// the session-provided apply hook and hand back the backend request.
type Editor struct {
	data *Dataset
	sel  *Selection

	// apply performs the optimistic local write (set by the session).
	apply func(cells []CellAddr, hours float64)

	active  CellAddr
	editing bool
	buf     string

	Changed Signal
}

func NewEditor(data *Dataset, sel *Selection) *Editor {
	return &Editor{data: data, sel: sel}
}

// EditingCell returns the cell under edit, if any.
func (e *Editor) EditingCell() (CellAddr, bool) {
	return e.active, e.editing
}

// Buffer returns the in-progress textual value.
func (e *Editor) Buffer() string { return e.buf }

// StartEditing enters edit mode for addr, seeding the buffer with initial.
// If another cell is already in edit mode its value is committed first; the
// resulting backend request (if any) is returned so the caller can send it.
func (e *Editor) StartEditing(addr CellAddr, initial string) (*CommitRequest, error) {
	if !e.data.Contains(addr) {
		return nil, nil
	}
	var prior *CommitRequest
	var err error
	if e.editing && e.active != addr {
		prior, err = e.Commit()
		if err != nil {
			// Contiguity failure on the prior edit: discard it rather than
			// blocking the new edit.
			e.Cancel()
			err = nil
		}
	}
	e.active = addr
	e.editing = true
	e.buf = initial
	e.Changed.Notify()
	return prior, err
}

// Type appends a rune to the edit buffer.
func (e *Editor) Type(r rune) {
	if !e.editing {
		return
	}
	e.buf += string(r)
	e.Changed.Notify()
}

// Backspace removes the last rune of the edit buffer.
func (e *Editor) Backspace() {
	if !e.editing || e.buf == "" {
		return
	}
	rs := []rune(e.buf)
	e.buf = string(rs[:len(rs)-1])
	e.Changed.Notify()
}

// Cancel discards the pending value and leaves edit mode. No backend call,
// no data change, focus stays on the same cell.
func (e *Editor) Cancel() {
	e.editing = false
	e.active = CellAddr{}
	e.buf = ""
	e.Changed.Notify()
}

// Commit resolves the pending edit: the buffer is sanitized, the current
// selection is re-validated for contiguity, the value is applied to every
// cell in the validated range and the matching backend request is returned.
// On contiguity failure nothing is applied and ErrNonContiguous is returned.
// A successful single-cell commit advances focus to the next week column in
// the same row when one exists.
func (e *Editor) Commit() (*CommitRequest, error) {
	if !e.editing {
		return nil, nil
	}
	hours := SanitizeHours(e.buf)

	cells := e.sel.SelectedCells()
	if len(cells) == 0 {
		cells = []CellAddr{e.active}
	}
	if err := validateContiguous(e.data, cells); err != nil {
		return nil, err
	}

	if e.apply != nil {
		e.apply(cells, hours)
	}
	req := &CommitRequest{Cells: cells, Hours: hours, Bulk: len(cells) > 1}

	committed := e.active
	e.editing = false
	e.active = CellAddr{}
	e.buf = ""

	if !req.Bulk {
		e.advanceCursor(committed)
	}
	e.Changed.Notify()
	return req, nil
}

// advanceCursor implements the post-commit cursor policy: move to the next
// week column in the same row, else hold position.
func (e *Editor) advanceCursor(from CellAddr) {
	wi, ok := e.data.WeekIndex(from.Week)
	if !ok {
		return
	}
	if next, ok := e.data.WeekAt(wi + 1); ok {
		e.sel.SelectCell(CellAddr{Row: from.Row, Week: next}, false)
	}
}

// validateContiguous enforces the commit-time range invariant: every cell is
// inside the universe, on one row, and the week indices form one unbroken
// ascending run.
func validateContiguous(data *Dataset, cells []CellAddr) error {
	if len(cells) == 0 {
		return ErrNonContiguous
	}
	row := cells[0].Row
	prev := -1
	for i, c := range cells {
		if c.Row != row || !data.Contains(c) {
			return ErrNonContiguous
		}
		wi, ok := data.WeekIndex(c.Week)
		if !ok {
			return ErrNonContiguous
		}
		if i > 0 && wi != prev+1 {
			return ErrNonContiguous
		}
		prev = wi
	}
	return nil
}

// SanitizeHours coerces free text to a non-negative hours value. It is pure
// and total: non-numeric, negative, NaN and infinite inputs all clamp to 0,
// so committing code never branches on parse failure.
func SanitizeHours(text string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
