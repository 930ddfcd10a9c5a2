package grid

// Direction is a navigation axis step.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// Selection tracks the focused cell and the anchor/focus range built by
// drag or shift-extension. Ranges are confined to a single row: the range is
// always the contiguous run of week columns between anchor and focus. The
// cell set is re-derived from anchor and focus on every access, never cached
// across structural changes.
type Selection struct {
	data *Dataset

	anchor   CellAddr
	focus    CellAddr
	dragging bool

	Changed Signal
}

func NewSelection(data *Dataset) *Selection {
	return &Selection{data: data}
}

// Focus returns the focused cell, if any.
func (s *Selection) Focus() (CellAddr, bool) {
	return s.focus, !s.focus.IsZero()
}

// Anchor returns the range anchor, if any.
func (s *Selection) Anchor() (CellAddr, bool) {
	return s.anchor, !s.anchor.IsZero()
}

// SelectCell moves focus to addr. With extend false the selection collapses
// to that single cell and the anchor resets; with extend true the range is
// re-derived between the stored anchor and addr. Extension onto another row
// re-anchors at addr (ranges never span rows).
func (s *Selection) SelectCell(addr CellAddr, extend bool) {
	if !s.data.Contains(addr) {
		return
	}
	if !extend || s.anchor.IsZero() || s.anchor.Row != addr.Row {
		s.anchor = addr
	}
	s.focus = addr
	s.Changed.Notify()
}

// BeginDrag starts pointer range building at addr.
func (s *Selection) BeginDrag(addr CellAddr) {
	if !s.data.Contains(addr) {
		return
	}
	s.dragging = true
	s.anchor = addr
	s.focus = addr
	s.Changed.Notify()
}

// EnterDrag extends the active drag to addr, using the same single-row
// contiguity rule as keyboard extension. Without an active drag it is a
// no-op.
func (s *Selection) EnterDrag(addr CellAddr) {
	if !s.dragging {
		return
	}
	s.SelectCell(addr, true)
}

func (s *Selection) EndDrag() {
	s.dragging = false
}

func (s *Selection) Dragging() bool { return s.dragging }

// Extend grows the range one cell along the active row's week ordering and
// re-derives the range from the stored anchor. Vertical extension is not
// permitted (ranges never span rows). At the row edge it is a no-op.
func (s *Selection) Extend(dir Direction) {
	if s.focus.IsZero() {
		return
	}
	if dir != DirLeft && dir != DirRight {
		return
	}
	wi, ok := s.data.WeekIndex(s.focus.Week)
	if !ok {
		return
	}
	step := 1
	if dir == DirLeft {
		step = -1
	}
	next, ok := s.data.WeekAt(wi + step)
	if !ok {
		return
	}
	s.SelectCell(CellAddr{Row: s.focus.Row, Week: next}, true)
}

// Clear drops the selection entirely.
func (s *Selection) Clear() {
	s.anchor = CellAddr{}
	s.focus = CellAddr{}
	s.dragging = false
	s.Changed.Notify()
}

// IsSelected reports whether addr lies inside the current range.
func (s *Selection) IsSelected(addr CellAddr) bool {
	lo, hi, row, ok := s.span()
	if !ok || addr.Row != row {
		return false
	}
	wi, wok := s.data.WeekIndex(addr.Week)
	return wok && wi >= lo && wi <= hi
}

// SelectedCells returns the range as an ordered slice of addresses, week
// order ascending. Recomputed on every call.
func (s *Selection) SelectedCells() []CellAddr {
	lo, hi, row, ok := s.span()
	if !ok {
		return nil
	}
	cells := make([]CellAddr, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		w, _ := s.data.WeekAt(i)
		cells = append(cells, CellAddr{Row: row, Week: w})
	}
	return cells
}

// Summary describes the selection for status-bar display.
type Summary struct {
	Count      int
	TotalHours float64
}

func (s *Selection) Summary() Summary {
	var out Summary
	for _, c := range s.SelectedCells() {
		out.Count++
		out.TotalHours += s.data.ValueAt(c)
	}
	return out
}

// span resolves the anchor/focus pair into an inclusive week-index interval
// on one row. Cells that have left the universe invalidate the range.
func (s *Selection) span() (lo, hi int, row RowKey, ok bool) {
	if s.focus.IsZero() || !s.data.Contains(s.focus) {
		return 0, 0, RowKey{}, false
	}
	fi, _ := s.data.WeekIndex(s.focus.Week)
	if s.anchor.IsZero() || s.anchor.Row != s.focus.Row || !s.data.Contains(s.anchor) {
		return fi, fi, s.focus.Row, true
	}
	ai, _ := s.data.WeekIndex(s.anchor.Week)
	if ai <= fi {
		return ai, fi, s.focus.Row, true
	}
	return fi, ai, s.focus.Row, true
}
