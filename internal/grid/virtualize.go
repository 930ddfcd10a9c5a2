package grid

// Window is the contiguous sub-range of week columns to materialize, plus
// pixel padding so the rendered subset occupies the same position the full
// column list would. Start is inclusive, End exclusive.
type Window struct {
	Start    int
	End      int
	PadLeft  int
	PadRight int
}

// Cols returns the number of materialized columns.
func (w Window) Cols() int { return w.End - w.Start }

// Contains reports whether column index i is materialized.
func (w Window) Contains(i int) bool { return i >= w.Start && i < w.End }

// VisibleWindow computes the columns intersecting the viewport plus overscan
// columns on each side. The result is clamped to [0, totalCols) and is never
// empty when totalCols > 0. Purely a rendering optimization: selection and
// editing always operate over full cell addresses regardless of what is
// materialized.
func VisibleWindow(totalCols, colWidth, scrollOffset, viewportWidth, overscan int) Window {
	if totalCols <= 0 {
		return Window{}
	}
	if colWidth <= 0 {
		colWidth = 1
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if overscan < 0 {
		overscan = 0
	}

	first := scrollOffset / colWidth
	last := first
	if viewportWidth > 0 {
		last = (scrollOffset + viewportWidth - 1) / colWidth
	}

	first -= overscan
	last += overscan
	if first < 0 {
		first = 0
	}
	if last > totalCols-1 {
		last = totalCols - 1
	}
	if first > totalCols-1 {
		first = totalCols - 1
	}
	if last < first {
		last = first
	}

	return Window{
		Start:    first,
		End:      last + 1,
		PadLeft:  first * colWidth,
		PadRight: (totalCols - 1 - last) * colWidth,
	}
}
