package tui

import (
	"fmt"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"staffgrid/internal/format"
	"staffgrid/internal/grid"
	"staffgrid/internal/week"
)

const (
	personColWidth  = 16
	projectColWidth = 14
	labelWidth      = personColWidth + projectColWidth + 2
)

func (m appModel) View() string {
	if m.width == 0 {
		return "loading..."
	}

	data := m.session.Data
	focus, hasFocus := m.session.Sel.Focus()

	// Horizontal window: keep the focused week column in view, then clip to
	// the columns intersecting the viewport.
	viewport := m.width - labelWidth
	if viewport < m.opts.ColumnWidth {
		viewport = m.opts.ColumnWidth
	}
	if hasFocus {
		if fi, ok := data.WeekIndex(focus.Week); ok {
			cw := m.opts.ColumnWidth
			if fi*cw < m.scrollX {
				m.scrollX = fi * cw
			}
			if (fi+1)*cw > m.scrollX+viewport {
				m.scrollX = (fi+1)*cw - viewport
			}
		}
	}
	win := grid.VisibleWindow(data.NumWeeks(), m.opts.ColumnWidth, m.scrollX, viewport, m.opts.Overscan)

	var b strings.Builder
	b.WriteString(m.titleLine())
	b.WriteString("\n")
	b.WriteString(m.headerLine(win))
	b.WriteString("\n")

	lines, focusLine := m.bodyLines(win)

	// Vertical scroll keeps the focused row in view.
	bodyHeight := m.height - 4 // title + header + status + help
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	if focusLine >= 0 {
		if focusLine < m.scrollY {
			m.scrollY = focusLine
		}
		if focusLine >= m.scrollY+bodyHeight {
			m.scrollY = focusLine - bodyHeight + 1
		}
	}
	if m.scrollY > len(lines)-1 {
		m.scrollY = 0
	}
	end := m.scrollY + bodyHeight
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[m.scrollY:end] {
		b.WriteString(xansi.Truncate(line, m.width, ""))
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	editing := m.session.Nav.State() == grid.StateEditing
	b.WriteString(styleMuted().Render(xansi.Truncate(" "+m.keys.helpLine(editing), m.width, "")))
	return b.String()
}

func (m appModel) titleLine() string {
	title := " staffgrid"
	if m.opts.Title != "" {
		title += "  " + m.opts.Title
	}
	if m.opts.Department != "" {
		title += "  [" + m.opts.Department + "]"
	}
	return xansi.Truncate(styleTitle().Render(title), m.width, "")
}

func (m appModel) headerLine(win grid.Window) string {
	var b strings.Builder
	b.WriteString(pad("person", personColWidth))
	b.WriteString(" ")
	b.WriteString(pad("project", projectColWidth))
	b.WriteString(" ")
	data := m.session.Data
	for i := win.Start; i < win.End; i++ {
		wk, _ := data.WeekAt(i)
		b.WriteString(padRight(weekLabel(wk), m.opts.ColumnWidth))
	}
	return xansi.Truncate(styleHeader().Render(b.String()), m.width, "")
}

// bodyLines renders every grid row plus a totals line per person, and
// reports which line holds the focused row (-1 when none).
func (m appModel) bodyLines(win grid.Window) (lines []string, focusLine int) {
	data := m.session.Data
	focus, hasFocus := m.session.Sel.Focus()
	focusLine = -1

	prevPerson := ""
	flushTotals := func(personID string) {
		if personID == "" {
			return
		}
		lines = append(lines, m.totalsLine(win, personID))
	}

	for i := 0; i < data.NumRows(); i++ {
		row, _ := data.RowAt(i)
		if prevPerson != "" && row.Key.PersonID != prevPerson {
			flushTotals(prevPerson)
		}

		personLabel := ""
		if row.Key.PersonID != prevPerson {
			if p, ok := data.Person(row.Key.PersonID); ok {
				personLabel = p.Name
			} else {
				personLabel = row.Key.PersonID
			}
		}
		prevPerson = row.Key.PersonID

		projectLabel := row.ProjectID
		if p, ok := data.Project(row.ProjectID); ok {
			projectLabel = p.Name
		}

		var b strings.Builder
		b.WriteString(pad(personLabel, personColWidth))
		b.WriteString(" ")
		b.WriteString(pad(projectLabel, projectColWidth))
		b.WriteString(" ")
		for wi := win.Start; wi < win.End; wi++ {
			wk, _ := data.WeekAt(wi)
			addr := grid.CellAddr{Row: row.Key, Week: wk}
			b.WriteString(m.renderCell(addr))
		}
		if hasFocus && focus.Row == row.Key {
			focusLine = len(lines)
		}
		lines = append(lines, b.String())
	}
	flushTotals(prevPerson)
	return lines, focusLine
}

// renderCell draws one hours cell: the edit buffer with a cursor while that
// cell is being typed into, otherwise the stored value, highlighted for
// focus and range membership.
func (m appModel) renderCell(addr grid.CellAddr) string {
	cw := m.opts.ColumnWidth
	editCell, editing := m.session.Ed.EditingCell()
	if editing && editCell == addr {
		return styleFocus().Render(padRight(m.session.Ed.Buffer()+"_", cw))
	}

	text := padRight(format.Hours(m.session.Data.ValueAt(addr)), cw)
	focus, hasFocus := m.session.Sel.Focus()
	switch {
	case hasFocus && focus == addr:
		return styleFocus().Render(text)
	case m.session.Sel.IsSelected(addr):
		return styleSelected().Render(text)
	default:
		return text
	}
}

// totalsLine sums a person's allocation per week; weeks over the person's
// capacity stand out.
func (m appModel) totalsLine(win grid.Window, personID string) string {
	data := m.session.Data
	capacity := 0.0
	if p, ok := data.Person(personID); ok {
		capacity = p.WeeklyCapacity
	}

	var b strings.Builder
	b.WriteString(pad("", personColWidth))
	b.WriteString(" ")
	label := "total"
	if capacity > 0 {
		label = fmt.Sprintf("total/%s", format.Hours(capacity))
	}
	b.WriteString(styleTotal().Render(pad(label, projectColWidth)))
	b.WriteString(" ")
	for wi := win.Start; wi < win.End; wi++ {
		wk, _ := data.WeekAt(wi)
		sum := data.Total(personID, wk)
		cell := padRight(format.Hours(sum), m.opts.ColumnWidth)
		if capacity > 0 && sum > capacity {
			b.WriteString(styleOverload().Render(cell))
		} else {
			b.WriteString(styleTotal().Render(cell))
		}
	}
	return b.String()
}

func (m appModel) statusLine() string {
	data := m.session.Data
	mode := "NAV"
	if m.session.Nav.State() == grid.StateEditing {
		mode = "EDIT"
	}
	parts := []string{mode}

	if focus, ok := m.session.Sel.Focus(); ok {
		who := focus.Row.PersonID
		if p, pok := data.Person(focus.Row.PersonID); pok {
			who = p.Name
		}
		parts = append(parts, fmt.Sprintf("%s %s", who, weekLabel(focus.Week)))
	}
	if sum := m.session.Sel.Summary(); sum.Count > 1 {
		parts = append(parts, fmt.Sprintf("%d cells Σ %s", sum.Count, format.Hours(sum.TotalHours)))
	}

	line := " " + strings.Join(parts, "  ")
	if m.status != "" {
		msg := m.status
		if m.statusErr {
			msg = styleError().Render(msg)
		}
		line += "  " + msg
	}
	return xansi.Truncate(line, m.width, "")
}

// weekLabel shortens a week key for column headers: "2025-01-06" -> "Jan 06".
func weekLabel(key string) string {
	t, err := week.Parse(key)
	if err != nil {
		return key
	}
	return t.Format("Jan 02")
}

// pad left-aligns s in a w-wide column, truncating on rune boundaries.
func pad(s string, w int) string {
	s = xansi.Truncate(s, w, "…")
	if n := w - xansi.StringWidth(s); n > 0 {
		s += strings.Repeat(" ", n)
	}
	return s
}

// padRight right-aligns s in a w-wide column with one trailing space.
func padRight(s string, w int) string {
	if w <= 1 {
		return xansi.Truncate(s, w, "")
	}
	s = xansi.Truncate(s, w-1, "…")
	if n := w - 1 - xansi.StringWidth(s); n > 0 {
		s = strings.Repeat(" ", n) + s
	}
	return s + " "
}
