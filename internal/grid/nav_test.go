package grid

import "testing"

func arrow(d Direction) KeyEvent        { return KeyEvent{Kind: KeyArrow, Dir: d} }
func shiftArrow(d Direction) KeyEvent   { return KeyEvent{Kind: KeyArrow, Dir: d, Shift: true} }
func digit(r rune) KeyEvent             { return KeyEvent{Kind: KeyRune, Rune: r} }
func press(k KeyKind) KeyEvent          { return KeyEvent{Kind: k} }
func pressShift(k KeyKind) KeyEvent     { return KeyEvent{Kind: k, Shift: true} }

func mustFocus(t *testing.T, s *Session) CellAddr {
	t.Helper()
	focus, ok := s.Sel.Focus()
	if !ok {
		t.Fatal("no focused cell")
	}
	return focus
}

func TestNav_ArrowsMoveAlongBothAxes(t *testing.T) {
	s, _ := testSession(t)
	s.Sel.SelectCell(addr("p1", "a1", "2025-01-06"), false)

	s.HandleKey(arrow(DirRight))
	if got := mustFocus(t, s); got != addr("p1", "a1", "2025-01-13") {
		t.Fatalf("right: %v", got)
	}
	s.HandleKey(arrow(DirDown))
	if got := mustFocus(t, s); got != addr("p1", "a2", "2025-01-13") {
		t.Fatalf("down keeps the week column: %v", got)
	}
	s.HandleKey(arrow(DirDown))
	if got := mustFocus(t, s); got != addr("p2", "a3", "2025-01-13") {
		t.Fatalf("down crosses to the next person's row: %v", got)
	}
	s.HandleKey(arrow(DirUp))
	s.HandleKey(arrow(DirUp))
	s.HandleKey(arrow(DirLeft))
	if got := mustFocus(t, s); got != addr("p1", "a1", "2025-01-06") {
		t.Fatalf("round trip: %v", got)
	}
}

func TestNav_BoundariesAreNoOps(t *testing.T) {
	s, _ := testSession(t)
	first := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(first, false)
	s.HandleKey(arrow(DirLeft))
	s.HandleKey(arrow(DirUp))
	if got := mustFocus(t, s); got != first {
		t.Fatalf("focus moved past the first cell: %v", got)
	}

	last := addr("p2", "a3", "2025-01-27")
	s.Sel.SelectCell(last, false)
	s.HandleKey(arrow(DirRight))
	s.HandleKey(arrow(DirDown))
	if got := mustFocus(t, s); got != last {
		t.Fatalf("focus moved past the last cell: %v", got)
	}
	// Row-major movement at the very last cell is also a no-op.
	s.HandleKey(press(KeyTab))
	if got := mustFocus(t, s); got != last {
		t.Fatalf("tab wrapped past the last cell: %v", got)
	}
}

func TestNav_TabCrossesRowsWithoutEditing(t *testing.T) {
	s, _ := testSession(t)
	s.Sel.SelectCell(addr("p1", "a1", "2025-01-27"), false)
	s.HandleKey(press(KeyTab))
	if got := mustFocus(t, s); got != addr("p1", "a2", "2025-01-06") {
		t.Fatalf("tab should wrap to the next row's first week: %v", got)
	}
	if s.Nav.State() != StateNavigating {
		t.Fatal("tab must not enter edit mode")
	}
	s.HandleKey(pressShift(KeyTab))
	if got := mustFocus(t, s); got != addr("p1", "a1", "2025-01-27") {
		t.Fatalf("shift+tab should wrap back: %v", got)
	}
}

func TestNav_ShiftArrowExtendsAndPlainMoveCollapses(t *testing.T) {
	s, _ := testSession(t)
	s.Sel.SelectCell(addr("p1", "a1", "2025-01-06"), false)
	s.HandleKey(shiftArrow(DirRight))
	s.HandleKey(shiftArrow(DirRight))
	if got := len(s.Sel.SelectedCells()); got != 3 {
		t.Fatalf("range size = %d, want 3", got)
	}
	// Any non-extending navigation clears the range to a single focus.
	s.HandleKey(arrow(DirLeft))
	if got := len(s.Sel.SelectedCells()); got != 1 {
		t.Fatalf("plain arrow should collapse the range, size = %d", got)
	}
}

func TestNav_DigitPreSeedsEditBuffer(t *testing.T) {
	s, _ := testSession(t)
	s.Sel.SelectCell(addr("p1", "a1", "2025-01-20"), false)
	s.HandleKey(digit('7'))
	if s.Nav.State() != StateEditing {
		t.Fatal("digit should enter edit mode")
	}
	if got := s.Ed.Buffer(); got != "7" {
		t.Fatalf("buffer = %q, want %q", got, "7")
	}
	s.HandleKey(digit('.'))
	s.HandleKey(digit('5'))
	if got := s.Ed.Buffer(); got != "7.5" {
		t.Fatalf("buffer = %q, want %q", got, "7.5")
	}
}

func TestNav_EnterSeedsCurrentValueAndCommits(t *testing.T) {
	s, _ := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)

	s.HandleKey(press(KeyEnter))
	if got := s.Ed.Buffer(); got != "8" {
		t.Fatalf("enter should seed the current value, buffer = %q", got)
	}
	s.HandleKey(press(KeyBackspace))
	s.HandleKey(digit('9'))
	eff := s.HandleKey(press(KeyEnter))
	if len(eff.Commits) != 1 || eff.Commits[0].Hours != 9 {
		t.Fatalf("commit effect = %+v", eff)
	}
	if s.Nav.State() != StateNavigating {
		t.Fatal("enter should return to navigating")
	}
	if got := mustFocus(t, s); got != addr("p1", "a1", "2025-01-13") {
		t.Fatalf("cursor should advance after commit: %v", got)
	}
}

func TestNav_EscapeCancelsAtSameCell(t *testing.T) {
	s, _ := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)
	s.HandleKey(digit('3'))
	eff := s.HandleKey(press(KeyEscape))
	if len(eff.Commits) != 0 {
		t.Fatal("escape must not commit")
	}
	if s.Nav.State() != StateNavigating {
		t.Fatal("escape should return to navigating")
	}
	if got := mustFocus(t, s); got != cell {
		t.Fatalf("escape should hold position: %v", got)
	}
	if got := s.Data.ValueAt(cell); got != 8 {
		t.Fatalf("escape changed data: %v", got)
	}
}

func TestNav_TabWhileEditingCommitsAndMoves(t *testing.T) {
	s, _ := testSession(t)
	s.Sel.SelectCell(addr("p1", "a1", "2025-01-06"), false)
	s.HandleKey(digit('5'))
	eff := s.HandleKey(press(KeyTab))
	if len(eff.Commits) != 1 {
		t.Fatalf("tab should commit, effect = %+v", eff)
	}
	if s.Nav.State() != StateNavigating {
		t.Fatal("tab should leave edit mode without re-entering")
	}
	if got := s.Data.ValueAt(addr("p1", "a1", "2025-01-06")); got != 5 {
		t.Fatalf("committed value = %v", got)
	}
}

func TestNav_ShiftArrowWhileEditingCommitsThenExtends(t *testing.T) {
	s, _ := testSession(t)
	s.Sel.SelectCell(addr("p1", "a1", "2025-01-06"), false)
	s.HandleKey(digit('4'))
	eff := s.HandleKey(shiftArrow(DirRight))
	if len(eff.Commits) != 1 || eff.Commits[0].Hours != 4 {
		t.Fatalf("shift+arrow should force a commit first, effect = %+v", eff)
	}
	if s.Nav.State() != StateNavigating {
		t.Fatal("should be navigating after forced commit")
	}
	if got := len(s.Sel.SelectedCells()); got != 2 {
		t.Fatalf("extension after commit should build a 2-cell range, got %d", got)
	}
}

func TestNav_FailedCommitHoldsFocusWithPendingEdit(t *testing.T) {
	s, _ := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)
	s.HandleKey(digit('9'))

	// The edited row leaves the universe mid-edit, so the commit can only
	// fail. Tab and shift+arrow must then hold position instead of carrying
	// the pending buffer to another cell.
	s.Data.removeRow(RowKey{PersonID: "p1", AssignmentID: "a1"})

	eff := s.HandleKey(press(KeyTab))
	if eff.Warning == "" || len(eff.Commits) != 0 {
		t.Fatalf("tab on a dead row should warn without committing: %+v", eff)
	}
	if got := mustFocus(t, s); got != cell {
		t.Fatalf("tab moved focus despite the failed commit: %v", got)
	}
	if s.Nav.State() != StateEditing {
		t.Fatal("the pending edit should stay active after a failed commit")
	}

	eff = s.HandleKey(shiftArrow(DirRight))
	if len(eff.Commits) != 0 {
		t.Fatalf("shift+arrow committed despite the failure: %+v", eff)
	}
	if got := mustFocus(t, s); got != cell {
		t.Fatalf("shift+arrow moved focus despite the failed commit: %v", got)
	}

	// The stale buffer must never land on another assignment.
	s.HandleKey(press(KeyEscape))
	if got := s.Data.ValueAt(addr("p1", "a2", "2025-01-06")); got != 16 {
		t.Fatalf("another row's value was disturbed: %v", got)
	}
}

func TestNav_FirstKeySelectsFirstCell(t *testing.T) {
	s, _ := testSession(t)
	s.HandleKey(arrow(DirDown))
	if got := mustFocus(t, s); got != addr("p1", "a1", "2025-01-06") {
		t.Fatalf("first navigation should land on the first cell: %v", got)
	}
}
