package grid

import (
	"errors"
	"testing"
)

func TestSanitizeHours_TotalAndNonNegative(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12.5", 12.5},
		{" 8 ", 8},
		{"0", 0},
		{"-5", 0},
		{"abc", 0},
		{"", 0},
		{"1e2", 100},
		{"NaN", 0},
		{"Inf", 0},
		{"-Inf", 0},
		{"12,5", 0},
	}
	for _, c := range cases {
		got := SanitizeHours(c.in)
		if got != c.want {
			t.Fatalf("SanitizeHours(%q) = %v, want %v", c.in, got, c.want)
		}
		if got < 0 {
			t.Fatalf("SanitizeHours(%q) negative", c.in)
		}
	}
}

// Scenario: type "12.5" into A1/2025-01-06, commit. The value lands, the
// backend request matches and the cursor advances one week.
func TestCommit_SingleCellAppliesAndAdvancesCursor(t *testing.T) {
	s, _ := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)

	if _, err := s.Ed.StartEditing(cell, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, r := range "12.5" {
		s.Ed.Type(r)
	}
	req, err := s.Ed.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if req == nil || req.Bulk || len(req.Cells) != 1 || req.Hours != 12.5 {
		t.Fatalf("unexpected request %+v", req)
	}
	if got := s.Data.ValueAt(cell); got != 12.5 {
		t.Fatalf("stored hours = %v, want 12.5", got)
	}
	if focus, _ := s.Sel.Focus(); focus != addr("p1", "a1", "2025-01-13") {
		t.Fatalf("cursor = %v, want next week", focus)
	}
	if _, editing := s.Ed.EditingCell(); editing {
		t.Fatal("edit mode should end on commit")
	}
}

func TestCommit_AtLastWeekHoldsPosition(t *testing.T) {
	s, _ := testSession(t)
	cell := addr("p1", "a1", "2025-01-27")
	s.Sel.SelectCell(cell, false)
	if _, err := s.Ed.StartEditing(cell, "4"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.Ed.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if focus, _ := s.Sel.Focus(); focus != cell {
		t.Fatalf("cursor moved past the last week: %v", focus)
	}
}

// Scenario: negative input clamps to zero on commit.
func TestCommit_NegativeInputClampsToZero(t *testing.T) {
	s, _ := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)
	if _, err := s.Ed.StartEditing(cell, "-5"); err != nil {
		t.Fatalf("start: %v", err)
	}
	req, err := s.Ed.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if req.Hours != 0 {
		t.Fatalf("request hours = %v, want 0", req.Hours)
	}
	if got := s.Data.ValueAt(cell); got != 0 {
		t.Fatalf("stored hours = %v, want 0", got)
	}
}

// Scenario: a shift-extended two-week range committed with "8" applies both
// cells and produces one bulk request, not two singles.
func TestCommit_BulkRangeProducesOneRequest(t *testing.T) {
	s, _ := testSession(t)
	first := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(first, false)
	s.Sel.Extend(DirRight)

	if _, err := s.Ed.StartEditing(first, "8"); err != nil {
		t.Fatalf("start: %v", err)
	}
	req, err := s.Ed.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if req == nil || !req.Bulk || len(req.Cells) != 2 {
		t.Fatalf("expected one bulk request over 2 cells, got %+v", req)
	}
	if s.Data.ValueAt(first) != 8 || s.Data.ValueAt(addr("p1", "a1", "2025-01-13")) != 8 {
		t.Fatal("bulk apply did not write both weeks")
	}
	// Totals refresh incrementally: p1 also has 16h on a2 for the first week.
	if got := s.Data.Total("p1", "2025-01-06"); got != 24 {
		t.Fatalf("total = %v, want 24", got)
	}
}

func TestCommit_NonContiguousSelectionAborts(t *testing.T) {
	s, _ := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)
	s.Sel.Extend(DirRight)
	if _, err := s.Ed.StartEditing(cell, "9"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// The selected row leaves the universe between selection and commit.
	s.Data.removeRow(RowKey{PersonID: "p1", AssignmentID: "a1"})

	req, err := s.Ed.Commit()
	if !errors.Is(err, ErrNonContiguous) {
		t.Fatalf("err = %v, want ErrNonContiguous", err)
	}
	if req != nil {
		t.Fatal("aborted commit must not produce a request")
	}
	if _, editing := s.Ed.EditingCell(); !editing {
		t.Fatal("aborted commit should leave the edit pending")
	}
}

func TestCancel_DiscardsWithoutApplying(t *testing.T) {
	s, _ := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)
	if _, err := s.Ed.StartEditing(cell, "99"); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Ed.Cancel()
	if got := s.Data.ValueAt(cell); got != 8 {
		t.Fatalf("cancel changed data: %v", got)
	}
	if focus, _ := s.Sel.Focus(); focus != cell {
		t.Fatalf("cancel moved focus: %v", focus)
	}
}

func TestStartEditing_ResolvesPriorEditFirst(t *testing.T) {
	s, _ := testSession(t)
	a := addr("p1", "a1", "2025-01-06")
	b := addr("p1", "a1", "2025-01-20")
	s.Sel.SelectCell(a, false)
	if _, err := s.Ed.StartEditing(a, "3"); err != nil {
		t.Fatalf("start a: %v", err)
	}

	prior, err := s.Ed.StartEditing(b, "7")
	if err != nil {
		t.Fatalf("start b: %v", err)
	}
	if prior == nil || prior.Hours != 3 {
		t.Fatalf("prior edit was not committed, got %+v", prior)
	}
	if got := s.Data.ValueAt(a); got != 3 {
		t.Fatalf("prior cell = %v, want 3", got)
	}
	if cell, editing := s.Ed.EditingCell(); !editing || cell != b {
		t.Fatalf("new edit not active on %v", b)
	}
}
