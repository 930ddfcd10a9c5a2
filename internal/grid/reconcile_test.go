package grid

import (
	"testing"
	"time"

	"staffgrid/internal/model"
)

func TestReconcile_LastWriterWinsEitherArrivalOrder(t *testing.T) {
	older := fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 5}, ts(1))
	newer := fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 9}, ts(2))

	for name, order := range map[string][]model.ChangeEvent{
		"in order":     {older, newer},
		"out of order": {newer, older},
	} {
		s, sched := testSession(t)
		for _, ev := range order {
			s.HandleEvent(ev)
		}
		sched.Advance(DefaultFlushDelay)
		if got := s.Data.ValueAt(addr("p1", "a1", "2025-01-06")); got != 9 {
			t.Fatalf("%s: final hours = %v, want 9 (payload of newest timestamp)", name, got)
		}
	}
}

func TestReconcile_OutOfOrderAcrossFlushes(t *testing.T) {
	s, sched := testSession(t)
	s.HandleEvent(fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 9}, ts(2)))
	sched.Advance(DefaultFlushDelay)
	s.HandleEvent(fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 5}, ts(1)))
	sched.Advance(DefaultFlushDelay)

	if got := s.Data.ValueAt(addr("p1", "a1", "2025-01-06")); got != 9 {
		t.Fatalf("stale event overrode newer application: %v", got)
	}
}

func TestReconcile_BurstCoalescesToOneApplication(t *testing.T) {
	s, sched := testSession(t)
	applies := 0
	s.Rec.Changed.Subscribe(func() { applies++ })

	for i := 1; i <= 5; i++ {
		s.HandleEvent(fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": float64(i)}, ts(i)))
	}
	if applies != 0 {
		t.Fatal("events applied before the flush window elapsed")
	}
	sched.Advance(DefaultFlushDelay)

	if applies != 1 {
		t.Fatalf("burst applied %d times, want 1", applies)
	}
	if got := s.Data.ValueAt(addr("p1", "a1", "2025-01-06")); got != 5 {
		t.Fatalf("coalesced value = %v, want 5", got)
	}
}

func TestReconcile_UntimestampedNeverOverridesTimestamped(t *testing.T) {
	s, sched := testSession(t)
	s.HandleEvent(fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 9}, ts(1)))
	sched.Advance(DefaultFlushDelay)

	bare := fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 2}, time.Time{})
	bare.Assignment.UpdatedAt = time.Time{}
	s.HandleEvent(bare)
	sched.Advance(DefaultFlushDelay)

	if got := s.Data.ValueAt(addr("p1", "a1", "2025-01-06")); got != 9 {
		t.Fatalf("untimestamped event overrode timestamped application: %v", got)
	}
}

func TestReconcile_UntimestampedOverridesUntimestampedByArrival(t *testing.T) {
	s, sched := testSession(t)
	for _, h := range []float64{3, 4} {
		ev := fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": h}, time.Time{})
		ev.Assignment.UpdatedAt = time.Time{}
		s.HandleEvent(ev)
		sched.Advance(DefaultFlushDelay)
	}
	if got := s.Data.ValueAt(addr("p1", "a1", "2025-01-06")); got != 4 {
		t.Fatalf("later untimestamped arrival should win, got %v", got)
	}
}

// Scenario: a local commit at time T beats a remote event stamped before T.
func TestReconcile_LocalEditOutranksOlderRemote(t *testing.T) {
	s, sched := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)
	if _, err := s.Ed.StartEditing(cell, "10"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.Ed.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Clock in testSession stamps commits at 12:00; this event is older.
	s.HandleEvent(fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 6}, ts(-5)))
	sched.Advance(DefaultFlushDelay)

	if got := s.Data.ValueAt(cell); got != 10 {
		t.Fatalf("older remote clobbered local edit: %v", got)
	}

	// A strictly newer remote timestamp supersedes local authority.
	s.HandleEvent(fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 6}, ts(5)))
	sched.Advance(DefaultFlushDelay)
	if got := s.Data.ValueAt(cell); got != 6 {
		t.Fatalf("newer remote should supersede, got %v", got)
	}
}

// Scenario: an event for the cell under edit is dropped; after the edit
// resolves, a later, newer event applies normally.
func TestReconcile_GuardsCellUnderEdit(t *testing.T) {
	s, sched := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)
	if _, err := s.Ed.StartEditing(cell, "1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	s.HandleEvent(fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 20}, ts(1)))
	sched.Advance(DefaultFlushDelay)
	if got := s.Data.ValueAt(cell); got != 8 {
		t.Fatalf("remote write landed on a cell under edit: %v", got)
	}

	if _, err := s.Ed.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	s.HandleEvent(fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 20}, ts(30)))
	sched.Advance(DefaultFlushDelay)
	if got := s.Data.ValueAt(cell); got != 20 {
		t.Fatalf("post-edit event with newer stamp should apply, got %v", got)
	}
}

func TestReconcile_GuardOnlyCoversHoursField(t *testing.T) {
	s, sched := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)
	if _, err := s.Ed.StartEditing(cell, "1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	ev := fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 8, "2025-01-20": 4}, ts(1))
	ev.AffectedFields = []string{"projectId"}
	s.HandleEvent(ev)
	sched.Advance(DefaultFlushDelay)

	if got := s.Data.ValueAt(addr("p1", "a1", "2025-01-20")); got != 4 {
		t.Fatalf("event not touching hours should bypass the guard, got %v", got)
	}
}

func TestReconcile_DeleteRemovesRowAndTotalsIdempotently(t *testing.T) {
	s, sched := testSession(t)
	del := model.ChangeEvent{AssignmentID: "a2", Kind: model.ChangeDeleted, ServerTS: ts(1)}
	s.HandleEvent(del)
	sched.Advance(DefaultFlushDelay)

	if _, ok := s.Data.RowIndex(RowKey{PersonID: "p1", AssignmentID: "a2"}); ok {
		t.Fatal("deleted row still in universe")
	}
	if got := s.Data.Total("p1", "2025-01-06"); got != 8 {
		t.Fatalf("totals not refreshed after delete: %v", got)
	}

	// Deleting again is a no-op, not an error.
	del.ServerTS = ts(2)
	s.HandleEvent(del)
	sched.Advance(DefaultFlushDelay)
	if s.Data.NumRows() != 2 {
		t.Fatalf("row count after duplicate delete = %d, want 2", s.Data.NumRows())
	}
}

func TestReconcile_DeleteCancelsEditOnDeletedAssignment(t *testing.T) {
	s, sched := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)
	if _, err := s.Ed.StartEditing(cell, "9"); err != nil {
		t.Fatalf("start: %v", err)
	}

	s.HandleEvent(model.ChangeEvent{AssignmentID: "a1", Kind: model.ChangeDeleted, ServerTS: ts(1)})
	sched.Advance(DefaultFlushDelay)

	if _, editing := s.Ed.EditingCell(); editing {
		t.Fatal("delete of the edited assignment should cancel the edit")
	}
	if s.Nav.State() != StateNavigating {
		t.Fatal("machine should be navigating after the edit was discarded")
	}
	if _, ok := s.Data.RowIndex(RowKey{PersonID: "p1", AssignmentID: "a1"}); ok {
		t.Fatal("deleted row still in universe")
	}

	// An edit on a different assignment survives a delete elsewhere.
	other := addr("p2", "a3", "2025-01-13")
	s.Sel.SelectCell(other, false)
	if _, err := s.Ed.StartEditing(other, "5"); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.HandleEvent(model.ChangeEvent{AssignmentID: "a2", Kind: model.ChangeDeleted, ServerTS: ts(2)})
	sched.Advance(DefaultFlushDelay)
	if cellNow, editing := s.Ed.EditingCell(); !editing || cellNow != other {
		t.Fatalf("unrelated delete disturbed the edit: %v %v", cellNow, editing)
	}
}

func TestReconcile_MissingPayloadRequestsPointFetch(t *testing.T) {
	s, sched := testSession(t)
	s.HandleEvent(model.ChangeEvent{AssignmentID: "a1", Kind: model.ChangeUpdated, ServerTS: ts(3)})
	sched.Advance(DefaultFlushDelay)

	ids := s.Rec.DrainFetchRequests()
	if len(ids) != 1 || ids[0] != "a1" {
		t.Fatalf("fetch requests = %v, want [a1]", ids)
	}
	if len(s.Rec.DrainFetchRequests()) != 0 {
		t.Fatal("drain should clear the request list")
	}

	// Fetch succeeded: the payload re-enters the queue and applies.
	s.HandleEvent(fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 11}, ts(3)))
	sched.Advance(DefaultFlushDelay)
	if got := s.Data.ValueAt(addr("p1", "a1", "2025-01-06")); got != 11 {
		t.Fatalf("refetched payload did not apply: %v", got)
	}
}

func TestReconcile_NewAssignmentGrowsUniverse(t *testing.T) {
	s, sched := testSession(t)
	s.HandleEvent(fullEvent("a9", "p2", "pr2", map[string]float64{"2025-01-06": 6}, ts(1)))
	sched.Advance(DefaultFlushDelay)

	key := RowKey{PersonID: "p2", AssignmentID: "a9"}
	if _, ok := s.Data.RowIndex(key); !ok {
		t.Fatal("assignment created elsewhere should add a row")
	}
	if got := s.Data.Total("p2", "2025-01-06"); got != 6 {
		t.Fatalf("totals missing new row: %v", got)
	}
}

func TestSession_OwnEchoIsNotDoubleApplied(t *testing.T) {
	s, sched := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)
	if _, err := s.Ed.StartEditing(cell, "10"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.Ed.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	echo := fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 10, "2025-01-13": 8}, ts(10))
	echo.Origin = s.ID
	s.HandleEvent(echo)
	if s.Rec.QueueLen() != 0 {
		t.Fatal("own-origin echo should be recognized and skipped")
	}
	sched.Advance(DefaultFlushDelay)
	if got := s.Data.ValueAt(cell); got != 10 {
		t.Fatalf("value disturbed by own echo: %v", got)
	}
}

func TestSession_WithIDFixesEchoIdentity(t *testing.T) {
	s := NewSession(testSnapshot(), &ManualScheduler{}, WithID("tui-abc"))
	if s.ID != "tui-abc" {
		t.Fatalf("session ID = %q, want tui-abc", s.ID)
	}

	echo := fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 99}, ts(10))
	echo.Origin = "tui-abc"
	s.HandleEvent(echo)
	if s.Rec.QueueLen() != 0 {
		t.Fatal("events tagged with the fixed ID should be skipped")
	}
}

func TestReconcile_CommitResultRestampsAndDropsForDeletedRows(t *testing.T) {
	s, sched := testSession(t)
	cell := addr("p1", "a1", "2025-01-06")
	s.Sel.SelectCell(cell, false)
	if _, err := s.Ed.StartEditing(cell, "10"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.Ed.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Server response arrives after edit mode ended: applied like a remote
	// update, carrying the authoritative stamp.
	s.Rec.HandleCommitResult(model.Assignment{
		ID: "a1", PersonID: "p1", ProjectID: "pr1",
		WeeklyHours: map[string]float64{"2025-01-06": 10, "2025-01-13": 8},
		UpdatedAt:   ts(4),
	})
	if got := s.Data.ValueAt(cell); got != 10 {
		t.Fatalf("commit result not applied: %v", got)
	}

	// An event older than the response stamp stays out.
	s.HandleEvent(fullEvent("a1", "p1", "pr1", map[string]float64{"2025-01-06": 1}, ts(2)))
	sched.Advance(DefaultFlushDelay)
	if got := s.Data.ValueAt(cell); got != 10 {
		t.Fatalf("stale event beat the commit stamp: %v", got)
	}

	// A response for a row deleted locally in the meantime is dropped.
	s.HandleEvent(model.ChangeEvent{AssignmentID: "a2", Kind: model.ChangeDeleted, ServerTS: ts(5)})
	sched.Advance(DefaultFlushDelay)
	s.Rec.HandleCommitResult(model.Assignment{
		ID: "a2", PersonID: "p1", ProjectID: "pr2",
		WeeklyHours: map[string]float64{"2025-01-06": 99},
		UpdatedAt:   ts(6),
	})
	if _, ok := s.Data.RowIndex(RowKey{PersonID: "p1", AssignmentID: "a2"}); ok {
		t.Fatal("commit result resurrected a deleted row")
	}
}
