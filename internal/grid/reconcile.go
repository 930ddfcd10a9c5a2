package grid

import (
	"time"

	"staffgrid/internal/model"
)

type applySource int

const (
	sourceRemote applySource = iota
	sourceLocal
)

// appliedMark records, per assignment, the timestamp of the last applied
// update and whether it came from a remote event or a local edit.
type appliedMark struct {
	ts  time.Time
	src applySource
}

// DefaultFlushDelay is the coalescing window for inbound change events.
const DefaultFlushDelay = 40 * time.Millisecond

// Reconciler folds the stream of remote change notifications into the
// dataset. Events are queued as they arrive and drained by one scheduled
// flush so bursts for the same assignment collapse into a single applied
// update. Application follows last-writer-wins on the server timestamp, and
// a cell under active local edit is protected from concurrent overwrite.
type Reconciler struct {
	data   *Dataset
	sched  Scheduler
	delay  time.Duration
	editor *Editor

	queue       []model.ChangeEvent
	cancelFlush func()

	applied map[string]appliedMark

	// fetchNeeded lists assignments whose events arrived without a payload;
	// the session drains it and issues point fetches.
	fetchNeeded []string

	Changed Signal
}

func NewReconciler(data *Dataset, sched Scheduler, delay time.Duration) *Reconciler {
	if delay <= 0 {
		delay = DefaultFlushDelay
	}
	return &Reconciler{
		data:    data,
		sched:   sched,
		delay:   delay,
		applied: make(map[string]appliedMark),
	}
}

// AttachEditor wires the in-edit guard.
func (r *Reconciler) AttachEditor(e *Editor) { r.editor = e }

// Enqueue appends an inbound event and arms the flush timer if it is not
// already armed.
func (r *Reconciler) Enqueue(ev model.ChangeEvent) {
	r.queue = append(r.queue, ev)
	if r.cancelFlush == nil && r.sched != nil {
		r.cancelFlush = r.sched.ScheduleAfter(r.delay, func() {
			r.cancelFlush = nil
			r.Flush()
		})
	}
}

// Flush drains the queue: coalesce per assignment, then apply the winners in
// arrival order. Safe to call with an empty queue.
func (r *Reconciler) Flush() {
	if r.cancelFlush != nil {
		r.cancelFlush()
		r.cancelFlush = nil
	}
	if len(r.queue) == 0 {
		return
	}
	pending := r.queue
	r.queue = nil

	// Coalesce: one winner per assignment. Later timestamps beat earlier;
	// an untimestamped event never beats a timestamped one; equal stamps
	// (including both zero) resolve by arrival order.
	winners := make(map[string]model.ChangeEvent, len(pending))
	order := make([]string, 0, len(pending))
	for _, ev := range pending {
		cur, seen := winners[ev.AssignmentID]
		if !seen {
			winners[ev.AssignmentID] = ev
			order = append(order, ev.AssignmentID)
			continue
		}
		if coalesceWins(ev, cur) {
			winners[ev.AssignmentID] = ev
		}
	}

	changed := false
	for _, id := range order {
		if r.applyEvent(winners[id]) {
			changed = true
		}
	}
	if changed {
		r.Changed.Notify()
		r.data.Changed.Notify()
	}
}

// coalesceWins reports whether candidate replaces incumbent within one flush
// window.
func coalesceWins(candidate, incumbent model.ChangeEvent) bool {
	cz, iz := candidate.ServerTS.IsZero(), incumbent.ServerTS.IsZero()
	switch {
	case cz && iz:
		return true // tie: arrival order, candidate arrived later
	case cz:
		return false
	case iz:
		return true
	default:
		return !candidate.ServerTS.Before(incumbent.ServerTS)
	}
}

// applyEvent applies one coalesced event, honoring the ordering and guard
// rules. Reports whether local state changed.
func (r *Reconciler) applyEvent(ev model.ChangeEvent) bool {
	last, seen := r.applied[ev.AssignmentID]

	// Ordering rule: an untimestamped event never overrides a timestamped
	// application; a timestamped event must be strictly newer than the last
	// applied stamp (which a local edit sets too).
	if ev.ServerTS.IsZero() {
		if seen && !last.ts.IsZero() {
			return false
		}
	} else if seen && !ev.ServerTS.After(last.ts) {
		return false
	}

	switch ev.Kind {
	case model.ChangeDeleted:
		row, ok := r.data.RowByAssignment(ev.AssignmentID)
		r.applied[ev.AssignmentID] = appliedMark{ts: ev.ServerTS, src: sourceRemote}
		// Deletes bypass the in-edit guard: an edit on a row that left the
		// universe can never commit, so discard it with the row.
		if r.editor != nil {
			if cell, editing := r.editor.EditingCell(); editing && cell.Row.AssignmentID == ev.AssignmentID {
				r.editor.Cancel()
			}
		}
		if !ok {
			return false // idempotent: already absent
		}
		return r.data.removeRow(row.Key)

	case model.ChangeUpdated:
		// Guard rule: the user's in-flight keystroke wins over a concurrent
		// remote write to the same field until the edit resolves.
		if r.editor != nil && ev.AffectsHours() {
			if cell, editing := r.editor.EditingCell(); editing && cell.Row.AssignmentID == ev.AssignmentID {
				return false
			}
		}
		if ev.Assignment == nil {
			// Id-only notification: request a point fetch. No stamp is
			// recorded so the refetched payload can still apply.
			r.fetchNeeded = append(r.fetchNeeded, ev.AssignmentID)
			return false
		}
		a := ev.Assignment
		key := RowKey{PersonID: a.PersonID, AssignmentID: a.ID}
		ts := ev.ServerTS
		if ts.IsZero() {
			ts = a.UpdatedAt
		}
		applied := false
		if _, ok := r.data.RowIndex(key); ok {
			applied = r.data.replaceRowHours(key, a.WeeklyHours, ts)
		} else {
			// Assignment created in another session: grow the row universe.
			r.data.upsertRow(key, a.ProjectID, a.WeeklyHours, ts)
			applied = true
		}
		if applied {
			r.applied[ev.AssignmentID] = appliedMark{ts: ev.ServerTS, src: sourceRemote}
		}
		return applied
	}
	return false
}

// ApplyLocal performs the optimistic write for a commit: the sanitized value
// lands on every cell and the assignment is stamped authoritative at ts, so
// remote events older than the edit cannot clobber it.
func (r *Reconciler) ApplyLocal(cells []CellAddr, hours float64, ts time.Time) {
	changed := false
	for _, c := range cells {
		if r.data.setHours(c, hours, ts) {
			changed = true
		}
		r.applied[c.Row.AssignmentID] = appliedMark{ts: ts, src: sourceLocal}
	}
	if changed {
		r.Changed.Notify()
		r.data.Changed.Notify()
	}
}

// HandleCommitResult folds the backend's response to a commit back in. A
// response for a row that was deleted locally in the meantime is dropped; a
// response for an assignment under active edit only advances the stamp,
// leaving the in-progress buffer and its optimistic cells alone.
func (r *Reconciler) HandleCommitResult(a model.Assignment) {
	key := RowKey{PersonID: a.PersonID, AssignmentID: a.ID}
	if _, ok := r.data.RowIndex(key); !ok {
		return
	}
	last := r.applied[a.ID]
	ts := a.UpdatedAt
	if ts.After(last.ts) {
		r.applied[a.ID] = appliedMark{ts: ts, src: sourceLocal}
	}
	if r.editor != nil {
		if cell, editing := r.editor.EditingCell(); editing && cell.Row.AssignmentID == a.ID {
			return
		}
	}
	if r.data.replaceRowHours(key, a.WeeklyHours, ts) {
		r.Changed.Notify()
		r.data.Changed.Notify()
	}
}

// DrainFetchRequests returns and clears the assignments that need a point
// fetch. Fetch failures are simply dropped by the caller; a later event or
// snapshot refresh reconciles the state.
func (r *Reconciler) DrainFetchRequests() []string {
	out := r.fetchNeeded
	r.fetchNeeded = nil
	return out
}

// QueueLen reports the number of undrained events (for tests and debug).
func (r *Reconciler) QueueLen() int { return len(r.queue) }
