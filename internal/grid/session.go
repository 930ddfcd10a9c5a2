package grid

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"staffgrid/internal/model"
)

// Backend is the boundary to the planning service: a bulk snapshot read,
// single and bulk partial updates, and a point fetch. The change stream is
// delivered separately and fed in through Session.HandleEvent.
type Backend interface {
	Snapshot(ctx context.Context, department string, weeks int) (*model.Snapshot, error)
	SetHours(ctx context.Context, assignmentID, weekKey string, hours float64) (model.Assignment, error)
	SetHoursBulk(ctx context.Context, cells []model.CellRef, hours float64) ([]model.Assignment, error)
	Assignment(ctx context.Context, id string) (model.Assignment, error)
}

// Session owns the stores of one open grid: the dataset, selection, editor,
// reconciler and keyboard machine, constructed together and torn down
// together. All methods must be called from a single event loop.
type Session struct {
	ID string

	Data *Dataset
	Sel  *Selection
	Ed   *Editor
	Rec  *Reconciler
	Nav  *Machine

	now func() time.Time
}

// Option tweaks session construction.
type Option func(*sessionConfig)

type sessionConfig struct {
	id         string
	flushDelay time.Duration
	now        func() time.Time
}

// WithID fixes the session identity used to recognize own echoes on the
// change stream. Callers that tag backend writes with an origin must pass
// the same value here. Empty keeps a generated ID.
func WithID(id string) Option {
	return func(c *sessionConfig) { c.id = id }
}

// WithFlushDelay overrides the reconciler's coalescing window.
func WithFlushDelay(d time.Duration) Option {
	return func(c *sessionConfig) { c.flushDelay = d }
}

// WithClock injects the commit-stamp clock (tests).
func WithClock(now func() time.Time) Option {
	return func(c *sessionConfig) { c.now = now }
}

// NewSession seeds a session from a snapshot.
func NewSession(snap *model.Snapshot, sched Scheduler, opts ...Option) *Session {
	cfg := sessionConfig{flushDelay: DefaultFlushDelay, now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}

	data := NewDataset(snap)
	sel := NewSelection(data)
	ed := NewEditor(data, sel)
	rec := NewReconciler(data, sched, cfg.flushDelay)
	rec.AttachEditor(ed)

	if cfg.id == "" {
		cfg.id = newSessionID()
	}

	s := &Session{
		ID:   cfg.id,
		Data: data,
		Sel:  sel,
		Ed:   ed,
		Rec:  rec,
		Nav:  NewMachine(data, sel, ed),
		now:  cfg.now,
	}
	ed.apply = func(cells []CellAddr, hours float64) {
		rec.ApplyLocal(cells, hours, s.now())
	}
	return s
}

// HandleKey routes one key press through the navigation machine.
func (s *Session) HandleKey(k KeyEvent) Effect {
	return s.Nav.HandleKey(k)
}

// HandleEvent feeds one change-stream notification into the reconciler.
// Events originating from this session are recognized and skipped: their
// state was already applied optimistically and restamped by the commit
// response.
func (s *Session) HandleEvent(ev model.ChangeEvent) {
	if ev.Origin != "" && ev.Origin == s.ID {
		return
	}
	s.Rec.Enqueue(ev)
}

// BulkCells converts a commit request's addresses into backend bulk targets.
func (r *CommitRequest) BulkCells() []model.CellRef {
	out := make([]model.CellRef, 0, len(r.Cells))
	for _, c := range r.Cells {
		out = append(out, model.CellRef{AssignmentID: c.Row.AssignmentID, WeekKey: c.Week})
	}
	return out
}

func newSessionID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "session-0"
	}
	return "session-" + hex.EncodeToString(b[:])
}
