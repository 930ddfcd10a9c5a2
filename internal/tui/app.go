package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"staffgrid/internal/grid"
	"staffgrid/internal/model"
)

// Options configures one interactive grid.
type Options struct {
	Backend grid.Backend

	// Events feeds change notifications into the session. Nil means no live
	// updates.
	Events <-chan model.ChangeEvent

	// SessionID must match the origin the Backend tags writes with, so the
	// session recognizes its own echoes on Events. Empty generates one.
	SessionID string

	// Title is shown in the header, e.g. the data dir or server URL.
	Title      string
	Department string

	Weeks       int
	ColumnWidth int
	Overscan    int
	FlushDelay  time.Duration
}

func (o *Options) applyDefaults() {
	if o.Weeks <= 0 {
		o.Weeks = 12
	}
	if o.ColumnWidth < 4 {
		o.ColumnWidth = 8
	}
	if o.Overscan < 0 {
		o.Overscan = 2
	}
}

type appModel struct {
	opts    Options
	keys    keyMap
	sched   *uiScheduler
	session *grid.Session

	width  int
	height int

	scrollX int
	scrollY int

	status    string
	statusErr bool
}

func newAppModel(opts Options, snap *model.Snapshot) appModel {
	opts.applyDefaults()
	sched := newUIScheduler()
	sessOpts := []grid.Option{}
	if opts.FlushDelay > 0 {
		sessOpts = append(sessOpts, grid.WithFlushDelay(opts.FlushDelay))
	}
	if opts.SessionID != "" {
		sessOpts = append(sessOpts, grid.WithID(opts.SessionID))
	}
	return appModel{
		opts:    opts,
		keys:    defaultKeyMap(),
		sched:   sched,
		session: grid.NewSession(snap, sched, sessOpts...),
	}
}

func (m appModel) Init() tea.Cmd {
	if m.opts.Events != nil {
		return waitForEvent(m.opts.Events)
	}
	return nil
}

// Messages.

type eventMsg struct{ ev model.ChangeEvent }

type eventsClosedMsg struct{}

type timerMsg struct{ id int }

type commitResultMsg struct {
	updated []model.Assignment
	err     error
}

type refetchMsg struct {
	assignment model.Assignment
	err        error
}

type reloadMsg struct {
	snap *model.Snapshot
	err  error
}

func waitForEvent(ch <-chan model.ChangeEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

// uiScheduler satisfies the session's timer contract on top of tea.Tick, so
// reconciler flush callbacks run on the Update goroutine instead of a timer
// goroutine. ScheduleAfter registers the callback and records an armed timer;
// the update loop turns armed timers into tick commands and fires the
// callback when the tick lands (unless it was cancelled in between).
type uiScheduler struct {
	next    int
	pending map[int]func()
	armed   []armedTimer
}

type armedTimer struct {
	id    int
	delay time.Duration
}

func newUIScheduler() *uiScheduler {
	return &uiScheduler{pending: map[int]func(){}}
}

func (s *uiScheduler) ScheduleAfter(d time.Duration, fn func()) (cancel func()) {
	s.next++
	id := s.next
	s.pending[id] = fn
	s.armed = append(s.armed, armedTimer{id: id, delay: d})
	return func() { delete(s.pending, id) }
}

func (s *uiScheduler) takeArmed() []armedTimer {
	a := s.armed
	s.armed = nil
	return a
}

func (s *uiScheduler) fire(id int) {
	fn, ok := s.pending[id]
	if !ok {
		return
	}
	delete(s.pending, id)
	fn()
}
