package grid

import "time"

// Scheduler abstracts deferred execution so tests can advance virtual time
// deterministically and the TUI can route callbacks through its own message
// loop instead of spawning timer goroutines.
type Scheduler interface {
	// ScheduleAfter runs fn once after d. The returned cancel function is a
	// no-op once fn has run.
	ScheduleAfter(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler schedules on real timers. Callbacks run on a timer
// goroutine, so it is only suitable for single-goroutine callers such as
// CLI commands; the TUI uses its own message-based scheduler.
type TimerScheduler struct{}

func (TimerScheduler) ScheduleAfter(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler is a test scheduler: nothing runs until Advance is called.
type ManualScheduler struct {
	now   time.Duration
	tasks []*manualTask
}

type manualTask struct {
	at        time.Duration
	fn        func()
	cancelled bool
}

func (s *ManualScheduler) ScheduleAfter(d time.Duration, fn func()) func() {
	t := &manualTask{at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, t)
	return func() { t.cancelled = true }
}

// Advance moves virtual time forward, running due tasks in schedule order.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.now += d
	for {
		var due *manualTask
		for _, t := range s.tasks {
			if t.cancelled || t.at > s.now {
				continue
			}
			if due == nil || t.at < due.at {
				due = t
			}
		}
		if due == nil {
			return
		}
		due.cancelled = true
		due.fn()
	}
}

// Pending reports how many tasks are scheduled and not yet run.
func (s *ManualScheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}
