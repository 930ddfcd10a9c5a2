package grid

// Signal is a minimal publish/subscribe primitive. Stores notify it after
// every state change; the rendering layer is one subscriber among possibly
// several (a test harness is another). Not goroutine-safe: all subscribers
// and notifiers run on the session's event loop.
type Signal struct {
	next int
	subs map[int]func()
}

// Subscribe registers fn and returns its unsubscribe function.
func (s *Signal) Subscribe(fn func()) (cancel func()) {
	if s.subs == nil {
		s.subs = make(map[int]func())
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

// Notify invokes every subscriber.
func (s *Signal) Notify() {
	for _, fn := range s.subs {
		fn()
	}
}
