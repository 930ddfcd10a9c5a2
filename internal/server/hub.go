package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"staffgrid/internal/model"
	"staffgrid/internal/store"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  8 * 1024,
	WriteBufferSize: 8 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		// Basic same-origin check; good enough for localhost use.
		host := strings.TrimSpace(r.Host)
		return strings.Contains(origin, "://"+host)
	},
}

// hub fans change-log entries out to websocket subscribers. A single poll
// loop follows the log cursor; each subscriber gets its own buffered channel
// and slow readers drop events rather than stall the loop (clients recover
// by re-fetching a snapshot).
type hub struct {
	st       store.Store
	interval time.Duration

	mu   sync.Mutex
	subs map[chan model.ChangeEvent]struct{}

	stopOnce sync.Once
	stopCh   chan struct{}
}

func newHub(st store.Store, interval time.Duration) *hub {
	return &hub{
		st:       st,
		interval: interval,
		subs:     map[chan model.ChangeEvent]struct{}{},
		stopCh:   make(chan struct{}),
	}
}

func (h *hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

func (h *hub) subscribe() (ch chan model.ChangeEvent, cancel func()) {
	ch = make(chan model.ChangeEvent, 64)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

func (h *hub) broadcast(ev model.ChangeEvent) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *hub) pollLoop() {
	ctx := context.Background()
	cursor, err := h.st.LastChangeSeq(ctx)
	if err != nil {
		cursor = 0
	}

	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-t.C:
		}

		changes, err := h.st.ChangesSince(ctx, cursor, 500)
		if err != nil {
			continue
		}
		for _, sc := range changes {
			cursor = sc.Seq
			h.broadcast(sc.Event)
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}
	defer conn.Close()

	ch, cancel := s.hub.subscribe()
	defer cancel()

	// Drain the client side so close frames and pings are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
