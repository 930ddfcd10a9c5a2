package client

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gorilla/websocket"

	"staffgrid/internal/model"
)

// Stream is an open websocket subscription to the server's change feed.
// Events arrive on Events until the connection drops, then Events is closed
// and Err reports why.
type Stream struct {
	conn   *websocket.Conn
	cancel context.CancelFunc

	Events chan model.ChangeEvent

	err error
}

// OpenStream dials the server's change feed. The returned stream stays open
// until Close is called, the context ends, or the read loop fails.
func (c *Client) OpenStream(ctx context.Context) (*Stream, error) {
	wsURL := strings.Replace(c.base, "http", "ws", 1) + "/ws"
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		conn:   conn,
		cancel: cancel,
		Events: make(chan model.ChangeEvent, 64),
	}
	go s.readLoop(ctx)
	return s, nil
}

func (s *Stream) readLoop(ctx context.Context) {
	defer close(s.Events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.err = err
			return
		}
		var ev model.ChangeEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		select {
		case s.Events <- ev:
		case <-ctx.Done():
			s.err = ctx.Err()
			return
		}
	}
}

// Err reports why the stream ended. Only meaningful after Events closes.
func (s *Stream) Err() error { return s.err }

func (s *Stream) Close() error {
	s.cancel()
	return s.conn.Close()
}
