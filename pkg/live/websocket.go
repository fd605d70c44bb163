package live

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/salesdash/pkg/metrics"
)

// readLoop decodes events and queues them on the loop until the connection
// fails or the session closes.
func (s *Session) readLoop() {
	defer close(s.readDone)
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) && !s.closed.Load() {
				s.logger.Warn("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil || ev.Name == "" {
			s.logger.Warn("invalid event", "error", err)
			s.sendError("invalid event")
			continue
		}

		if !s.limiter.Allow() {
			metrics.RecordEventDropped()
			s.logger.Warn("event rate exceeded, dropping event", "event", ev.Name)
			s.sendError("rate limited")
			continue
		}

		s.loop.Dispatch(func() {
			s.handleEvent(ev)
		})
	}
}

// writeLoop sends heartbeat pings until the session closes.
func (s *Session) writeLoop() {
	defer close(s.writeDone)

	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.ping(); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.config.WriteTimeout))
}
