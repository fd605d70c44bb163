package live

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vango-dev/salesdash/pkg/loop"
	"github.com/vango-dev/salesdash/pkg/metrics"
	"github.com/vango-dev/salesdash/pkg/session"
)

// ErrSessionClosed is returned when writing to a closed session.
var ErrSessionClosed = errors.New("live: session closed")

// Session is one WebSocket connection and the view mounted on it.
type Session struct {
	id   string
	path string
	auth *session.Session

	conn   *websocket.Conn
	mu     sync.Mutex // serializes conn writes
	closed atomic.Bool

	config  Config
	logger  *slog.Logger
	limiter *rate.Limiter

	loop   *loop.Loop
	view   View
	vctx   *Ctx
	ctx    context.Context
	cancel context.CancelFunc

	// sent is the last HTML sent per fragment. Loop only.
	sent map[string]template.HTML

	done      chan struct{}
	readDone  chan struct{}
	writeDone chan struct{}

	events  atomic.Uint64
	patches atomic.Uint64
}

func newSession(conn *websocket.Conn, view View, path string, auth *session.Session, config Config, logger *slog.Logger) *Session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:        id,
		path:      path,
		auth:      auth,
		conn:      conn,
		config:    config,
		logger:    logger.With("live_session", id, "path", path),
		limiter:   rate.NewLimiter(rate.Limit(config.EventRate), config.EventBurst),
		view:      view,
		ctx:       ctx,
		cancel:    cancel,
		sent:      make(map[string]template.HTML),
		done:      make(chan struct{}),
		readDone:  make(chan struct{}),
		writeDone: make(chan struct{}),
	}
	s.vctx = &Ctx{s: s}
	s.loop = loop.New(
		loop.WithQueueSize(config.QueueSize),
		loop.WithAfter(s.flush),
		loop.WithLogger(s.logger),
	)
	return s
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Path returns the page path the session serves.
func (s *Session) Path() string {
	return s.path
}

// Start mounts the view and starts the read and write loops.
func (s *Session) Start() {
	metrics.RecordSessionOpen()
	s.logger.Debug("session started")

	s.loop.Dispatch(func() {
		if err := s.view.Mount(s.vctx); err != nil {
			s.logger.Error("mount failed", "error", err)
			s.sendError(err.Error())
			s.Close()
		}
	})
	go s.readLoop()
	go s.writeLoop()
}

// Dispatch schedules fn on the session loop.
func (s *Session) Dispatch(fn func()) {
	s.loop.Dispatch(fn)
}

// handleEvent runs on the loop.
func (s *Session) handleEvent(ev Event) {
	s.events.Add(1)
	err := s.view.HandleEvent(s.vctx, ev)
	metrics.RecordEvent(ev.View, err)
	if err != nil {
		s.logger.Warn("event failed", "view", ev.View, "event", ev.Name, "error", err)
		s.sendError(err.Error())
	}
}

// flush sends a patch for every fragment that changed since the last flush.
// It runs on the loop after every callback.
func (s *Session) flush() {
	if s.closed.Load() {
		return
	}
	frags, err := s.view.Render()
	if err != nil {
		s.logger.Error("render failed", "error", err)
		return
	}

	names := make([]string, 0, len(frags))
	for name := range frags {
		names = append(names, name)
	}
	slices.Sort(names)

	sent := 0
	for _, name := range names {
		html := frags[name]
		if prev, ok := s.sent[name]; ok && prev == html {
			continue
		}
		if err := s.send(Frame{Type: FramePatch, View: name, HTML: string(html)}); err != nil {
			return
		}
		s.sent[name] = html
		sent++
	}
	if sent > 0 {
		s.patches.Add(uint64(sent))
		metrics.RecordPatches(sent)
	}
}

// send writes f to the connection.
func (s *Session) send(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(f); err != nil {
		s.logger.Warn("write failed", "frame", f.Type, "error", err)
		go s.Close()
		return err
	}
	return nil
}

func (s *Session) sendError(message string) {
	s.send(Frame{Type: FrameError, Message: message})
}

// Close ends the session. The view is disposed on the loop, after which the
// loop stops. Close is idempotent and safe from any goroutine.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)
	s.cancel()

	s.loop.Dispatch(func() {
		s.view.Dispose()
		s.loop.Close()
	})

	s.mu.Lock()
	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.conn.Close()
	s.mu.Unlock()

	metrics.RecordSessionClose()
	s.logger.Debug("session closed",
		"events", s.events.Load(),
		"patches", s.patches.Load())
}

// IsClosed reports whether Close has been called.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel closed when the session is closing.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session's goroutines have exited.
func (s *Session) Wait() {
	<-s.readDone
	<-s.writeDone
	s.loop.Wait()
}
