package live

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/salesdash/pkg/session"
)

var (
	// ErrNoView is returned by a Mounter when no view serves the path.
	ErrNoView = errors.New("live: no view for path")

	// ErrUnauthorized is returned by a Mounter when the browser must sign
	// in first.
	ErrUnauthorized = errors.New("live: unauthorized")
)

// Mounter resolves a page path to a fresh View.
type Mounter func(r *http.Request, path string) (View, error)

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithConfig sets the session configuration. Zero fields keep defaults.
func WithConfig(cfg Config) HandlerOption {
	return func(h *Handler) {
		h.config = cfg.withDefaults()
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// Handler upgrades requests to live sessions.
type Handler struct {
	mount    Mounter
	config   Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*Session]struct{}
	closing  bool
	wg       sync.WaitGroup
}

// NewHandler creates a Handler that mounts views with mount.
func NewHandler(mount Mounter, opts ...HandlerOption) *Handler {
	h := &Handler{
		mount:    mount,
		config:   DefaultConfig(),
		logger:   slog.Default(),
		sessions: make(map[*Session]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.config.CheckOrigin,
	}
	return h
}

// ServeHTTP mounts the view for the "path" query parameter and runs a
// session for it. Unknown paths are rejected before the upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}

	view, err := h.mount(r, path)
	switch {
	case errors.Is(err, ErrNoView):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	case err != nil:
		h.logger.Error("mount failed", "path", path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.logger.Warn("upgrade failed", "error", err)
		view.Dispose()
		return
	}

	s := newSession(conn, view, path, session.FromContext(r.Context()), h.config, h.logger)
	if !h.register(s) {
		s.loop.Close()
		view.Dispose()
		conn.Close()
		return
	}
	s.Start()

	go func() {
		defer h.wg.Done()
		s.Wait()
		h.unregister(s)
	}()
}

func (h *Handler) register(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.sessions[s] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *Handler) unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s)
}

// Len returns the number of open sessions.
func (h *Handler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Shutdown closes every session and waits for them to finish or for ctx to
// be done. New connections are refused afterwards.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	open := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		open = append(open, s)
	}
	h.mu.Unlock()

	for _, s := range open {
		s.Close()
	}

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
