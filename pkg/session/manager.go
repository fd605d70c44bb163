package session

import (
	"container/list"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCookieName is the cookie carrying the session ID.
const DefaultCookieName = "salesdash_sid"

type contextKey struct{}

// Manager resolves requests to Sessions.
//
// Sessions are cached in process so every connection of one browser shares
// the same *Session. The cache is bounded: the least recently used entries
// are evicted beyond MaxSessions, and Run drops entries idle longer than
// IdleTimeout. Evicted sessions are rebuilt from the Store on next use.
type Manager struct {
	store  Store
	config ManagerConfig
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	lru   *list.List
	index map[string]*list.Element
}

type cacheEntry struct {
	session  *Session
	lastSeen time.Time
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// CookieName is the session cookie name. Default: "salesdash_sid".
	CookieName string

	// SecureCookie marks the cookie Secure. Enable behind HTTPS.
	SecureCookie bool

	// MaxSessions bounds the in-process cache. Default: 10000.
	MaxSessions int

	// IdleTimeout is how long an unused session stays cached. Default: 30m.
	IdleTimeout time.Duration

	// SweepInterval is how often Run sweeps idle sessions. Default: 1m.
	SweepInterval time.Duration
}

// DefaultManagerConfig returns a ManagerConfig with defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		CookieName:    DefaultCookieName,
		MaxSessions:   10000,
		IdleTimeout:   30 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithConfig sets the manager configuration. Zero fields keep defaults.
func WithConfig(cfg ManagerConfig) ManagerOption {
	return func(m *Manager) {
		def := DefaultManagerConfig()
		if cfg.CookieName == "" {
			cfg.CookieName = def.CookieName
		}
		if cfg.MaxSessions <= 0 {
			cfg.MaxSessions = def.MaxSessions
		}
		if cfg.IdleTimeout <= 0 {
			cfg.IdleTimeout = def.IdleTimeout
		}
		if cfg.SweepInterval <= 0 {
			cfg.SweepInterval = def.SweepInterval
		}
		m.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock replaces time.Now. Used in tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager backed by store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		config: DefaultManagerConfig(),
		logger: slog.Default(),
		now:    time.Now,
		lru:    list.New(),
		index:  make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CookieName returns the session cookie name.
func (m *Manager) CookieName() string {
	return m.config.CookieName
}

// Get returns the session for id, loading it from the store when it is not
// cached. Cached sessions are refreshed from the store.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	s, cached := m.lookup(id)
	if err := s.refresh(ctx); err != nil {
		if !cached {
			m.forget(id)
		}
		return nil, err
	}
	return s, nil
}

// Lookup returns the cached session for id without touching the store.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.index[id]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	entry.lastSeen = m.now()
	m.lru.MoveToFront(el)
	return entry.session, true
}

// New creates a session with a fresh random ID.
func (m *Manager) New() *Session {
	s, _ := m.lookup(uuid.NewString())
	return s
}

// Len returns the number of cached sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// Middleware attaches the request's Session to its context, issuing a
// session cookie to browsers that have none.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *Session
		if c, err := r.Cookie(m.config.CookieName); err == nil && validID(c.Value) {
			s, err := m.Get(r.Context(), c.Value)
			if err != nil {
				m.logger.Error("session load failed", "error", err)
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			sess = s
		} else {
			sess = m.New()
			http.SetCookie(w, &http.Cookie{
				Name:     m.config.CookieName,
				Value:    sess.ID(),
				Path:     "/",
				HttpOnly: true,
				Secure:   m.config.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
	})
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("swept idle sessions", "count", n)
			}
		}
	}
}

// Sweep drops sessions idle longer than IdleTimeout and returns how many
// were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.config.IdleTimeout)
	dropped := 0
	for el := m.lru.Back(); el != nil; {
		entry := el.Value.(*cacheEntry)
		if entry.lastSeen.After(cutoff) {
			break
		}
		prev := el.Prev()
		m.lru.Remove(el)
		delete(m.index, entry.session.id)
		dropped++
		el = prev
	}
	return dropped
}

// lookup returns the cached session for id, creating an empty one when
// missing.
func (m *Manager) lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if el, ok := m.index[id]; ok {
		entry := el.Value.(*cacheEntry)
		entry.lastSeen = now
		m.lru.MoveToFront(el)
		return entry.session, true
	}

	s := &Session{id: id, store: m.store, now: m.now}
	m.index[id] = m.lru.PushFront(&cacheEntry{session: s, lastSeen: now})

	for m.lru.Len() > m.config.MaxSessions {
		oldest := m.lru.Back()
		m.lru.Remove(oldest)
		delete(m.index, oldest.Value.(*cacheEntry).session.id)
	}
	return s, false
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.index[id]; ok {
		m.lru.Remove(el)
		delete(m.index, id)
	}
}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
