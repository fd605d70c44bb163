package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/session"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// crm is a fake remote API. Handlers answer under /api.
type crm struct {
	*httptest.Server

	mu       sync.Mutex
	mux      *http.ServeMux
	requests []*http.Request
	bodies   map[string]string
}

func newCRM(t *testing.T) *crm {
	t.Helper()
	c := &crm{mux: http.NewServeMux(), bodies: make(map[string]string)}
	c.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.requests = append(c.requests, r)
		c.bodies[r.Method+" "+r.URL.Path] = string(body)
		c.mu.Unlock()
		c.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(c.Close)
	return c
}

// handle answers pattern with status and a JSON body.
func (c *crm) handle(pattern string, status int, body any) {
	c.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	})
}

// count returns how many requests were made for method and path.
func (c *crm) count(method, path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.requests {
		if r.Method == method && r.URL.Path == path {
			n++
		}
	}
	return n
}

// last returns the most recent request for path.
func (c *crm) last(path string) *http.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.requests) - 1; i >= 0; i-- {
		if c.requests[i].URL.Path == path {
			return c.requests[i]
		}
	}
	return nil
}

func (c *crm) body(method, path string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bodies[method+" "+path]
}

func (c *crm) client(t *testing.T) *api.Client {
	t.Helper()
	client, err := api.NewClient(c.URL+"/api", api.WithHTTPClient(c.Client()), api.WithLogger(discard))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func refs(pairs ...string) api.List[api.Ref] {
	var l api.List[api.Ref]
	for i := 0; i+1 < len(pairs); i += 2 {
		l.Items = append(l.Items, api.Ref{Code: pairs[i], Name: pairs[i+1]})
	}
	return l
}

type testEnv struct {
	crm      *crm
	server   *Server
	sessions *session.Manager
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	c := newCRM(t)
	store := session.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	mgr := session.NewManager(store, session.WithLogger(discard))

	s, err := New(Options{
		API:         c.client(t),
		Sessions:    mgr,
		Logger:      discard,
		SearchDelay: 10 * time.Millisecond,
		Metrics:     http.NotFoundHandler(),
		Version:     "test",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return &testEnv{crm: c, server: s, sessions: mgr}
}

// signIn creates a signed-in session and returns its cookie.
func (e *testEnv) signIn(t *testing.T) (*session.Session, *http.Cookie) {
	t.Helper()
	sess := e.sessions.New()
	if _, err := sess.SignIn(context.Background(), "token-1", session.User{Name: "Sari Dewi", RoleName: "Sales"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	return sess, &http.Cookie{Name: e.sessions.CookieName(), Value: sess.ID()}
}

func (e *testEnv) do(method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

// fakeHost runs dispatched callbacks on the test goroutine and records what
// views send to the browser.
type fakeHost struct {
	ch   chan func()
	auth *session.Session
	ctx  context.Context

	toasts    []any
	navigated []string
}

func newFakeHost(t *testing.T, auth *session.Session) *fakeHost {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &fakeHost{ch: make(chan func(), 256), auth: auth, ctx: ctx}
}

func (f *fakeHost) Dispatch(fn func()) { f.ch <- fn }

func (f *fakeHost) Emit(event string, payload any) {
	f.toasts = append(f.toasts, payload)
}

func (f *fakeHost) Navigate(path string) {
	f.navigated = append(f.navigated, path)
}

func (f *fakeHost) Auth() *session.Session { return f.auth }

func (f *fakeHost) Logger() *slog.Logger { return discard }

func (f *fakeHost) Context() context.Context { return f.ctx }

// settle runs callbacks until none arrive for a short while.
func (f *fakeHost) settle(t *testing.T) {
	t.Helper()
	for {
		select {
		case fn := <-f.ch:
			fn()
		case <-time.After(150 * time.Millisecond):
			return
		}
	}
}
