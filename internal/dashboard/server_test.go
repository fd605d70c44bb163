package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	dasherrors "github.com/vango-dev/salesdash/internal/errors"
	"github.com/vango-dev/salesdash/pkg/live"
	"github.com/vango-dev/salesdash/pkg/session"
)

func TestRootRedirect(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodGet, "/", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/auth" {
		t.Errorf("Expected redirect to /auth, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	_, cookie := env.signIn(t)
	rec = env.do(http.MethodGet, "/", cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/summary" {
		t.Errorf("Expected redirect to /summary, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestProtectedPagesRequireSignIn(t *testing.T) {
	env := newEnv(t)

	for _, path := range []string{"/summary", "/customer", "/transactions", "/transactions/INV-1", "/profile"} {
		t.Run(path, func(t *testing.T) {
			rec := env.do(http.MethodGet, path, nil)
			if rec.Code != http.StatusSeeOther {
				t.Fatalf("Expected 303, got %d", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != "/auth" {
				t.Errorf("Expected redirect to /auth, got %q", loc)
			}
		})
	}
}

func TestAuthPage(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodGet, "/auth", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`data-live-path="/auth"`, `data-view="auth"`, `href="/static/app.`, `src="/static/live.`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
	if strings.Contains(body, "sidebar") {
		t.Error("Expected no sidebar on the sign-in page")
	}

	var issued bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == env.sessions.CookieName() {
			issued = true
		}
	}
	if !issued {
		t.Error("Expected a session cookie on first visit")
	}
}

func TestAuthPageRedirectsSignedIn(t *testing.T) {
	env := newEnv(t)
	_, cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/auth", cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/summary" {
		t.Errorf("Expected redirect to /summary, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestPageSections(t *testing.T) {
	env := newEnv(t)
	_, cookie := env.signIn(t)

	tests := []struct {
		path     string
		sections []string
	}{
		{"/summary", pages[pathSummary].sections},
		{"/customer", pages[pathCustomers].sections},
		{"/transactions", pages[pathTransactions].sections},
		{"/transactions/INV-7", pages[pathTransaction].sections},
		{"/profile", pages[pathProfile].sections},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := env.do(http.MethodGet, tt.path, cookie)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rec.Code)
			}
			body := rec.Body.String()
			for _, s := range tt.sections {
				if !strings.Contains(body, `data-view="`+s+`"`) {
					t.Errorf("Expected section %q", s)
				}
			}
			if !strings.Contains(body, `action="/logout"`) {
				t.Error("Expected the logout form")
			}
		})
	}
}

func TestSidebarUserCard(t *testing.T) {
	env := newEnv(t)
	_, cookie := env.signIn(t)

	body := env.do(http.MethodGet, "/summary", cookie).Body.String()
	for _, want := range []string{
		`<p class="sidebar__name">Sari Dewi</p>`,
		`<p class="sidebar__detail">Sales</p>`,
		`<div class="sidebar__avatar"><i class="icon icon--users"></i></div>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected sidebar to contain %q", want)
		}
	}
}

func TestNewUserCard(t *testing.T) {
	tests := []struct {
		name string
		user session.User
		want userCard
	}{
		{
			name: "email preferred over role",
			user: session.User{Name: "Sari", Email: "sari@example.com", RoleName: "Sales", ProfileImage: "/me.png"},
			want: userCard{Name: "Sari", Detail: "sari@example.com", Image: "/me.png"},
		},
		{
			name: "role without email",
			user: session.User{Name: "Sari", RoleName: "Sales"},
			want: userCard{Name: "Sari", Detail: "Sales"},
		},
		{
			name: "anonymous fallback",
			want: userCard{Name: "User"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newUserCard(tt.user); got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestInvoicePageTitle(t *testing.T) {
	env := newEnv(t)
	_, cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/transactions/INV-7", cookie)
	if !strings.Contains(rec.Body.String(), "<title>Invoice INV-7") {
		t.Errorf("Expected invoice title, got %s", rec.Body.String())
	}
}

func TestMissingInvoiceNumber(t *testing.T) {
	env := newEnv(t)
	_, cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/transactions/", cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-code="E200"`) || !strings.Contains(body, "Missing route parameter") {
		t.Errorf("Expected the E200 guard page, got %s", body)
	}
}

func TestNotFoundPage(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodGet, "/nowhere", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{notFoundHeading, "doesn&#39;t exist or has been moved", "Go Back"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected not-found page to contain %q", want)
		}
	}
}

func TestHealthz(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		Status       string `json:"status"`
		Version      string `json:"version"`
		LiveSessions int    `json:"liveSessions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Version != "test" || body.LiveSessions != 0 {
		t.Errorf("Unexpected health: %+v", body)
	}
}

func TestMetricsRoute(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodGet, "/metrics", nil)
	// The test metrics handler answers with the plain net/http 404 text.
	if strings.Contains(rec.Body.String(), notFoundHeading) {
		t.Error("Expected /metrics to be served by the metrics handler")
	}
}

func TestStaticAssets(t *testing.T) {
	env := newEnv(t)

	resolved := env.server.render.assets.Asset("app.css")
	if resolved == "/static/app.css" {
		t.Fatalf("Expected a fingerprinted path, got %s", resolved)
	}
	rec := env.do(http.MethodGet, resolved, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("Expected immutable caching, got %q", cc)
	}

	rec = env.do(http.MethodGet, "/static/live.js", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected source name to be served, got %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			env := newEnv(t)
			env.crm.handle("POST /api/auth/logout", status, map[string]string{"responseCode": "20000"})
			sess, cookie := env.signIn(t)

			rec := env.do(http.MethodPost, "/logout", cookie)
			if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/auth" {
				t.Errorf("Expected redirect to /auth, got %d %q", rec.Code, rec.Header().Get("Location"))
			}
			if env.crm.count(http.MethodPost, "/api/auth/logout") != 1 {
				t.Error("Expected the remote logout call")
			}
			if got := env.crm.last("/api/auth/logout").Header.Get("Authorization"); got != "Bearer token-1" {
				t.Errorf("Expected the bearer token on logout, got %q", got)
			}
			if sess.Authenticated() {
				t.Error("Expected the local credential to be cleared")
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		param   string
		err     error
		code    string
	}{
		{path: "/auth", pattern: pathAuth},
		{path: "/summary", pattern: pathSummary},
		{path: "/customer", pattern: pathCustomers},
		{path: "/transactions", pattern: pathTransactions},
		{path: "/transactions/INV-1", pattern: pathTransaction, param: "INV-1"},
		{path: "/transactions/INV%2F2025%2F001", pattern: pathTransaction, param: "INV/2025/001"},
		{path: "/profile", pattern: pathProfile},
		{path: "/transactions/", code: "E200"},
		{path: "/transactions/a/b", err: live.ErrNoView},
		{path: "/transactions/{no}", pattern: pathTransaction, param: "{no}"},
		{path: "/", err: live.ErrNoView},
		{path: "/nowhere", err: live.ErrNoView},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, param, err := resolve(tt.path)
			switch {
			case tt.code != "":
				if got := dasherrors.CodeOf(err); got != tt.code {
					t.Errorf("Expected code %s, got %v", tt.code, err)
				}
			case tt.err != nil:
				if !errors.Is(err, tt.err) {
					t.Errorf("Expected %v, got %v", tt.err, err)
				}
			default:
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if p.pattern != tt.pattern || param != tt.param {
					t.Errorf("Expected %s %q, got %s %q", tt.pattern, tt.param, p.pattern, param)
				}
			}
		})
	}
}

func TestMountGuards(t *testing.T) {
	env := newEnv(t)
	sess, _ := env.signIn(t)

	anon := httptest.NewRequest(http.MethodGet, "/live", nil)
	if _, err := env.server.mount(anon, "/summary"); !errors.Is(err, live.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	if v, err := env.server.mount(anon, "/auth"); err != nil || v == nil {
		t.Errorf("Expected the auth view, got %v", err)
	}

	signed := anon.WithContext(session.NewContext(context.Background(), sess))
	v, err := env.server.mount(signed, "/summary")
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, ok := v.(*summaryView); !ok {
		t.Errorf("Expected *summaryView, got %T", v)
	}

	_, err = env.server.mount(signed, "/transactions/")
	if !errors.Is(err, live.ErrNoView) || dasherrors.CodeOf(err) != "E200" {
		t.Errorf("Expected ErrNoView carrying E200, got %v", err)
	}
}

func TestLiveMountsAuthView(t *testing.T) {
	env := newEnv(t)
	srv := httptest.NewServer(env.server)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live?path=/auth"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f live.Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	if f.Type != live.FramePatch || f.View != viewAuth {
		t.Fatalf("Expected auth patch, got %+v", f)
	}
	if !strings.Contains(f.HTML, `data-live="login"`) {
		t.Errorf("Expected the login form, got %s", f.HTML)
	}

	if err := conn.WriteJSON(live.Event{View: viewAuth, Name: "tab", Value: tabRegister}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	if f.Type != live.FramePatch || !strings.Contains(f.HTML, `data-live="register"`) {
		t.Errorf("Expected register form patch, got %+v", f)
	}
}

func TestLiveRejectsAnonymousProtectedPage(t *testing.T) {
	env := newEnv(t)
	srv := httptest.NewServer(env.server)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live?path=/summary"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Expected the upgrade to be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %v", resp)
	}
}
