// Package authmw provides the route guards of the dashboard.
//
// Guards read the *session.Session attached by session.Manager.Middleware,
// so they must be mounted after it.
package authmw

import (
	"net/http"

	"github.com/vango-dev/salesdash/pkg/session"
)

// Default paths used by the guards.
const (
	LoginPath = "/auth"
	HomePath  = "/summary"
)

// Guard holds the redirect targets of the guards.
type Guard struct {
	LoginPath string
	HomePath  string
}

// Default uses LoginPath and HomePath.
var Default = Guard{LoginPath: LoginPath, HomePath: HomePath}

func authenticated(r *http.Request) bool {
	s := session.FromContext(r.Context())
	return s != nil && s.Authenticated()
}

// RequireAuth redirects unauthenticated requests to the login page.
func (g Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authenticated(r) {
			http.Redirect(w, r, g.LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectAuthenticated sends signed-in users away from the login page.
func (g Guard) RedirectAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authenticated(r) {
			http.Redirect(w, r, g.HomePath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RootRedirect handles "/": home when signed in, login otherwise.
func (g Guard) RootRedirect(w http.ResponseWriter, r *http.Request) {
	target := g.LoginPath
	if authenticated(r) {
		target = g.HomePath
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// RequireAuth guards next with the default paths.
func RequireAuth(next http.Handler) http.Handler {
	return Default.RequireAuth(next)
}

// RedirectAuthenticated guards next with the default paths.
func RedirectAuthenticated(next http.Handler) http.Handler {
	return Default.RedirectAuthenticated(next)
}

// RootRedirect redirects with the default paths.
func RootRedirect(w http.ResponseWriter, r *http.Request) {
	Default.RootRedirect(w, r)
}
