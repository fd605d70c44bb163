package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	dasherrors "github.com/vango-dev/salesdash/internal/errors"
	"github.com/vango-dev/salesdash/pkg/authmw"
	"github.com/vango-dev/salesdash/pkg/session"
)

// Text of the not-found page.
const (
	notFoundHeading = "404 Page Not Found"
	notFoundMessage = "The page you're looking for doesn't exist or has been moved."
)

// layoutData is the data of the page layout.
type layoutData struct {
	Title    string
	Path     string
	Nav      []navItem
	Sections []string
	Signed   bool
	User     userCard
}

// userCard is the signed-in user shown at the foot of the sidebar.
type userCard struct {
	Name   string
	Detail string
	Image  string
}

func newUserCard(u session.User) userCard {
	c := userCard{Name: u.Name, Detail: u.Email, Image: u.ProfileImage}
	if c.Name == "" {
		c.Name = "User"
	}
	if c.Detail == "" {
		c.Detail = u.RoleName
	}
	return c
}

// errorData is the data of the error page.
type errorData struct {
	Status  int
	Code    string
	Heading string
	Message string
	Hint    string
}

// page serves the layout of p. The sections are filled by the live view.
func (s *Server) page(p *page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := layoutData{
			Title:    p.title,
			Path:     r.URL.EscapedPath(),
			Sections: p.sections,
		}
		if p.pattern == pathTransaction {
			no, err := url.PathUnescape(chi.URLParam(r, "no"))
			if err != nil {
				no = chi.URLParam(r, "no")
			}
			data.Title = "Invoice " + no
		}
		if !p.public {
			data.Nav = nav
			data.Signed = true
			if sess := session.FromContext(r.Context()); sess != nil {
				data.User = newUserCard(sess.User())
			}
		}
		s.write(w, r, http.StatusOK, "layout", data)
	}
}

// missingParam answers /transactions/ without an invoice number.
func (s *Server) missingParam(w http.ResponseWriter, r *http.Request) {
	s.fail(w, r, dasherrors.New("E200").WithDetail("The invoice number is missing from " + r.URL.Path + "."))
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusNotFound, "error", errorData{
		Status:  http.StatusNotFound,
		Code:    "E202",
		Heading: notFoundHeading,
		Message: notFoundMessage,
	})
}

// fail renders err as the error page with its HTTP status.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	de := dasherrors.FromError(err, "E500")
	status := de.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	s.write(w, r, status, "error", errorData{
		Status:  status,
		Code:    de.Code,
		Heading: de.Message,
		Message: de.Detail,
		Hint:    de.Suggestion,
	})
}

// logout ends the remote session and clears the local credential. The local
// credential is cleared even when the remote call fails.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, authmw.LoginPath, http.StatusSeeOther)
		return
	}
	if err := s.api.With(sess).Logout(r.Context()); err != nil {
		s.logger.Warn("logout request failed", "session_id", sess.ID(), "error", err)
	}
	if err := sess.SignOut(r.Context()); err != nil {
		s.fail(w, r, dasherrors.New("E500").WithDetail("The session could not be cleared.").Wrap(err))
		return
	}
	http.Redirect(w, r, authmw.LoginPath, http.StatusSeeOther)
}

// healthz reports liveness and the number of open live sessions.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":       "ok",
		"version":      s.opts.Version,
		"liveSessions": s.live.Len(),
	})
}

// write renders the named template fully before sending it, so a template
// failure can still answer with a 500.
func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.render.execute(&buf, name, data); err != nil {
		s.logger.Error("render failed", "template", name, "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
