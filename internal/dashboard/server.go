package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/assets"
	"github.com/vango-dev/salesdash/pkg/authmw"
	"github.com/vango-dev/salesdash/pkg/live"
	"github.com/vango-dev/salesdash/pkg/middleware"
	"github.com/vango-dev/salesdash/pkg/session"
)

//go:embed static
var staticFS embed.FS

const staticPrefix = "/static/"

// DefaultSearchDelay is the list search debounce window.
const DefaultSearchDelay = 900 * time.Millisecond

// Options configures a Server.
type Options struct {
	// API is the remote CRM client. Views bind it to their session's
	// credential.
	API *api.Client

	// Sessions issues and resolves browser sessions.
	Sessions *session.Manager

	Logger *slog.Logger

	// SearchDelay is the debounce window of list search boxes.
	// Default: DefaultSearchDelay.
	SearchDelay time.Duration

	// Live configures live sessions.
	Live live.Config

	// Metrics, when set, is served at MetricsPath.
	Metrics     http.Handler
	MetricsPath string

	// Version is reported by the health endpoint.
	Version string

	// NoCache disables asset fingerprinting and browser caching.
	NoCache bool
}

// Server is the dashboard HTTP handler.
type Server struct {
	opts   Options
	api    *api.Client
	logger *slog.Logger

	router chi.Router
	live   *live.Handler
	render *renderer
	static http.Handler
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.API == nil {
		return nil, errors.New("dashboard: API client is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("dashboard: session manager is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = DefaultSearchDelay
	}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("dashboard: static files: %w", err)
	}

	var (
		resolver   assets.Resolver
		manifest   *assets.Manifest
		handlerOpt []assets.HandlerOption
	)
	if opts.NoCache {
		manifest = assets.NewManifest()
		resolver = assets.NewPassthroughResolver(staticPrefix)
		handlerOpt = append(handlerOpt, assets.WithNoCache())
	} else {
		manifest, err = assets.Build(static)
		if err != nil {
			return nil, fmt.Errorf("dashboard: fingerprint assets: %w", err)
		}
		resolver = assets.NewResolver(manifest, staticPrefix)
	}

	render, err := newRenderer(resolver)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:   opts,
		api:    opts.API,
		logger: opts.Logger,
		render: render,
		static: assets.NewHandler(static, manifest, handlerOpt...),
	}
	s.live = live.NewHandler(s.mount,
		live.WithConfig(opts.Live),
		live.WithLogger(opts.Logger),
	)
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Tracing(middleware.WithIncludeSessionID(true)))
	r.Use(middleware.Metrics)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(chimw.Recoverer)

	r.Get(pathHealth, s.healthz)
	if s.opts.Metrics != nil {
		path := s.opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, s.opts.Metrics)
	}
	r.Handle(staticPrefix+"*", http.StripPrefix(staticPrefix, s.static))

	r.Group(func(r chi.Router) {
		r.Use(s.opts.Sessions.Middleware)

		r.Get("/", authmw.RootRedirect)
		r.With(authmw.RedirectAuthenticated).Get(pathAuth, s.page(pages[pathAuth]))
		r.Handle(pathLive, s.live)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth)
			r.Get(pathSummary, s.page(pages[pathSummary]))
			r.Get(pathCustomers, s.page(pages[pathCustomers]))
			r.Get(pathTransactions, s.page(pages[pathTransactions]))
			r.Get(pathTransactions+"/", s.missingParam)
			r.Get(pathTransaction, s.page(pages[pathTransaction]))
			r.Get(pathProfile, s.page(pages[pathProfile]))
			r.Post(pathLogout, s.logout)
		})
	})

	r.NotFound(s.notFound)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// LiveSessions returns the number of open live sessions.
func (s *Server) LiveSessions() int {
	return s.live.Len()
}

// Shutdown closes every live session, waiting until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.live.Shutdown(ctx)
}
