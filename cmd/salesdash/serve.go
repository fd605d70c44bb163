package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/salesdash/internal/config"
	"github.com/vango-dev/salesdash/internal/dashboard"
	"github.com/vango-dev/salesdash/internal/telemetry"
	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/live"
	"github.com/vango-dev/salesdash/pkg/metrics"
	"github.com/vango-dev/salesdash/pkg/session"
)

func serveCmd() *cobra.Command {
	var (
		path    string
		port    int
		host    string
		apiURL  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		Long: `Start the dashboard HTTP server.

Settings come from the defaults, then the configuration file,
then SALESDASH_* environment variables, then the flags below.

Examples:
  salesdash serve
  salesdash serve --config=deploy/salesdash.yaml
  salesdash serve --port=3000 --api=https://crm.example.com/api`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(path, os.LookupEnv)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if apiURL != "" {
				cfg.API.BaseURL = apiURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, noCache)
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "", "Configuration file (default: salesdash.{json,yaml,yml})")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&apiURL, "api", "", "CRM API base URL (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Serve static files without fingerprints or caching")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, noCache bool) error {
	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	provider, err := telemetry.NewProvider(ctx, cfg.Tracing, version)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metrics.Init()
		metricsHandler = promhttp.Handler()
	}

	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout.Std()}),
		api.WithLogger(logger),
		api.WithTracer(provider.Tracer()),
	)
	if err != nil {
		return err
	}

	store, err := newStore(ctx, cfg.Session, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions := session.NewManager(store,
		session.WithConfig(session.ManagerConfig{
			CookieName:   cfg.Session.CookieName,
			SecureCookie: cfg.Session.SecureCookie,
			IdleTimeout:  cfg.Session.IdleTimeout.Std(),
		}),
		session.WithLogger(logger),
	)

	dash, err := dashboard.New(dashboard.Options{
		API:         client,
		Sessions:    sessions,
		Logger:      logger,
		SearchDelay: cfg.Live.SearchDelay.Std(),
		Live: live.Config{
			HeartbeatInterval: cfg.Live.HeartbeatInterval.Std(),
			EventRate:         cfg.Live.EventRate,
			EventBurst:        cfg.Live.EventBurst,
			CheckOrigin:       originCheck(cfg.Live.AllowedOrigins),
		},
		Metrics:     metricsHandler,
		MetricsPath: cfg.Metrics.Path,
		Version:     version,
		NoCache:     noCache,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           dash,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout.Std(),
		WriteTimeout:      cfg.Server.WriteTimeout.Std(),
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	printBanner()
	success("Listening on http://%s", srv.Addr)
	info("CRM API: %s", cfg.API.BaseURL)
	info("Sessions: %s store", cfg.Session.Store)
	fmt.Println()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sessions.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		// srv.Shutdown does not track hijacked live connections.
		if err := dash.Shutdown(shutdownCtx); err != nil {
			logger.Warn("live sessions did not close in time", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newStore opens the credential store named by cfg.
func newStore(ctx context.Context, cfg config.SessionConfig, logger *slog.Logger) (session.Store, error) {
	if cfg.Store != config.StoreRedis {
		return session.NewMemoryStore(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Debug("session store connected", "addr", cfg.Redis.Addr)

	var opts []session.RedisStoreOption
	if cfg.Redis.Prefix != "" {
		opts = append(opts, session.WithRedisPrefix(cfg.Redis.Prefix))
	}
	return &redisStore{RedisStore: session.NewRedisStore(rdb, opts...), client: rdb}, nil
}

// redisStore closes the client it owns along with the store.
type redisStore struct {
	*session.RedisStore
	client *redis.Client
}

func (s *redisStore) Close() error {
	s.RedisStore.Close()
	return s.client.Close()
}

// originCheck accepts same-origin upgrades plus the listed origins.
func originCheck(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return live.SameOriginCheck
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[normalizeOrigin(o)] = true
	}
	return func(r *http.Request) bool {
		if live.SameOriginCheck(r) {
			return true
		}
		return set[normalizeOrigin(r.Header.Get("Origin"))]
	}
}

func normalizeOrigin(o string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(o), "/"))
}
