// Package metrics holds the Prometheus collectors shared by salesdash
// packages.
//
// Collectors are created once by Init. Until then every Record function is a
// no-op, so libraries and tests can run without a registry.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "salesdash").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures Init.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "salesdash",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

type collectors struct {
	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	fetchStale     *prometheus.CounterVec
	apiTotal       *prometheus.CounterVec
	apiDuration    *prometheus.HistogramVec
	httpTotal      *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	liveSessions   prometheus.Gauge
	liveEvents     *prometheus.CounterVec
	liveDropped    prometheus.Counter
	livePatches    prometheus.Counter
	settledSearch  prometheus.Counter
	credentialOps  *prometheus.CounterVec
}

var (
	mu     sync.RWMutex
	global *collectors
)

// Init creates the collectors. Only the first call has any effect.
func Init(opts ...Option) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		return
	}

	f := promauto.With(cfg.Registry)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		}, labels)
	}
	histogram := func(name, help string, labels ...string) *prometheus.HistogramVec {
		return f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, labels)
	}

	global = &collectors{
		fetchTotal:    counter("fetch_requests_total", "Fetch hook requests by resource and outcome", "resource", "outcome"),
		fetchDuration: histogram("fetch_duration_seconds", "Fetch hook request duration in seconds", "resource"),
		fetchStale:    counter("fetch_stale_discarded_total", "Fetch responses discarded because a newer request superseded them", "resource"),
		apiTotal:      counter("api_requests_total", "Remote API calls by method, route and status", "method", "route", "status"),
		apiDuration:   histogram("api_request_duration_seconds", "Remote API call duration in seconds", "method", "route"),
		httpTotal:     counter("http_requests_total", "Dashboard HTTP requests by route and status", "route", "status"),
		httpDuration:  histogram("http_request_duration_seconds", "Dashboard HTTP request duration in seconds", "route"),
		liveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "live_sessions_active",
			Help:        "Number of connected live sessions",
			ConstLabels: cfg.ConstLabels,
		}),
		liveEvents: counter("live_events_total", "Live events processed by view and status", "view", "status"),
		liveDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "live_events_dropped_total",
			Help:        "Live events dropped by the per-session rate limiter",
			ConstLabels: cfg.ConstLabels,
		}),
		livePatches: f.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "live_patches_sent_total",
			Help:        "Fragment patches sent to browsers",
			ConstLabels: cfg.ConstLabels,
		}),
		settledSearch: f.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "debounce_settled_total",
			Help:        "Debounced inputs promoted to their settled value",
			ConstLabels: cfg.ConstLabels,
		}),
		credentialOps: counter("credential_operations_total", "Credential session operations by kind", "op"),
	}
}

func get() *collectors {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// RecordFetch records a finished fetch hook request.
// Outcome is one of "success", "http_error", "transport_error" or "decode_error".
func RecordFetch(resource, outcome string, d time.Duration) {
	if m := get(); m != nil {
		m.fetchTotal.WithLabelValues(resource, outcome).Inc()
		m.fetchDuration.WithLabelValues(resource).Observe(d.Seconds())
	}
}

// RecordStale records a fetch response that arrived after being superseded.
func RecordStale(resource string) {
	if m := get(); m != nil {
		m.fetchStale.WithLabelValues(resource).Inc()
	}
}

// RecordAPICall records a remote API call. Status 0 means no response.
func RecordAPICall(method, route string, status int, d time.Duration) {
	if m := get(); m != nil {
		m.apiTotal.WithLabelValues(method, route, statusLabel(status)).Inc()
		m.apiDuration.WithLabelValues(method, route).Observe(d.Seconds())
	}
}

// RecordHTTP records a dashboard HTTP request.
func RecordHTTP(route string, status int, d time.Duration) {
	if m := get(); m != nil {
		m.httpTotal.WithLabelValues(route, statusLabel(status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
	}
}

// RecordSessionOpen records a live session connecting.
func RecordSessionOpen() {
	if m := get(); m != nil {
		m.liveSessions.Inc()
	}
}

// RecordSessionClose records a live session disconnecting.
func RecordSessionClose() {
	if m := get(); m != nil {
		m.liveSessions.Dec()
	}
}

// RecordEvent records a processed live event.
func RecordEvent(view string, err error) {
	if m := get(); m != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		m.liveEvents.WithLabelValues(view, status).Inc()
	}
}

// RecordEventDropped records a live event rejected by rate limiting.
func RecordEventDropped() {
	if m := get(); m != nil {
		m.liveDropped.Inc()
	}
}

// RecordPatches records the number of fragment patches sent.
func RecordPatches(count int) {
	if m := get(); m != nil {
		m.livePatches.Add(float64(count))
	}
}

// RecordSettled records a debounced value promotion.
func RecordSettled() {
	if m := get(); m != nil {
		m.settledSearch.Inc()
	}
}

// RecordCredential records a credential session operation such as
// "sign_in", "sign_out" or "expired".
func RecordCredential(op string) {
	if m := get(); m != nil {
		m.credentialOps.WithLabelValues(op).Inc()
	}
}

// statusLabel keeps label cardinality bounded to status classes.
func statusLabel(status int) string {
	switch {
	case status <= 0:
		return "none"
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
