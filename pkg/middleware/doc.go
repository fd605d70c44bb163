// Package middleware provides the HTTP middleware of the dashboard server.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus metrics middleware
//   - Structured request logging
//
// All three are plain func(http.Handler) http.Handler and are meant to be
// mounted on a chi router, after which the matched route pattern (such as
// "/transactions/{no}") is used as the span name and metric label instead of
// the raw path.
//
//	r := chi.NewRouter()
//	r.Use(chimw.RequestID)
//	r.Use(middleware.Tracing())
//	r.Use(middleware.Metrics)
//	r.Use(middleware.RequestLogger(logger))
//
// # OpenTelemetry Middleware
//
// Tracing starts a server span for every request, continuing any trace
// context carried by the request headers. The tracer comes from the global
// provider, so configure it in main before serving:
//
//	otel.SetTracerProvider(tp)
//
// # Prometheus Metrics
//
// Metrics records salesdash_http_requests_total and
// salesdash_http_request_duration_seconds through the metrics package. The
// collectors must be created with metrics.Init; until then the middleware
// only passes requests through.
package middleware
