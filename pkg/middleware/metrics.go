package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/salesdash/pkg/metrics"
)

// unmatchedRoute labels requests no route matched. Raw paths are never used
// as labels.
const unmatchedRoute = "unmatched"

// Metrics records the count and duration of every request by route pattern
// and status class.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		metrics.RecordHTTP(routePattern(r), status(ww), time.Since(start))
	})
}

// routePattern returns the chi route pattern matched by r.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

// status returns the written status, which is 200 when the handler wrote a
// body without calling WriteHeader.
func status(ww chimw.WrapResponseWriter) int {
	if code := ww.Status(); code != 0 {
		return code
	}
	return http.StatusOK
}
