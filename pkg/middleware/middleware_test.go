package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/salesdash/pkg/metrics"
)

var registry = prometheus.NewRegistry()

func TestMain(m *testing.M) {
	metrics.Init(metrics.WithRegistry(registry))
	os.Exit(m.Run())
}

func setupTestProvider(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func testRouter(mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mw...)
	r.Get("/transactions/{no}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chi.URLParam(r, "no")))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	return r
}

func TestTracingNamesSpanAfterRoute(t *testing.T) {
	exporter := setupTestProvider(t)
	h := testRouter(Tracing())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/INV-1", nil))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "GET /transactions/{no}" {
		t.Errorf("Expected span name 'GET /transactions/{no}', got %q", spans[0].Name)
	}

	var sawStatus bool
	for _, attr := range spans[0].Attributes {
		if attr.Key == "http.status_code" && attr.Value.AsInt64() == http.StatusOK {
			sawStatus = true
		}
	}
	if !sawStatus {
		t.Errorf("Expected http.status_code 200, got %v", spans[0].Attributes)
	}
}

func TestTracingMarksServerErrors(t *testing.T) {
	exporter := setupTestProvider(t)
	h := testRouter(Tracing())

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("Expected error status, got %v", spans[0].Status)
	}
}

func TestTracingFilterAndExtractor(t *testing.T) {
	exporter := setupTestProvider(t)
	h := testRouter(Tracing(
		WithFilter(func(r *http.Request) bool { return r.URL.Path != "/boom" }),
		WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	if n := len(exporter.GetSpans()); n != 0 {
		t.Fatalf("Expected filtered request to produce no span, got %d", n)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/transactions/1", nil))
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	var found bool
	for _, attr := range spans[0].Attributes {
		if attr.Key == "test.attr" && attr.Value.AsString() == "ok" {
			found = true
		}
	}
	if !found {
		t.Error("Expected custom attribute on span")
	}
}

func TestSpanFromRequest(t *testing.T) {
	setupTestProvider(t)

	var valid bool
	h := Tracing()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		valid = SpanFromRequest(r).SpanContext().IsValid()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !valid {
		t.Error("Expected a valid span in the handler's request context")
	}
}

func TestMetricsRecordsRoutePattern(t *testing.T) {
	h := testRouter(Metrics)
	for _, no := range []string{"A", "B", "C"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/transactions/"+no, nil))
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	expected := `
# HELP salesdash_http_requests_total Dashboard HTTP requests by route and status
# TYPE salesdash_http_requests_total counter
salesdash_http_requests_total{route="/transactions/{no}",status="2xx"} 3
salesdash_http_requests_total{route="unmatched",status="4xx"} 1
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "salesdash_http_requests_total"); err != nil {
		t.Errorf("Unexpected metrics: %v", err)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := testRouter(RequestLogger(logger))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	out := buf.String()
	for _, want := range []string{"level=ERROR", "status=502", "route=/boom", "method=GET"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log line to contain %q, got %q", want, out)
		}
	}
}
