package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/salesdash/pkg/fetch"
	"github.com/vango-dev/salesdash/pkg/metrics"
)

// DefaultTimeout bounds every request made through a Client.
const DefaultTimeout = 30 * time.Second

// TracerName is the OpenTelemetry instrumentation name of this package.
const TracerName = "github.com/vango-dev/salesdash/pkg/api"

// ErrNoBaseURL is returned by NewClient when the base URL is empty.
var ErrNoBaseURL = errors.New("api: base URL is required")

// Client calls the remote CRM API.
//
// A Client is safe for concurrent use. With returns a copy bound to one
// session's credential; the underlying transport is shared.
type Client struct {
	base   *url.URL
	http   *http.Client
	tracer trace.Tracer
	logger *slog.Logger
	tokens fetch.TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer replaces the tracer resolved from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNoBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: base URL must be http or https, got %q", baseURL)
	}

	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: DefaultTimeout},
		tracer: otel.Tracer(TracerName),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// With returns a copy of c that authenticates with tokens.
func (c *Client) With(tokens fetch.TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// Tokens returns the credential source bound with With, or nil.
func (c *Client) Tokens() fetch.TokenSource {
	return c.tokens
}

// URL returns the absolute URL of path with query q. path is in escaped
// form; use url.PathEscape for identifier segments.
func (c *Client) URL(path string, q url.Values) string {
	u := c.base.JoinPath(path)
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Do sends req with tracing and metrics. It implements fetch.Doer.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	route := routeLabel(strings.TrimPrefix(req.URL.EscapedPath(), c.base.EscapedPath()))

	ctx, span := c.tracer.Start(req.Context(), "api "+req.Method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("http.route", route),
			attribute.String("url.full", req.URL.Redacted()),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		metrics.RecordAPICall(req.Method, route, 0, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordAPICall(req.Method, route, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, resp.Status)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return resp, nil
}

// Call sends a JSON request and decodes the JSON response into out.
// in and out may be nil. Non-2xx responses are returned as *Error.
func (c *Client) Call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, nil), body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := FromResponse(resp.StatusCode, raw)
		c.logger.Debug("api call failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"code", apiErr.ResponseCode)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

// routeLabel reduces a request path to a low-cardinality route by replacing
// identifier segments with {id}.
func routeLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if i > 0 && strings.IndexFunc(seg, unicode.IsDigit) >= 0 {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}
