package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vango-dev/salesdash/pkg/loop"
	"github.com/vango-dev/salesdash/pkg/metrics"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 8 << 20

// Doer performs HTTP requests. *http.Client and *api.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the bearer credential for outgoing requests.
// An empty token means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Resource tracks the fetch state of one request lineage.
type Resource[T any] struct {
	owner  loop.Dispatcher
	doer   Doer
	tokens TokenSource

	name       string
	retryCount int
	retryDelay time.Duration
	baseCtx    context.Context
	logger     *slog.Logger

	loc      Locator
	state    State[T]
	gen      uint64
	cancel   context.CancelFunc
	disposed bool

	onChange  []func(State[T])
	onSuccess func(T)
	onError   func(error)
}

// Option configures a Resource.
type Option func(*options)

type options struct {
	tokens     TokenSource
	name       string
	retryCount int
	retryDelay time.Duration
	ctx        context.Context
	logger     *slog.Logger
}

// WithTokenSource sets where the bearer token is read from.
func WithTokenSource(ts TokenSource) Option {
	return func(o *options) {
		o.tokens = ts
	}
}

// WithName sets the resource name used in logs and metrics.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithRetry retries failed requests count times with delay between attempts.
// Superseded requests stop retrying.
func WithRetry(count int, delay time.Duration) Option {
	return func(o *options) {
		o.retryCount = count
		o.retryDelay = delay
	}
}

// WithContext sets the parent context of every request.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Resource owned by owner and immediately issues the request
// for loc. It must be called on the owner's loop.
func New[T any](owner loop.Dispatcher, doer Doer, loc Locator, opts ...Option) *Resource[T] {
	o := options{
		name:   "resource",
		ctx:    context.Background(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Resource[T]{
		owner:      owner,
		doer:       doer,
		tokens:     o.tokens,
		name:       o.name,
		retryCount: o.retryCount,
		retryDelay: o.retryDelay,
		baseCtx:    o.ctx,
		logger:     o.logger.With("resource", o.name),
		loc:        loc,
	}
	r.issue()
	return r
}

// State returns the current state.
func (r *Resource[T]) State() State[T] {
	return r.state
}

// Locator returns the current locator.
func (r *Resource[T]) Locator() Locator {
	return r.loc
}

// OnChange registers fn to be called after every state transition.
func (r *Resource[T]) OnChange(fn func(State[T])) *Resource[T] {
	r.onChange = append(r.onChange, fn)
	return r
}

// OnSuccess registers fn to be called when data loads successfully.
func (r *Resource[T]) OnSuccess(fn func(T)) *Resource[T] {
	r.onSuccess = fn
	return r
}

// OnError registers fn to be called when a request fails.
func (r *Resource[T]) OnError(fn func(error)) *Resource[T] {
	r.onError = fn
	return r
}

// SetLocator switches the resource to loc. A different locator starts a new
// request lineage; an equal locator is a no-op.
func (r *Resource[T]) SetLocator(loc Locator) {
	if r.disposed || r.loc.Equal(loc) {
		return
	}
	r.loc = loc
	r.issue()
}

// Refetch repeats the request for the current locator.
func (r *Resource[T]) Refetch() {
	if r.disposed {
		return
	}
	r.issue()
}

// Dispose cancels any in-flight request. Responses that arrive afterwards are
// ignored and no further callbacks run.
func (r *Resource[T]) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.gen++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.onChange = nil
	r.onSuccess = nil
	r.onError = nil
}

// IsDisposed reports whether Dispose has been called.
func (r *Resource[T]) IsDisposed() bool {
	return r.disposed
}

// issue supersedes the in-flight request, resets state and starts a new one.
func (r *Resource[T]) issue() {
	r.gen++
	gen := r.gen
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(r.baseCtx)
	r.cancel = cancel

	token := ""
	if r.tokens != nil {
		token = r.tokens.Token()
	}
	loc := r.loc

	r.set(State[T]{Loading: true})

	go func() {
		start := time.Now()
		data, err := r.perform(ctx, loc, token)
		r.owner.Dispatch(func() {
			r.settle(gen, data, err, time.Since(start))
		})
	}()
}

// settle applies a finished request if it still belongs to the current
// lineage.
func (r *Resource[T]) settle(gen uint64, data *T, err error, took time.Duration) {
	if r.disposed || gen != r.gen {
		metrics.RecordStale(r.name)
		r.logger.Debug("discarding stale response", "generation", gen, "current", r.gen)
		return
	}
	r.cancel = nil
	metrics.RecordFetch(r.name, outcome(err), took)

	if err != nil {
		r.logger.Warn("fetch failed", "url", r.loc.URL, "error", err)
		r.set(State[T]{Err: err})
		if r.onError != nil {
			r.onError(err)
		}
		return
	}
	r.set(State[T]{Data: data})
	if r.onSuccess != nil {
		r.onSuccess(*data)
	}
}

func (r *Resource[T]) set(s State[T]) {
	r.state = s
	for _, fn := range r.onChange {
		fn(s)
	}
}

// perform runs the request with retries. It never touches resource state.
func (r *Resource[T]) perform(ctx context.Context, loc Locator, token string) (*T, error) {
	var (
		data *T
		err  error
	)
	for attempt := 0; attempt <= r.retryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(r.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		data, err = r.once(ctx, loc, token)
		if err == nil || ctx.Err() != nil {
			break
		}
	}
	return data, err
}

func (r *Resource[T]) once(ctx context.Context, loc Locator, token string) (*T, error) {
	var body io.Reader
	if len(loc.Body) > 0 {
		body = bytes.NewReader(loc.Body)
	}
	req, err := http.NewRequestWithContext(ctx, loc.method(), loc.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range loc.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if len(loc.Body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.doer.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp, raw)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &out, nil
}

// TransportError wraps a failure to reach the server or read its response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError wraps a failure to decode a successful response body.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode response: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

func outcome(err error) string {
	var (
		statusErr *StatusError
		decodeErr *DecodeError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &statusErr):
		return "http_error"
	case errors.As(err, &decodeErr):
		return "decode_error"
	default:
		return "transport_error"
	}
}
