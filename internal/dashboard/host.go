package dashboard

import (
	"context"
	"log/slog"

	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/fetch"
	"github.com/vango-dev/salesdash/pkg/form"
	"github.com/vango-dev/salesdash/pkg/session"
	"github.com/vango-dev/salesdash/pkg/toast"
)

// host is the part of *live.Ctx a view keeps after mounting.
type host interface {
	Dispatch(fn func())
	Emit(event string, payload any)
	Navigate(path string)
	Auth() *session.Session
	Logger() *slog.Logger
	Context() context.Context
}

// signedOut is the token source of views mounted without a session.
var signedOut = fetch.TokenFunc(func() string { return "" })

// base is embedded by every view.
type base struct {
	srv    *Server
	h      host
	tokens fetch.TokenSource
}

func (b *base) attach(h host) {
	b.h = h
	b.tokens = signedOut
	if s := h.Auth(); s != nil {
		b.tokens = s
	}
}

// client returns the API client bound to the session credential.
func (b *base) client() *api.Client {
	return b.srv.api.With(b.tokens)
}

func (b *base) fetchOptions(name string) []fetch.Option {
	return []fetch.Option{
		fetch.WithName(name),
		fetch.WithTokenSource(b.tokens),
		fetch.WithContext(b.h.Context()),
		fetch.WithLogger(b.h.Logger()),
	}
}

// submit runs call off the loop and reports its result to done on the loop.
// It reports false when sub is already in flight.
func (b *base) submit(sub *form.Submission, call func(ctx context.Context) error, done func(error)) bool {
	if !sub.Begin() {
		return false
	}
	ctx := b.h.Context()
	go func() {
		err := call(ctx)
		b.h.Dispatch(func() {
			sub.End()
			done(err)
		})
	}()
	return true
}

// formState is a form's submitted values, field errors and submission.
type formState struct {
	Values map[string]string
	Errors form.FieldErrors
	sub    form.Submission
}

// InFlight reports whether the form's submission is running.
func (f *formState) InFlight() bool {
	return f.sub.InFlight()
}

// Error returns the message of field name.
func (f *formState) Error(name string) string {
	return f.Errors[name]
}

// Value returns the submitted value of field name.
func (f *formState) Value(name string) string {
	return f.Values[name]
}

func (f *formState) reset() {
	f.Values = nil
	f.Errors = nil
}

// check binds values into dst and validates it, keeping the values for
// redisplay. It reports whether the form may be submitted.
func (f *formState) check(values map[string]string, dst form.Schema) (bool, error) {
	f.Values = redact(values)
	if err := form.Bind(values, dst); err != nil {
		return false, err
	}
	f.Errors = form.Validate(dst)
	return len(f.Errors) == 0, nil
}

// fail shows a submission failure on the fields or in one toast.
func (f *formState) fail(h host, o form.Outcome) {
	f.Errors = o.Fields
	if o.Toast != "" {
		toast.Error(h, o.Toast)
	}
}

// redact drops password fields so they are never rendered back.
func redact(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		switch k {
		case "password", "currentPassword", "newPassword", "confirmPassword":
			continue
		}
		out[k] = v
	}
	return out
}
