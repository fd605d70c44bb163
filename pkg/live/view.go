package live

import (
	"context"
	"html/template"
	"log/slog"

	"github.com/vango-dev/salesdash/pkg/loop"
	"github.com/vango-dev/salesdash/pkg/session"
)

// Fragments are the rendered parts of a view, keyed by [data-view] name.
type Fragments map[string]template.HTML

// View is a live page. All methods run on the session loop.
type View interface {
	// Mount starts the view. Resources created here are owned by ctx's loop.
	Mount(ctx *Ctx) error

	// HandleEvent applies a browser event.
	HandleEvent(ctx *Ctx, ev Event) error

	// Render returns the current fragments.
	Render() (Fragments, error)

	// Dispose releases everything the view owns.
	Dispose()
}

// Ctx is a view's handle on its session.
type Ctx struct {
	s *Session
}

// Context returns a context cancelled when the session closes.
func (c *Ctx) Context() context.Context {
	return c.s.ctx
}

// Loop returns the session loop, for creating loop-owned resources.
func (c *Ctx) Loop() loop.Dispatcher {
	return c.s.loop
}

// Dispatch schedules fn on the session loop. Safe from any goroutine.
func (c *Ctx) Dispatch(fn func()) {
	c.s.loop.Dispatch(fn)
}

// Emit sends a frame of type event carrying payload.
func (c *Ctx) Emit(event string, payload any) {
	c.s.send(Frame{Type: event, Payload: payload})
}

// Navigate asks the browser to load path.
func (c *Ctx) Navigate(path string) {
	c.s.logger.Debug("navigate", "to", path)
	c.s.send(Frame{Type: FrameNavigate, URL: path})
}

// Invalidate forgets what was sent so the next flush resends every fragment.
func (c *Ctx) Invalidate() {
	clear(c.s.sent)
}

// Path returns the page path the session was opened for.
func (c *Ctx) Path() string {
	return c.s.path
}

// Auth returns the browser's credential session. It may be nil in tests.
func (c *Ctx) Auth() *session.Session {
	return c.s.auth
}

// Logger returns the session logger.
func (c *Ctx) Logger() *slog.Logger {
	return c.s.logger
}

// Close ends the session.
func (c *Ctx) Close() {
	c.s.Close()
}
