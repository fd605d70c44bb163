package loop

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Do when the loop has been closed.
var ErrClosed = errors.New("loop: closed")

// DefaultQueueSize is the number of callbacks that may be queued before
// Dispatch blocks.
const DefaultQueueSize = 256

// Dispatcher runs functions on an owning event loop.
// Implementations must be safe to call from any goroutine.
type Dispatcher interface {
	Dispatch(fn func())
}

// Loop executes dispatched functions one at a time on a dedicated goroutine.
type Loop struct {
	queue   chan func()
	done    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
	once    sync.Once

	after  func()
	logger *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithQueueSize sets the callback queue capacity.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queue = make(chan func(), n)
		}
	}
}

// WithAfter registers a function that runs on the loop after every callback.
// Live sessions use it to flush re-rendered fragments.
func WithAfter(fn func()) Option {
	return func(l *Loop) {
		l.after = fn
	}
}

// WithLogger sets the logger used for panic reports.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// New creates and starts a loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		queue:   make(chan func(), DefaultQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.stopped)
	for {
		select {
		case fn := <-l.queue:
			l.execute(fn)
		case <-l.done:
			return
		}
	}
}

// execute runs fn and the after hook with panic recovery so a faulty
// handler cannot take the loop down.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop callback panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	fn()
	if l.after != nil && !l.closed.Load() {
		l.after()
	}
}

// Dispatch queues fn to run on the loop. It is safe to call from any
// goroutine. Callbacks dispatched after Close are discarded.
func (l *Loop) Dispatch(fn func()) {
	if fn == nil || l.closed.Load() {
		return
	}
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Do runs fn on the loop and waits for it to finish.
// It must not be called from the loop itself.
func (l *Loop) Do(fn func()) error {
	if l.closed.Load() {
		return ErrClosed
	}
	finished := make(chan struct{})
	l.Dispatch(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// Done returns a channel that is closed when the loop is closed.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// IsClosed reports whether Close has been called.
func (l *Loop) IsClosed() bool {
	return l.closed.Load()
}

// Close stops the loop. Queued callbacks are dropped and the callback that is
// currently running, if any, finishes normally. Close is idempotent and safe
// to call from the loop itself; use Wait to block until the goroutine exits.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}

// Wait blocks until the loop goroutine has exited.
func (l *Loop) Wait() {
	<-l.stopped
}
