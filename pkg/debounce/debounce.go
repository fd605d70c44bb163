// Package debounce holds a text input value whose settled copy trails the
// immediate copy until typing goes quiet.
//
// Timers fire on their own goroutine; promotion is always dispatched back to
// the owning loop, so every field of Value is only touched from that loop.
//
//	search := debounce.New(session, "", debounce.DefaultDelay)
//	search.OnSettle(func(v string) { list.SetSearch(v) })
//	search.Set("ac")   // Immediate() == "ac", Settled() unchanged
//	// 900ms later, on the loop: Settled() == "ac", OnSettle fires.
package debounce

import (
	"time"

	"github.com/vango-dev/salesdash/pkg/loop"
	"github.com/vango-dev/salesdash/pkg/metrics"
)

// DefaultDelay is the quiet window used by search inputs.
const DefaultDelay = 900 * time.Millisecond

// Timer is the subset of *time.Timer used by Value.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed functions. It exists so tests can control time.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Option configures a Value.
type Option func(*Value)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(v *Value) {
		v.clock = c
	}
}

// Value is a debounced string.
type Value struct {
	owner loop.Dispatcher
	clock Clock
	delay time.Duration

	immediate string
	settled   string

	timer    Timer
	gen      uint64
	disposed bool
	onSettle []func(string)
}

// New creates a Value whose immediate and settled copies both start at
// initial. A non-positive delay selects DefaultDelay.
func New(owner loop.Dispatcher, initial string, delay time.Duration, opts ...Option) *Value {
	if delay <= 0 {
		delay = DefaultDelay
	}
	v := &Value{
		owner:     owner,
		clock:     realClock{},
		delay:     delay,
		immediate: initial,
		settled:   initial,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Immediate returns the latest value passed to Set.
func (v *Value) Immediate() string { return v.immediate }

// Settled returns the last promoted value.
func (v *Value) Settled() string { return v.settled }

// Pending reports whether a promotion is scheduled.
func (v *Value) Pending() bool { return v.timer != nil }

// Delay returns the quiet window.
func (v *Value) Delay() time.Duration { return v.delay }

// OnSettle registers fn to run whenever Settled changes.
func (v *Value) OnSettle(fn func(string)) *Value {
	v.onSettle = append(v.onSettle, fn)
	return v
}

// Set records s as the immediate value and restarts the quiet window.
func (v *Value) Set(s string) {
	if v.disposed {
		return
	}
	v.immediate = s
	v.stop()

	v.gen++
	gen := v.gen
	v.timer = v.clock.AfterFunc(v.delay, func() {
		v.owner.Dispatch(func() {
			// A timer that lost the race with Stop still fires; the
			// generation check drops it.
			if v.disposed || gen != v.gen {
				return
			}
			v.timer = nil
			v.promote()
		})
	})
}

// Flush promotes the immediate value now, cancelling any pending timer.
func (v *Value) Flush() {
	if v.disposed {
		return
	}
	v.stop()
	v.promote()
}

// Reset sets both copies to s without notifying OnSettle callbacks.
func (v *Value) Reset(s string) {
	v.stop()
	v.immediate = s
	v.settled = s
}

// Dispose stops the pending timer. No promotion happens afterwards.
func (v *Value) Dispose() {
	if v.disposed {
		return
	}
	v.disposed = true
	v.stop()
	v.onSettle = nil
}

func (v *Value) stop() {
	v.gen++
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

func (v *Value) promote() {
	if v.settled == v.immediate {
		return
	}
	v.settled = v.immediate
	metrics.RecordSettled()
	for _, fn := range v.onSettle {
		fn(v.settled)
	}
}
