// Package disclosure tracks whether a panel, dialog or drawer is open.
//
// A Disclosure is either uncontrolled, holding its own state, or controlled,
// reading and writing state the caller owns. The mode is chosen at
// construction and never changes.
package disclosure

// Disclosure is an open/closed toggle.
type Disclosure struct {
	open bool

	get func() bool
	set func(bool)
}

// New returns an uncontrolled Disclosure.
func New(initial bool) *Disclosure {
	return &Disclosure{open: initial}
}

// Controlled returns a Disclosure that defers to get and set.
// It panics if either is nil.
func Controlled(get func() bool, set func(bool)) *Disclosure {
	if get == nil || set == nil {
		panic("disclosure: Controlled requires both get and set")
	}
	return &Disclosure{get: get, set: set}
}

// IsControlled reports whether state is owned by the caller.
func (d *Disclosure) IsControlled() bool {
	return d.get != nil
}

// IsOpen reports the current state.
func (d *Disclosure) IsOpen() bool {
	if d.get != nil {
		return d.get()
	}
	return d.open
}

// Set opens or closes the disclosure.
func (d *Disclosure) Set(open bool) {
	if d.set != nil {
		d.set(open)
		return
	}
	d.open = open
}

// Open opens the disclosure.
func (d *Disclosure) Open() { d.Set(true) }

// Close closes the disclosure.
func (d *Disclosure) Close() { d.Set(false) }

// Toggle flips the state.
func (d *Disclosure) Toggle() { d.Set(!d.IsOpen()) }
