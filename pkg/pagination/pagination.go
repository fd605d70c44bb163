// Package pagination computes and renders the page navigation control shown
// under list tables.
//
// The control is a pure function of the server's page counters. It never
// changes page state itself; it emits PageChanged and PerPageChanged events
// and the owning list decides what to do with them.
package pagination

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// DefaultPerPageOptions are the page sizes offered by the selector.
var DefaultPerPageOptions = []int{10, 20, 50, 100}

// Event names emitted by the rendered control.
const (
	EventPage    = "page"
	EventPerPage = "per_page"
)

var (
	// ErrUnknownEvent is returned by ParseEvent for names it does not own.
	ErrUnknownEvent = errors.New("pagination: unknown event")

	// ErrInvalidPage is returned when a page value is not a positive integer.
	ErrInvalidPage = errors.New("pagination: invalid page")

	// ErrInvalidPerPage is returned when a page size is not an allowed option.
	ErrInvalidPerPage = errors.New("pagination: invalid page size")
)

// Props are the inputs of the control.
type Props struct {
	CurrentPage    int
	LastPage       int
	PerPage        int
	Total          int
	Loading        bool
	PerPageOptions []int
}

// Control is the computed control state, ready to render.
type Control struct {
	Loading bool

	Start int
	End   int
	Total int

	CurrentPage int
	LastPage    int
	PerPage     int

	FirstDisabled bool
	PrevDisabled  bool
	NextDisabled  bool
	LastDisabled  bool

	PrevPage int
	NextPage int

	PerPageOptions []int
}

// Range returns the 1-based positions of the first and last item on the
// current page.
func Range(currentPage, perPage, total int) (start, end int) {
	start = (currentPage-1)*perPage + 1
	end = min(currentPage*perPage, total)
	return start, end
}

// Build computes the control for p.
func Build(p Props) Control {
	options := p.PerPageOptions
	if len(options) == 0 {
		options = DefaultPerPageOptions
	}
	c := Control{
		Loading:        p.Loading,
		Total:          p.Total,
		CurrentPage:    p.CurrentPage,
		LastPage:       p.LastPage,
		PerPage:        p.PerPage,
		FirstDisabled:  p.CurrentPage <= 1,
		PrevDisabled:   p.CurrentPage <= 1,
		NextDisabled:   p.CurrentPage >= p.LastPage,
		LastDisabled:   p.CurrentPage >= p.LastPage,
		PrevPage:       max(p.CurrentPage-1, 1),
		NextPage:       max(min(p.CurrentPage+1, p.LastPage), 1),
		PerPageOptions: options,
	}
	c.Start, c.End = Range(p.CurrentPage, p.PerPage, p.Total)
	if p.Total == 0 {
		c.Start, c.End = 0, 0
	}
	return c
}

// Event is a change requested by the control.
type Event interface {
	isEvent()
}

// PageChanged requests navigation to Page.
type PageChanged struct {
	Page int
}

// PerPageChanged requests a new page size. The owner resets to page 1.
type PerPageChanged struct {
	PerPage int
}

func (PageChanged) isEvent()    {}
func (PerPageChanged) isEvent() {}

// ParseEvent decodes an event sent by the rendered control.
func ParseEvent(name, value string, options []int) (Event, error) {
	switch name {
	case EventPage:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPage, value)
		}
		return PageChanged{Page: n}, nil
	case EventPerPage:
		n, err := strconv.Atoi(value)
		if err != nil || !ValidPerPage(n, options) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPerPage, value)
		}
		return PerPageChanged{PerPage: n}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}
}

// ValidPerPage reports whether n is one of options, or of
// DefaultPerPageOptions when options is empty.
func ValidPerPage(n int, options []int) bool {
	if len(options) == 0 {
		options = DefaultPerPageOptions
	}
	return slices.Contains(options, n)
}
