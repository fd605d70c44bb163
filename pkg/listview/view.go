// Package listview implements the paginated, filterable list screens of the
// dashboard.
//
// A View ties a debounced search box, date range, filters, sort and page
// counters to a single fetch.Resource. Every change that alters the result
// set (settled search, a filter, a date, the sort or the page size) sends the
// list back to page 1 before the next request is issued. The View also owns
// the add, detail and edit panels of its rows.
//
// A View is not safe for concurrent use. Create it and call its methods on
// the owning loop.
package listview

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/debounce"
	"github.com/vango-dev/salesdash/pkg/disclosure"
	"github.com/vango-dev/salesdash/pkg/fetch"
	"github.com/vango-dev/salesdash/pkg/loop"
	"github.com/vango-dev/salesdash/pkg/pagination"
	"github.com/vango-dev/salesdash/pkg/table"
)

var (
	// ErrEndDateDisabled is returned when an end date is set while no start
	// date is selected.
	ErrEndDateDisabled = errors.New("listview: end date requires a start date")

	// ErrEndDateBeforeStart is returned when the end date precedes the start
	// date.
	ErrEndDateBeforeStart = errors.New("listview: end date before start date")

	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("listview: invalid date")

	// ErrUnknownFilter is returned for filter keys the list does not define.
	ErrUnknownFilter = errors.New("listview: unknown filter")

	// ErrInvalidSort is returned for sort fields or directions the list does
	// not offer.
	ErrInvalidSort = errors.New("listview: invalid sort")

	// ErrUnknownPanel is returned for panel names other than add, detail and
	// edit.
	ErrUnknownPanel = errors.New("listview: unknown panel")
)

// Event names handled by View.HandleEvent. Filter events are named
// EventFilter + ":" + key.
const (
	EventSearch        = "search"
	EventSearchSubmit  = "search_submit"
	EventStartDate     = "start_date"
	EventEndDate       = "end_date"
	EventFilter        = "filter"
	EventSortBy        = "sort_by"
	EventSortDirection = "sort_direction"
	EventOpenPanel     = "open_panel"
	EventClosePanel    = "close_panel"
)

// Panel names a row panel.
type Panel string

const (
	PanelAdd    Panel = "add"
	PanelDetail Panel = "detail"
	PanelEdit   Panel = "edit"
)

var panels = []Panel{PanelAdd, PanelDetail, PanelEdit}

// Result is how a panel was closed.
type Result int

const (
	// Dismissed closes a panel without changing data.
	Dismissed Result = iota

	// MutationSucceeded closes a panel after it saved data; the list is
	// refetched.
	MutationSucceeded
)

// Choice is one entry of a select control.
type Choice struct {
	Value string
	Label string
}

// SortDirections are the direction choices offered by every list.
var SortDirections = []Choice{
	{Value: SortAsc, Label: "Ascending"},
	{Value: SortDesc, Label: "Descending"},
}

// Definition describes one kind of list.
type Definition[T any] struct {
	// Name identifies the list in logs and metrics.
	Name string

	// URL builds the request URL for the given query parameters.
	URL func(url.Values) string

	Columns []table.Column
	Row     func(T) table.Row

	// Filters are the filter keys, in display order.
	Filters []string

	// SortOptions are the fields the user may sort by. When empty the sort
	// field is fixed to Defaults.SortBy.
	SortOptions []Choice

	Defaults          Query
	EmptyMessage      string
	PerPageOptions    []int
	SearchPlaceholder string
}

// Option configures a View.
type Option func(*config)

type config struct {
	tokens     fetch.TokenSource
	delay      time.Duration
	clock      debounce.Clock
	logger     *slog.Logger
	retryCount int
	retryDelay time.Duration
}

// WithTokenSource sets the bearer token source of list requests.
func WithTokenSource(ts fetch.TokenSource) Option {
	return func(c *config) {
		c.tokens = ts
	}
}

// WithSearchDelay sets the search debounce window.
func WithSearchDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithClock replaces the debounce clock. Used in tests.
func WithClock(clock debounce.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRetry retries failed list requests.
func WithRetry(count int, delay time.Duration) Option {
	return func(c *config) {
		c.retryCount = count
		c.retryDelay = delay
	}
}

// View is a live list.
type View[T any] struct {
	def    Definition[T]
	logger *slog.Logger

	query    Query
	search   *debounce.Value
	resource *fetch.Resource[api.Page[T]]

	// last holds the most recent successful page of the current result set,
	// used for clamping and to keep the pagination counters while another
	// page loads. It is dropped when the result set changes or a load fails.
	last *api.Page[T]

	selected string
	panels   map[Panel]*disclosure.Disclosure
}

// New creates a View for def and issues the first request. It must be called
// on owner's loop.
func New[T any](owner loop.Dispatcher, doer fetch.Doer, def Definition[T], opts ...Option) *View[T] {
	c := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&c)
	}

	v := &View[T]{
		def:    def,
		logger: c.logger.With("list", def.Name),
		query:  normalize(def),
		panels: make(map[Panel]*disclosure.Disclosure, len(panels)),
	}
	for _, p := range panels {
		v.panels[p] = disclosure.New(false)
	}

	var debounceOpts []debounce.Option
	if c.clock != nil {
		debounceOpts = append(debounceOpts, debounce.WithClock(c.clock))
	}
	v.search = debounce.New(owner, v.query.Search, c.delay, debounceOpts...).
		OnSettle(v.applySearch)

	fetchOpts := []fetch.Option{
		fetch.WithName(def.Name),
		fetch.WithLogger(c.logger),
	}
	if c.tokens != nil {
		fetchOpts = append(fetchOpts, fetch.WithTokenSource(c.tokens))
	}
	if c.retryCount > 0 {
		fetchOpts = append(fetchOpts, fetch.WithRetry(c.retryCount, c.retryDelay))
	}
	v.resource = fetch.New[api.Page[T]](owner, doer, v.locator(), fetchOpts...).
		OnSuccess(func(p api.Page[T]) {
			v.last = &p
		}).
		OnError(func(error) {
			v.last = nil
		})
	return v
}

// normalize fills the zero fields of the definition's default query.
func normalize[T any](def Definition[T]) Query {
	q := def.Defaults.Clone()
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = pagination.DefaultPerPageOptions[0]
		if len(def.PerPageOptions) > 0 {
			q.PerPage = def.PerPageOptions[0]
		}
	}
	if q.SortDirection == "" {
		q.SortDirection = SortDesc
	}
	if q.Filters == nil {
		q.Filters = make(map[string]string, len(def.Filters))
	}
	for _, key := range def.Filters {
		if _, ok := q.Filters[key]; !ok {
			q.Filters[key] = ""
		}
	}
	return q
}

// Definition returns the list definition.
func (v *View[T]) Definition() Definition[T] {
	return v.def
}

// Query returns a copy of the current query.
func (v *View[T]) Query() Query {
	return v.query.Clone()
}

// State returns the fetch state of the current page.
func (v *View[T]) State() fetch.State[api.Page[T]] {
	return v.resource.State()
}

// SearchInput returns the raw text of the search box.
func (v *View[T]) SearchInput() string {
	return v.search.Immediate()
}

// SearchPending reports whether typed search text has not settled yet.
func (v *View[T]) SearchPending() bool {
	return v.search.Pending()
}

// SetSearch records typed search text. The query changes once the text has
// been stable for the debounce window.
func (v *View[T]) SetSearch(s string) {
	v.search.Set(s)
}

// SubmitSearch settles pending search text immediately.
func (v *View[T]) SubmitSearch() {
	v.search.Flush()
}

func (v *View[T]) applySearch(s string) {
	v.update(func(q *Query) { q.Search = s })
}

// SetFilter sets the filter key to value. An empty value clears it.
func (v *View[T]) SetFilter(key, value string) error {
	if !slices.Contains(v.def.Filters, key) {
		return fmt.Errorf("%w: %s", ErrUnknownFilter, key)
	}
	v.update(func(q *Query) { q.Filters[key] = value })
	return nil
}

// SetStartDate sets the start of the date range. An empty value clears it
// together with the end date. An end date before the new start is cleared.
func (v *View[T]) SetStartDate(date string) error {
	start, err := parseDate(date)
	if err != nil {
		return err
	}
	v.update(func(q *Query) {
		q.StartDate = date
		if date == "" {
			q.EndDate = ""
			return
		}
		if q.EndDate == "" {
			return
		}
		if end, _ := parseDate(q.EndDate); end.Before(start) {
			q.EndDate = ""
		}
	})
	return nil
}

// SetEndDate sets the end of the date range. It is rejected while no start
// date is selected.
func (v *View[T]) SetEndDate(date string) error {
	end, err := parseDate(date)
	if err != nil {
		return err
	}
	if date != "" {
		if v.EndDateDisabled() {
			return ErrEndDateDisabled
		}
		if start, _ := parseDate(v.query.StartDate); end.Before(start) {
			return ErrEndDateBeforeStart
		}
	}
	v.update(func(q *Query) { q.EndDate = date })
	return nil
}

// EndDateDisabled reports whether the end date control is disabled.
func (v *View[T]) EndDateDisabled() bool {
	return v.query.StartDate == ""
}

// SetSortBy sets the sort field.
func (v *View[T]) SetSortBy(field string) error {
	if !v.sortable(field) {
		return fmt.Errorf("%w: field %q", ErrInvalidSort, field)
	}
	v.update(func(q *Query) { q.SortBy = field })
	return nil
}

// SetSortDirection sets the sort direction to asc or desc.
func (v *View[T]) SetSortDirection(dir string) error {
	if dir != SortAsc && dir != SortDesc {
		return fmt.Errorf("%w: direction %q", ErrInvalidSort, dir)
	}
	v.update(func(q *Query) { q.SortDirection = dir })
	return nil
}

func (v *View[T]) sortable(field string) bool {
	if len(v.def.SortOptions) == 0 {
		return field == v.def.Defaults.SortBy
	}
	return slices.ContainsFunc(v.def.SortOptions, func(c Choice) bool {
		return c.Value == field
	})
}

// SetPerPage sets the page size and returns to page 1.
func (v *View[T]) SetPerPage(n int) error {
	if !pagination.ValidPerPage(n, v.def.PerPageOptions) {
		return fmt.Errorf("%w: %d", pagination.ErrInvalidPerPage, n)
	}
	v.update(func(q *Query) { q.PerPage = n })
	return nil
}

// SetPage moves to page n, clamped to [1, lastPage] once the last page is
// known.
func (v *View[T]) SetPage(n int) {
	n = max(n, 1)
	if v.last != nil && int(v.last.LastPage) > 0 {
		n = min(n, int(v.last.LastPage))
	}
	if n == v.query.Page {
		return
	}
	v.query.Page = n
	v.reload()
}

// HandlePagination applies an event emitted by the pagination control.
func (v *View[T]) HandlePagination(ev pagination.Event) error {
	switch ev := ev.(type) {
	case pagination.PageChanged:
		v.SetPage(ev.Page)
	case pagination.PerPageChanged:
		return v.SetPerPage(ev.PerPage)
	}
	return nil
}

// Refetch repeats the current request.
func (v *View[T]) Refetch() {
	v.resource.Refetch()
}

// update applies fn to the query and, when the result set changed, returns
// to page 1 and reloads.
func (v *View[T]) update(fn func(q *Query)) {
	before := v.query.Values().Encode()
	fn(&v.query)
	if v.query.Values().Encode() == before {
		return
	}
	v.query.Page = 1
	v.last = nil
	v.reload()
}

func (v *View[T]) reload() {
	v.resource.SetLocator(v.locator())
}

func (v *View[T]) locator() fetch.Locator {
	return fetch.Get(v.def.URL(v.query.Values()))
}

// Selected returns the id of the row whose panel was opened last.
func (v *View[T]) Selected() string {
	return v.selected
}

// Panel returns the disclosure of panel p, or nil for unknown panels.
func (v *View[T]) Panel(p Panel) *disclosure.Disclosure {
	return v.panels[p]
}

// OpenPanel selects id and opens panel p.
func (v *View[T]) OpenPanel(p Panel, id string) error {
	d, ok := v.panels[p]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPanel, p)
	}
	v.selected = id
	d.Open()
	return nil
}

// ClosePanel closes panel p. The list is refetched only when r is
// MutationSucceeded.
func (v *View[T]) ClosePanel(p Panel, r Result) error {
	d, ok := v.panels[p]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPanel, p)
	}
	d.Close()
	if r == MutationSucceeded {
		v.logger.Debug("refetching after mutation", "panel", p)
		v.Refetch()
	}
	return nil
}

// HandleEvent applies a toolbar, pagination, retry or panel event. It reports
// false for names it does not handle.
func (v *View[T]) HandleEvent(name, value string) (bool, error) {
	switch name {
	case EventSearch:
		v.SetSearch(value)
	case EventSearchSubmit:
		v.SubmitSearch()
	case EventStartDate:
		return true, v.SetStartDate(value)
	case EventEndDate:
		return true, v.SetEndDate(value)
	case EventSortBy:
		return true, v.SetSortBy(value)
	case EventSortDirection:
		return true, v.SetSortDirection(value)
	case table.DefaultRetryEvent:
		v.Refetch()
	case pagination.EventPage, pagination.EventPerPage:
		ev, err := pagination.ParseEvent(name, value, v.def.PerPageOptions)
		if err != nil {
			return true, err
		}
		return true, v.HandlePagination(ev)
	case EventOpenPanel:
		p, id, _ := strings.Cut(value, ":")
		return true, v.OpenPanel(Panel(p), id)
	case EventClosePanel:
		return true, v.ClosePanel(Panel(value), Dismissed)
	case string(PanelAdd), string(PanelDetail), string(PanelEdit):
		return true, v.OpenPanel(Panel(name), value)
	default:
		key, ok := strings.CutPrefix(name, EventFilter+":")
		if !ok {
			return false, nil
		}
		return true, v.SetFilter(key, value)
	}
	return true, nil
}

// Table returns the table for the current state. While loading it renders
// skeleton rows under the same columns.
func (v *View[T]) Table() table.View {
	s := v.resource.State()
	var rows []table.Row
	if s.Data != nil {
		rows = make([]table.Row, 0, len(s.Data.Items))
		for _, item := range s.Data.Items {
			rows = append(rows, v.def.Row(item))
		}
	}
	return table.Build(table.Props{
		Columns:      v.def.Columns,
		Rows:         rows,
		Loading:      s.Loading,
		Err:          s.Err,
		EmptyMessage: v.def.EmptyMessage,
	})
}

// Pagination returns the pagination control for the current state.
func (v *View[T]) Pagination() pagination.Control {
	p := pagination.Props{
		CurrentPage:    v.query.Page,
		PerPage:        v.query.PerPage,
		Loading:        v.resource.State().Loading,
		PerPageOptions: v.def.PerPageOptions,
	}
	if last := v.last; last != nil {
		p.CurrentPage = int(last.CurrentPage)
		p.LastPage = int(last.LastPage)
		p.PerPage = int(last.PerPage)
		p.Total = int(last.Total)
	}
	return pagination.Build(p)
}

// Dispose stops the search timer and abandons the in-flight request.
func (v *View[T]) Dispose() {
	v.search.Dispose()
	v.resource.Dispose()
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
