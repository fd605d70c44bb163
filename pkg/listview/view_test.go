package listview

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/debounce"
	"github.com/vango-dev/salesdash/pkg/pagination"
	"github.com/vango-dev/salesdash/pkg/table"
)

// queue collects dispatched callbacks so the test goroutine acts as the
// owning loop.
type queue struct {
	ch chan func()
}

func newQueue() *queue {
	return &queue{ch: make(chan func(), 256)}
}

func (q *queue) Dispatch(fn func()) {
	q.ch <- fn
}

// run executes one queued callback.
func (q *queue) run(t *testing.T) {
	t.Helper()
	select {
	case fn := <-q.ch:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for dispatched callback")
	}
}

// fakeAPI answers list requests with three pages of 25 customers.
type fakeAPI struct {
	mu     sync.Mutex
	status int
	urls   []*url.URL
}

func (f *fakeAPI) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.urls = append(f.urls, req.URL)
	status := f.status
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	body := `{"responseCode":"50000"}`
	if status == http.StatusOK {
		page, _ := strconv.Atoi(req.URL.Query().Get("page"))
		body = fmt.Sprintf(`{"items":[{"code":"C%d","name":"Acme","type":"EXISTING","companyType":"company"},`+
			`{"code":"D%d","name":"Budi","type":"PROSPECT","companyType":"person"}],`+
			`"currentPage":%d,"lastPage":3,"perPage":10,"total":25}`, page, page, page)
	}
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func (f *fakeAPI) setStatus(code int) {
	f.mu.Lock()
	f.status = code
	f.mu.Unlock()
}

func (f *fakeAPI) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urls)
}

func (f *fakeAPI) last() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.urls[len(f.urls)-1].Query()
}

type fakeTimer struct {
	fn      func()
	at      time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) debounce.Timer {
	t := &fakeTimer{fn: fn, at: c.now + d}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now += d
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			t.fn()
		}
	}
}

func testClient(t *testing.T) *api.Client {
	t.Helper()
	c, err := api.NewClient("http://api.test")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

type harness struct {
	q     *queue
	api   *fakeAPI
	clock *fakeClock
	view  *View[api.Customer]
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{q: newQueue(), api: &fakeAPI{}, clock: &fakeClock{}}
	h.view = New(h.q, h.api, CustomerList(testClient(t)), WithClock(h.clock))
	t.Cleanup(h.view.Dispose)
	h.settle(t)
	return h
}

// settle runs dispatched callbacks until the list stops loading.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	for h.view.State().Loading {
		h.q.run(t)
	}
}

func TestCustomerDefaultQuery(t *testing.T) {
	def := CustomerList(testClient(t))
	q := normalize(def)

	got := q.Values().Encode()
	want := "cityCode=&endDate=2025-12-31&page=1&perPage=10&provinceCode=&search=" +
		"&sortBy=created_at&sortDirection=desc&startDate=2025-01-01"
	if got != want {
		t.Errorf("Expected query %q, got %q", want, got)
	}

	u := def.URL(q.Values())
	if !strings.HasPrefix(u, "http://api.test/customers?") {
		t.Errorf("Expected customers URL, got %s", u)
	}
}

func TestQueryCloneIsDeep(t *testing.T) {
	q := Query{Filters: map[string]string{"cityCode": "A"}}
	c := q.Clone()
	c.Filters["cityCode"] = "B"
	if q.Filter("cityCode") != "A" {
		t.Errorf("Expected original filter 'A', got '%s'", q.Filter("cityCode"))
	}
}

func TestViewLoadsFirstPage(t *testing.T) {
	h := newHarness(t)

	tv := h.view.Table()
	if tv.Status != table.StatusPopulated {
		t.Fatalf("Expected populated table, got %s", tv.Status)
	}
	if len(tv.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(tv.Rows))
	}
	if tv.Rows[0].ID != "C1" {
		t.Errorf("Expected first row 'C1', got '%s'", tv.Rows[0].ID)
	}

	pc := h.view.Pagination()
	if pc.Start != 1 || pc.End != 10 || pc.Total != 25 {
		t.Errorf("Expected 1-10 of 25, got %d-%d of %d", pc.Start, pc.End, pc.Total)
	}
	if !pc.PrevDisabled || pc.NextDisabled {
		t.Errorf("Expected prev disabled and next enabled, got %+v", pc)
	}
}

func TestViewLoadingRendersSkeleton(t *testing.T) {
	h := newHarness(t)
	h.view.Refetch()

	tv := h.view.Table()
	if tv.Status != table.StatusLoading {
		t.Fatalf("Expected loading table, got %s", tv.Status)
	}
	if len(tv.Rows) != table.SkeletonRows {
		t.Errorf("Expected %d skeleton rows, got %d", table.SkeletonRows, len(tv.Rows))
	}
	if len(tv.Columns) != len(CustomerColumns) {
		t.Errorf("Expected %d columns, got %d", len(CustomerColumns), len(tv.Columns))
	}
	if !h.view.Pagination().Loading {
		t.Error("Expected pagination to be loading")
	}
	h.settle(t)
}

func TestViewErrorAndRetry(t *testing.T) {
	h := newHarness(t)
	h.api.setStatus(http.StatusInternalServerError)
	h.view.Refetch()
	h.settle(t)

	tv := h.view.Table()
	if tv.Status != table.StatusError {
		t.Fatalf("Expected error table, got %s", tv.Status)
	}
	if tv.Message != "Error 500: Internal Server Error" {
		t.Errorf("Expected status message, got '%s'", tv.Message)
	}

	h.api.setStatus(http.StatusOK)
	handled, err := h.view.HandleEvent(table.DefaultRetryEvent, "")
	if !handled || err != nil {
		t.Fatalf("Expected retry to be handled, got %v %v", handled, err)
	}
	h.settle(t)
	if h.view.Table().Status != table.StatusPopulated {
		t.Errorf("Expected populated table after retry, got %s", h.view.Table().Status)
	}
}

func TestSetPageClamps(t *testing.T) {
	h := newHarness(t)

	h.view.SetPage(10)
	if got := h.view.Query().Page; got != 3 {
		t.Errorf("Expected page clamped to 3, got %d", got)
	}
	h.settle(t)
	if got := h.api.last().Get("page"); got != "3" {
		t.Errorf("Expected request for page 3, got %s", got)
	}

	h.view.SetPage(0)
	if got := h.view.Query().Page; got != 1 {
		t.Errorf("Expected page clamped to 1, got %d", got)
	}
	h.settle(t)
}

func TestSetPageSameIsNoop(t *testing.T) {
	h := newHarness(t)
	before := h.api.requests()

	h.view.SetPage(1)
	if h.view.State().Loading {
		t.Error("Expected no request for the current page")
	}
	if h.api.requests() != before {
		t.Errorf("Expected %d requests, got %d", before, h.api.requests())
	}
}

func TestChangesResetPage(t *testing.T) {
	tests := []struct {
		name  string
		apply func(v *View[api.Customer]) error
		check func(q Query) bool
	}{
		{
			name:  "filter",
			apply: func(v *View[api.Customer]) error { return v.SetFilter(FilterProvince, "31") },
			check: func(q Query) bool { return q.Filter(FilterProvince) == "31" },
		},
		{
			name:  "sort by",
			apply: func(v *View[api.Customer]) error { return v.SetSortBy("name") },
			check: func(q Query) bool { return q.SortBy == "name" },
		},
		{
			name:  "sort direction",
			apply: func(v *View[api.Customer]) error { return v.SetSortDirection(SortAsc) },
			check: func(q Query) bool { return q.SortDirection == SortAsc },
		},
		{
			name:  "start date",
			apply: func(v *View[api.Customer]) error { return v.SetStartDate("2025-02-01") },
			check: func(q Query) bool { return q.StartDate == "2025-02-01" },
		},
		{
			name:  "per page",
			apply: func(v *View[api.Customer]) error { return v.SetPerPage(20) },
			check: func(q Query) bool { return q.PerPage == 20 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.view.SetPage(2)
			h.settle(t)

			if err := tt.apply(h.view); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			q := h.view.Query()
			if !tt.check(q) {
				t.Errorf("Expected change to be applied, got %+v", q)
			}
			if q.Page != 1 {
				t.Errorf("Expected page 1, got %d", q.Page)
			}
			h.settle(t)
			if got := h.api.last().Get("page"); got != "1" {
				t.Errorf("Expected request for page 1, got %s", got)
			}
		})
	}
}

func TestFailedReloadDropsPageCounters(t *testing.T) {
	h := newHarness(t)
	h.view.SetPage(3)
	h.settle(t)
	if c := h.view.Pagination(); c.CurrentPage != 3 {
		t.Fatalf("Expected control on page 3, got %d", c.CurrentPage)
	}

	h.api.setStatus(http.StatusInternalServerError)
	if err := h.view.SetSortBy("name"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	h.settle(t)

	if h.view.State().Err == nil {
		t.Fatal("Expected the reload to fail")
	}
	c := h.view.Pagination()
	if c.CurrentPage != 1 {
		t.Errorf("Expected control on page 1, got %d", c.CurrentPage)
	}
	if c.Total != 0 || c.Start != 0 || c.End != 0 {
		t.Errorf("Expected no counters after a failed reload, got %d-%d of %d", c.Start, c.End, c.Total)
	}
	if !c.PrevDisabled || !c.NextDisabled {
		t.Errorf("Expected prev and next disabled, got prev=%v next=%v", c.PrevDisabled, c.NextDisabled)
	}

	// Stale counters must not clamp a later page change either.
	before := h.api.requests()
	h.view.SetPage(5)
	if h.view.Query().Page != 5 {
		t.Errorf("Expected page 5 without a known last page, got %d", h.view.Query().Page)
	}
	h.settle(t)
	if h.api.requests() != before+1 {
		t.Errorf("Expected one more request, got %d", h.api.requests()-before)
	}
}

func TestFailedPageLoadDropsPageCounters(t *testing.T) {
	h := newHarness(t)
	h.api.setStatus(http.StatusInternalServerError)
	h.view.SetPage(2)
	h.settle(t)

	c := h.view.Pagination()
	if c.CurrentPage != 2 || c.Total != 0 {
		t.Errorf("Expected page 2 with no total, got page %d of total %d", c.CurrentPage, c.Total)
	}
}

func TestSearchSettlesBeforeQuerying(t *testing.T) {
	h := newHarness(t)
	h.view.SetPage(2)
	h.settle(t)
	before := h.api.requests()

	h.view.SetSearch("ac")
	h.clock.Advance(500 * time.Millisecond)
	h.view.SetSearch("acm")
	h.clock.Advance(500 * time.Millisecond)

	if h.view.SearchInput() != "acm" {
		t.Errorf("Expected input 'acm', got '%s'", h.view.SearchInput())
	}
	if h.view.Query().Search != "" {
		t.Errorf("Expected unsettled search, got '%s'", h.view.Query().Search)
	}
	if !h.view.SearchPending() {
		t.Error("Expected search to be pending")
	}

	h.clock.Advance(400 * time.Millisecond)
	h.q.run(t) // settle callback

	q := h.view.Query()
	if q.Search != "acm" || q.Page != 1 {
		t.Errorf("Expected search 'acm' on page 1, got '%s' on %d", q.Search, q.Page)
	}
	h.settle(t)
	if h.api.requests() != before+1 {
		t.Errorf("Expected one request after settling, got %d", h.api.requests()-before)
	}
	if got := h.api.last().Get("search"); got != "acm" {
		t.Errorf("Expected search parameter 'acm', got '%s'", got)
	}
}

func TestSubmitSearchFlushes(t *testing.T) {
	h := newHarness(t)
	h.view.SetSearch("budi")
	h.view.SubmitSearch()

	if got := h.view.Query().Search; got != "budi" {
		t.Errorf("Expected search 'budi', got '%s'", got)
	}
	h.settle(t)
}

func TestSetPerPageRejectsUnknownSize(t *testing.T) {
	h := newHarness(t)

	err := h.view.SetPerPage(15)
	if !errors.Is(err, pagination.ErrInvalidPerPage) {
		t.Errorf("Expected ErrInvalidPerPage, got %v", err)
	}
	if h.view.Query().PerPage != 10 {
		t.Errorf("Expected per page 10, got %d", h.view.Query().PerPage)
	}
}

func TestEndDateGuards(t *testing.T) {
	h := newHarness(t)

	if h.view.EndDateDisabled() {
		t.Error("Expected end date enabled with a start date")
	}
	if err := h.view.SetEndDate("2024-12-01"); !errors.Is(err, ErrEndDateBeforeStart) {
		t.Errorf("Expected ErrEndDateBeforeStart, got %v", err)
	}
	if err := h.view.SetEndDate("31/12/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Expected ErrInvalidDate, got %v", err)
	}

	if err := h.view.SetStartDate(""); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if q := h.view.Query(); q.EndDate != "" {
		t.Errorf("Expected end date cleared with the start date, got '%s'", q.EndDate)
	}
	h.settle(t)
	if got := h.api.last().Get("endDate"); got != "" {
		t.Errorf("Expected no end date in the request, got '%s'", got)
	}
	if !h.view.EndDateDisabled() {
		t.Error("Expected end date disabled without a start date")
	}
	if err := h.view.SetEndDate("2025-06-30"); !errors.Is(err, ErrEndDateDisabled) {
		t.Errorf("Expected ErrEndDateDisabled, got %v", err)
	}
	if err := h.view.SetEndDate(""); err != nil {
		t.Errorf("Expected clearing the end date to succeed, got %v", err)
	}
	h.settle(t)
}

func TestStartDateAfterEndClearsEnd(t *testing.T) {
	h := newHarness(t)

	if err := h.view.SetStartDate("2026-01-01"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	q := h.view.Query()
	if q.EndDate != "" {
		t.Errorf("Expected end date cleared, got '%s'", q.EndDate)
	}
	h.settle(t)
}

func TestUnknownFilterRejected(t *testing.T) {
	h := newHarness(t)

	if err := h.view.SetFilter("salesCode", "S1"); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("Expected ErrUnknownFilter, got %v", err)
	}
	if err := h.view.SetSortBy("amount"); !errors.Is(err, ErrInvalidSort) {
		t.Errorf("Expected ErrInvalidSort, got %v", err)
	}
	if err := h.view.SetSortDirection("up"); !errors.Is(err, ErrInvalidSort) {
		t.Errorf("Expected ErrInvalidSort, got %v", err)
	}
}

func TestPanelsRefetchOnlyAfterMutation(t *testing.T) {
	h := newHarness(t)
	before := h.api.requests()

	if err := h.view.OpenPanel(PanelEdit, "C1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if h.view.Selected() != "C1" || !h.view.Panel(PanelEdit).IsOpen() {
		t.Fatalf("Expected edit panel open for C1")
	}

	if err := h.view.ClosePanel(PanelEdit, Dismissed); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if h.view.Panel(PanelEdit).IsOpen() {
		t.Error("Expected edit panel closed")
	}
	if h.view.State().Loading || h.api.requests() != before {
		t.Error("Expected no refetch after dismissing")
	}

	h.view.OpenPanel(PanelAdd, "")
	if err := h.view.ClosePanel(PanelAdd, MutationSucceeded); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !h.view.State().Loading {
		t.Error("Expected refetch after a successful mutation")
	}
	h.settle(t)
	if h.api.requests() != before+1 {
		t.Errorf("Expected one refetch, got %d", h.api.requests()-before)
	}

	if err := h.view.OpenPanel("delete", "C1"); !errors.Is(err, ErrUnknownPanel) {
		t.Errorf("Expected ErrUnknownPanel, got %v", err)
	}
}

func TestHandleEvent(t *testing.T) {
	h := newHarness(t)

	handled, err := h.view.HandleEvent("filter:"+FilterCity, "3171")
	if !handled || err != nil {
		t.Fatalf("Expected filter event handled, got %v %v", handled, err)
	}
	if got := h.view.Query().Filter(FilterCity); got != "3171" {
		t.Errorf("Expected city filter '3171', got '%s'", got)
	}
	h.settle(t)

	handled, _ = h.view.HandleEvent(string(PanelDetail), "C1")
	if !handled || !h.view.Panel(PanelDetail).IsOpen() || h.view.Selected() != "C1" {
		t.Error("Expected detail event to open the detail panel")
	}

	handled, _ = h.view.HandleEvent(EventClosePanel, string(PanelDetail))
	if !handled || h.view.Panel(PanelDetail).IsOpen() {
		t.Error("Expected close event to close the detail panel")
	}

	handled, err = h.view.HandleEvent(pagination.EventPerPage, "7")
	if !handled || !errors.Is(err, pagination.ErrInvalidPerPage) {
		t.Errorf("Expected invalid per page error, got %v %v", handled, err)
	}

	handled, _ = h.view.HandleEvent("open", "INV/1")
	if handled {
		t.Error("Expected unknown event not to be handled")
	}
}

func TestTransactionSortIsFixed(t *testing.T) {
	q := newQueue()
	f := &fakeAPI{}
	v := New(q, f, TransactionList(testClient(t)))
	defer v.Dispose()

	if err := v.SetSortBy("name"); !errors.Is(err, ErrInvalidSort) {
		t.Errorf("Expected ErrInvalidSort, got %v", err)
	}
	if err := v.SetSortBy("created_at"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	q.run(t)
	got := f.last()
	if got.Get("startDate") != "2023-01-01" || got.Get("endDate") != "2026-12-30" {
		t.Errorf("Expected default transaction range, got %s..%s", got.Get("startDate"), got.Get("endDate"))
	}
	if _, ok := got["salesCode"]; !ok {
		t.Error("Expected empty salesCode parameter to be sent")
	}
}
