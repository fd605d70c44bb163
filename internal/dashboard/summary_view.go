package dashboard

import (
	"slices"
	"strconv"
	"time"

	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/fetch"
	"github.com/vango-dev/salesdash/pkg/format"
	"github.com/vango-dev/salesdash/pkg/live"
	"github.com/vango-dev/salesdash/pkg/table"
)

// Summary fragments.
const (
	viewSummaryFilters = "summary_filters"
	viewSummaryKPIs    = "summary_kpis"
	viewSummaryDaily   = "summary_daily"
	viewSummaryMonthly = "summary_monthly"
	viewSummaryTop     = "summary_top"
)

// AllSales selects every sales representative.
const AllSales = "all"

// TopLimits are the row limits offered for the top customers table.
var TopLimits = []int{5, 10, 20, 50, 100}

// SummaryFilter is the filter state of the summary page.
type SummaryFilter struct {
	SalesCode string

	DailyStart string
	DailyEnd   string

	StartMonth string
	EndMonth   string

	Year int

	TopStart string
	TopEnd   string
	TopLimit int
}

// DefaultSummaryFilter is the filter a summary page opens with.
var DefaultSummaryFilter = SummaryFilter{
	SalesCode:  "796540",
	DailyStart: "2024-01-09",
	DailyEnd:   "2024-12-01",
	StartMonth: "2024-01",
	EndMonth:   "2025-12",
	Year:       2025,
	TopStart:   "2024-01-09",
	TopEnd:     "2024-12-01",
	TopLimit:   5,
}

const (
	minYear = 2000
	maxYear = 2100
)

var (
	dailyColumns = []table.Column{
		{Key: "date", Title: "Date"},
		{Key: "amount", Title: "Amount", Align: "right"},
	}
	monthlyColumns = []table.Column{
		{Key: "month", Title: "Month"},
		{Key: "current", Title: "Current", Align: "right"},
		{Key: "previous", Title: "Previous Year", Align: "right"},
		{Key: "growth", Title: "Growth", Align: "right"},
	}
	topColumns = []table.Column{
		{Key: "no", Title: "No"},
		{Key: "customerName", Title: "Customer Name"},
		{Key: "customerCode", Title: "Customer Code"},
		{Key: "companyType", Title: "Company Type"},
		{Key: "amount", Title: "Amount", Align: "right"},
	}
)

// summaryView is the summary page: yearly KPIs, daily and monthly series and
// the top customers ranking, all filtered by sales representative.
type summaryView struct {
	base

	filter SummaryFilter

	sales   *fetch.Resource[api.List[api.Ref]]
	daily   *fetch.Resource[api.List[api.DailyAmount]]
	monthly *fetch.Resource[api.List[api.MonthlyAmount]]
	yearly  *fetch.Resource[api.YearlyTransactions]
	top     *fetch.Resource[api.List[api.TopCustomer]]
}

func newSummaryView(s *Server, _ string) live.View {
	return &summaryView{base: base{srv: s}, filter: DefaultSummaryFilter}
}

func (v *summaryView) Mount(ctx *live.Ctx) error {
	return v.mount(ctx)
}

func (v *summaryView) mount(h host) error {
	v.attach(h)
	c := v.srv.api
	v.sales = fetch.New[api.List[api.Ref]](h, c, fetch.Get(c.SalesURL()), v.fetchOptions("sales")...)
	v.daily = fetch.New[api.List[api.DailyAmount]](h, c, v.dailyLocator(), v.fetchOptions("summary_daily")...)
	v.monthly = fetch.New[api.List[api.MonthlyAmount]](h, c, v.monthlyLocator(), v.fetchOptions("summary_monthly")...)
	v.yearly = fetch.New[api.YearlyTransactions](h, c, v.yearlyLocator(), v.fetchOptions("summary_yearly")...)
	v.top = fetch.New[api.List[api.TopCustomer]](h, c, v.topLocator(), v.fetchOptions("summary_top")...)
	return nil
}

func (v *summaryView) dailyLocator() fetch.Locator {
	f := v.filter
	return fetch.Get(v.srv.api.DailyTransactionsURL(f.DailyStart, f.DailyEnd, f.SalesCode))
}

func (v *summaryView) monthlyLocator() fetch.Locator {
	f := v.filter
	return fetch.Get(v.srv.api.MonthlyTransactionsURL(f.StartMonth, f.EndMonth, f.SalesCode))
}

func (v *summaryView) yearlyLocator() fetch.Locator {
	f := v.filter
	return fetch.Get(v.srv.api.YearlyTransactionsURL(f.Year, f.SalesCode))
}

func (v *summaryView) topLocator() fetch.Locator {
	f := v.filter
	return fetch.Get(v.srv.api.TopCustomersURL(f.TopStart, f.TopEnd, f.TopLimit))
}

func (v *summaryView) HandleEvent(_ *live.Ctx, ev live.Event) error {
	return v.handle(ev)
}

func (v *summaryView) handle(ev live.Event) error {
	f := &v.filter
	switch ev.Name {
	case "sales":
		if ev.Value == "" {
			return invalidEvent(ev)
		}
		f.SalesCode = ev.Value
		v.daily.SetLocator(v.dailyLocator())
		v.monthly.SetLocator(v.monthlyLocator())
		v.yearly.SetLocator(v.yearlyLocator())
	case "daily_start", "daily_end":
		if !validDate(time.DateOnly, ev.Value) {
			return invalidEvent(ev)
		}
		if ev.Name == "daily_start" {
			f.DailyStart = ev.Value
		} else {
			f.DailyEnd = ev.Value
		}
		v.daily.SetLocator(v.dailyLocator())
	case "month_start", "month_end":
		if !validDate("2006-01", ev.Value) {
			return invalidEvent(ev)
		}
		if ev.Name == "month_start" {
			f.StartMonth = ev.Value
		} else {
			f.EndMonth = ev.Value
		}
		v.monthly.SetLocator(v.monthlyLocator())
	case "year":
		year, err := strconv.Atoi(ev.Value)
		if err != nil || year < minYear || year > maxYear {
			return invalidEvent(ev)
		}
		f.Year = year
		v.yearly.SetLocator(v.yearlyLocator())
	case "top_start", "top_end":
		if !validDate(time.DateOnly, ev.Value) {
			return invalidEvent(ev)
		}
		if ev.Name == "top_start" {
			f.TopStart = ev.Value
		} else {
			f.TopEnd = ev.Value
		}
		v.top.SetLocator(v.topLocator())
	case "top_limit":
		n, err := strconv.Atoi(ev.Value)
		if err != nil || !slices.Contains(TopLimits, n) {
			return invalidEvent(ev)
		}
		f.TopLimit = n
		v.top.SetLocator(v.topLocator())
	case "retry_sales":
		v.sales.Refetch()
	case "retry_daily":
		v.daily.Refetch()
	case "retry_monthly":
		v.monthly.Refetch()
	case "retry_yearly":
		v.yearly.Refetch()
	case "retry_top":
		v.top.Refetch()
	default:
		return invalidEvent(ev)
	}
	return nil
}

// validDate reports whether s is a non-empty date in layout.
func validDate(layout, s string) bool {
	if s == "" {
		return false
	}
	_, err := time.Parse(layout, s)
	return err == nil
}

// salesOption is one entry of the sales select.
type salesOption struct {
	Code     string
	Name     string
	Selected bool
}

type summaryFiltersData struct {
	Loading bool
	Err     string
	Options []salesOption
	Filter  SummaryFilter
	Years   []int
}

// kpis is the data of the KPI cards.
type kpis struct {
	Loading bool
	Err     string

	Year         int
	PreviousYear int
	Current      api.Number
	Previous     api.Number
	Growth       api.Number

	MonthlyAverage api.Number
	DailyAverage   api.Number
}

// Up reports whether the year grew.
func (k kpis) Up() bool {
	return k.Growth >= 0
}

type seriesData struct {
	Filter SummaryFilter
	Table  table.View
	Limits []int
}

func (v *summaryView) filtersData() summaryFiltersData {
	s := v.sales.State()
	d := summaryFiltersData{
		Loading: s.Loading,
		Err:     s.Message(),
		Filter:  v.filter,
		Options: []salesOption{{
			Code:     AllSales,
			Name:     "All Sales Representatives",
			Selected: v.filter.SalesCode == AllSales,
		}},
	}
	if s.Data != nil {
		for _, r := range s.Data.Items {
			d.Options = append(d.Options, salesOption{
				Code:     r.Code,
				Name:     r.Name,
				Selected: r.Code == v.filter.SalesCode,
			})
		}
	}
	for y := v.filter.Year + 1; y >= v.filter.Year-5; y-- {
		d.Years = append(d.Years, y)
	}
	return d
}

// yearKPIs computes the KPI cards. The server owns the totals and growth;
// averages spread the current year over 12 months and 365 days.
func yearKPIs(s fetch.State[api.YearlyTransactions], year int) kpis {
	k := kpis{
		Loading:      s.Loading,
		Err:          s.Message(),
		Year:         year,
		PreviousYear: year - 1,
	}
	if s.Data == nil {
		return k
	}
	y := s.Data
	if y.Current.Year != 0 {
		k.Year = int(y.Current.Year)
	}
	if y.Previous.Year != 0 {
		k.PreviousYear = int(y.Previous.Year)
	}
	k.Current = y.Current.Amount
	k.Previous = y.Previous.Amount
	k.Growth = y.Percentage
	k.MonthlyAverage = y.Current.Amount / 12
	k.DailyAverage = y.Current.Amount / 365
	return k
}

func dailyRows(items []api.DailyAmount) []table.Row {
	rows := make([]table.Row, len(items))
	for i, d := range items {
		rows[i] = table.Row{
			ID: d.Date,
			Cells: map[string]table.Cell{
				"date":   table.Text(d.Date),
				"amount": table.Text(format.Currency(d.Amount.Float())),
			},
		}
	}
	return rows
}

func monthlyRows(items []api.MonthlyAmount) []table.Row {
	rows := make([]table.Row, len(items))
	for i, m := range items {
		growth := table.Badge{
			Label:   strconv.Itoa(format.Percentage(m.Growth.Float())) + "%",
			Variant: table.VariantSuccess,
			Icon:    "trending-up",
		}
		if m.Growth < 0 {
			growth.Variant = table.VariantDanger
			growth.Icon = "trending-down"
		}
		rows[i] = table.Row{
			ID: m.Month,
			Cells: map[string]table.Cell{
				"month":    table.Text(format.MonthString(m.Month)),
				"current":  table.Text(format.Currency(m.Current.Float())),
				"previous": table.Text(format.Currency(m.Previous.Float())),
				"growth":   growth,
			},
		}
	}
	return rows
}

func topRows(items []api.TopCustomer) []table.Row {
	rows := make([]table.Row, len(items))
	for i, t := range items {
		company := table.Badge{Label: t.Customer.CompanyType, Variant: table.VariantNeutral, Icon: "building"}
		if t.Customer.CompanyType == "person" {
			company.Icon = "user"
		}
		rows[i] = table.Row{
			ID: t.Customer.Code,
			Cells: map[string]table.Cell{
				"no":           table.Text(strconv.Itoa(i + 1)),
				"customerName": table.Text(t.Customer.Name),
				"customerCode": table.Text(t.Customer.Code),
				"companyType":  company,
				"amount":       table.Text(format.LargeNumber(t.Amount.Float())),
			},
		}
	}
	return rows
}

// seriesTable builds the table of a summary resource.
func seriesTable[T any](s fetch.State[api.List[T]], columns []table.Column, retry string, rows func([]T) []table.Row) table.View {
	var r []table.Row
	if s.Data != nil {
		r = rows(s.Data.Items)
	}
	return table.Build(table.Props{
		Columns:    columns,
		Rows:       r,
		Loading:    s.Loading,
		Err:        s.Err,
		RetryEvent: retry,
	})
}

func (v *summaryView) Render() (live.Fragments, error) {
	parts := []struct {
		name string
		data any
	}{
		{viewSummaryFilters, v.filtersData()},
		{viewSummaryKPIs, yearKPIs(v.yearly.State(), v.filter.Year)},
		{viewSummaryDaily, seriesData{
			Filter: v.filter,
			Table:  seriesTable(v.daily.State(), dailyColumns, "retry_daily", dailyRows),
		}},
		{viewSummaryMonthly, seriesData{
			Filter: v.filter,
			Table:  seriesTable(v.monthly.State(), monthlyColumns, "retry_monthly", monthlyRows),
		}},
		{viewSummaryTop, seriesData{
			Filter: v.filter,
			Table:  seriesTable(v.top.State(), topColumns, "retry_top", topRows),
			Limits: TopLimits,
		}},
	}
	frags := make(live.Fragments, len(parts))
	for _, p := range parts {
		html, err := v.srv.render.fragment(p.name, p.data)
		if err != nil {
			return nil, err
		}
		frags[p.name] = html
	}
	return frags, nil
}

func (v *summaryView) Dispose() {
	if v.sales == nil {
		return
	}
	v.sales.Dispose()
	v.daily.Dispose()
	v.monthly.Dispose()
	v.yearly.Dispose()
	v.top.Dispose()
}
