package dashboard

import (
	"net/url"

	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/fetch"
	"github.com/vango-dev/salesdash/pkg/listview"
	"github.com/vango-dev/salesdash/pkg/live"
	"github.com/vango-dev/salesdash/pkg/pagination"
	"github.com/vango-dev/salesdash/pkg/table"
)

// Transaction fragments.
const (
	viewTransactionToolbar = "transaction_toolbar"
	viewTransactionTable   = "transaction_table"
)

// listData is the data of a list table fragment.
type listData struct {
	Table      table.View
	Pagination pagination.Control
}

// transactionsView is the transaction list page. Opening a row navigates to
// the invoice page.
type transactionsView struct {
	base

	list      *listview.View[api.Transaction]
	customers *fetch.Resource[api.List[api.Ref]]
	sales     *fetch.Resource[api.List[api.Ref]]
}

func newTransactionsView(s *Server, _ string) live.View {
	return &transactionsView{base: base{srv: s}}
}

func (v *transactionsView) Mount(ctx *live.Ctx) error {
	return v.mount(ctx, nil)
}

func (v *transactionsView) mount(h host, opts []listview.Option) error {
	v.attach(h)
	c := v.srv.api
	opts = append([]listview.Option{
		listview.WithTokenSource(v.tokens),
		listview.WithSearchDelay(v.srv.opts.SearchDelay),
		listview.WithLogger(h.Logger()),
	}, opts...)
	v.list = listview.New(h, c, listview.TransactionList(c), opts...)
	v.customers = fetch.New[api.List[api.Ref]](h, c, fetch.Get(c.CustomerOptionsURL()), v.fetchOptions("customer_options")...)
	v.sales = fetch.New[api.List[api.Ref]](h, c, fetch.Get(c.SalesURL()), v.fetchOptions("sales")...)
	return nil
}

func (v *transactionsView) HandleEvent(_ *live.Ctx, ev live.Event) error {
	return v.handle(ev)
}

func (v *transactionsView) handle(ev live.Event) error {
	if ev.Name == listview.EventOpenTransaction {
		if ev.Value == "" {
			return invalidEvent(ev)
		}
		v.h.Navigate(pathTransactions + "/" + url.PathEscape(ev.Value))
		return nil
	}
	handled, err := v.list.HandleEvent(ev.Name, ev.Value)
	if !handled {
		return invalidEvent(ev)
	}
	return err
}

func (v *transactionsView) Render() (live.Fragments, error) {
	r := v.srv.render
	tb, err := r.fragment(viewTransactionToolbar, toolbar(v.list,
		refFilter(listview.FilterCustomer, "Customer", v.customers),
		refFilter(listview.FilterSales, "Sales", v.sales),
	))
	if err != nil {
		return nil, err
	}
	tbl, err := r.fragment(viewTransactionTable, listData{Table: v.list.Table(), Pagination: v.list.Pagination()})
	if err != nil {
		return nil, err
	}
	return live.Fragments{
		viewTransactionToolbar: tb,
		viewTransactionTable:   tbl,
	}, nil
}

func (v *transactionsView) Dispose() {
	if v.list == nil {
		return
	}
	v.list.Dispose()
	v.customers.Dispose()
	v.sales.Dispose()
}
