package dashboard

import (
	"errors"
	"net/http"

	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/fetch"
	"github.com/vango-dev/salesdash/pkg/format"
	"github.com/vango-dev/salesdash/pkg/live"
	"github.com/vango-dev/salesdash/pkg/table"
)

const viewInvoice = "invoice"

var lineColumns = []table.Column{
	{Key: "productName", Title: "Product Name"},
	{Key: "quantity", Title: "Quantity", Align: "right"},
	{Key: "price", Title: "Price", Align: "right"},
	{Key: "discount", Title: "Discount", Align: "right"},
	{Key: "priceSubtotal", Title: "Price Subtotal", Align: "right"},
	{Key: "marginSubtotal", Title: "Margin Subtotal", Align: "right"},
}

// paymentBadges maps a payment status to its badge.
var paymentBadges = map[string]table.Badge{
	api.PaymentPaid:    {Label: "Paid", Variant: table.VariantSuccess, Icon: "check"},
	api.PaymentPartial: {Label: "Partial", Variant: table.VariantWarning, Icon: "clock"},
	api.PaymentUnpaid:  {Label: "Unpaid", Variant: table.VariantDanger, Icon: "alert"},
}

// transactionView is the invoice page of one transaction.
type transactionView struct {
	base

	no      string
	invoice *fetch.Resource[api.TransactionDetail]
}

func newTransactionView(s *Server, no string) live.View {
	return &transactionView{base: base{srv: s}, no: no}
}

func (v *transactionView) Mount(ctx *live.Ctx) error {
	return v.mount(ctx)
}

func (v *transactionView) mount(h host) error {
	v.attach(h)
	c := v.srv.api
	v.invoice = fetch.New[api.TransactionDetail](h, c, fetch.Get(c.TransactionURL(v.no)), v.fetchOptions("transaction")...)
	return nil
}

func (v *transactionView) HandleEvent(_ *live.Ctx, ev live.Event) error {
	return v.handle(ev)
}

func (v *transactionView) handle(ev live.Event) error {
	switch ev.Name {
	case table.DefaultRetryEvent:
		v.invoice.Refetch()
	case "back":
		v.h.Navigate(pathTransactions)
	default:
		return invalidEvent(ev)
	}
	return nil
}

type invoiceData struct {
	No       string
	Loading  bool
	NotFound bool
	Err      string

	Invoice *api.TransactionDetail
	Status  table.Badge
	Lines   table.View
	Balance api.Number
}

func invoice(no string, s fetch.State[api.TransactionDetail]) invoiceData {
	d := invoiceData{No: no, Loading: s.Loading}
	var statusErr *fetch.StatusError
	switch {
	case errors.As(s.Err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		d.NotFound = true
		return d
	case s.Err != nil:
		d.Err = s.Err.Error()
		return d
	case s.Data == nil:
		return d
	}

	t := s.Data
	d.Invoice = t
	d.Status = paymentBadges[t.PaymentStatus()]
	d.Balance = t.AmountDue
	rows := make([]table.Row, len(t.Items))
	for i, l := range t.Items {
		rows[i] = table.Row{Cells: map[string]table.Cell{
			"productName":    table.Text(l.ProductName),
			"quantity":       table.Text(format.Decimal(l.Quantity.Float())),
			"price":          table.Text(format.Currency(l.Price.Float())),
			"discount":       table.Text(format.Decimal(l.Discount.Float()) + "%"),
			"priceSubtotal":  table.Text(format.Currency(l.PriceSubtotal.Float())),
			"marginSubtotal": table.Text(format.Currency(l.MarginSubtotal.Float())),
		}}
	}
	d.Lines = table.Build(table.Props{Columns: lineColumns, Rows: rows})
	return d
}

func (v *transactionView) Render() (live.Fragments, error) {
	html, err := v.srv.render.fragment(viewInvoice, invoice(v.no, v.invoice.State()))
	if err != nil {
		return nil, err
	}
	return live.Fragments{viewInvoice: html}, nil
}

func (v *transactionView) Dispose() {
	if v.invoice != nil {
		v.invoice.Dispose()
	}
}
