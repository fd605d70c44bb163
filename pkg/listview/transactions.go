package listview

import (
	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/format"
	"github.com/vango-dev/salesdash/pkg/table"
)

// Transaction filter keys.
const (
	FilterCustomer = "customerCode"
	FilterSales    = "salesCode"
)

// EventOpenTransaction is the row action of the transaction list. Its value
// is the invoice reference number.
const EventOpenTransaction = "open"

// TransactionColumns are the columns of the transaction list.
var TransactionColumns = []table.Column{
	{Key: "salesName", Title: "Sales Name"},
	{Key: "customer", Title: "Customer"},
	{Key: "amountDue", Title: "Amount Due", Align: "right"},
	{Key: "amountUntaxed", Title: "Amount Untaxed", Align: "right"},
	{Key: "amountTotal", Title: "Amount Total", Align: "right"},
	{Key: "dateOrder", Title: "Date Order"},
	{Key: "dateDue", Title: "Date Due"},
	{Key: "paidAt", Title: "Paid At"},
	{Key: "createdAt", Title: "Created At"},
	{Key: "action", Title: "Action"},
}

// TransactionList defines the transaction list served by client. Its sort
// field is fixed to the creation time.
func TransactionList(client *api.Client) Definition[api.Transaction] {
	return Definition[api.Transaction]{
		Name:    "transactions",
		URL:     client.TransactionsURL,
		Columns: TransactionColumns,
		Row:     TransactionRow,
		Filters: []string{FilterCustomer, FilterSales},
		Defaults: Query{
			StartDate:     "2023-01-01",
			EndDate:       "2026-12-30",
			SortBy:        "created_at",
			SortDirection: SortDesc,
			Page:          1,
			PerPage:       10,
		},
		EmptyMessage:      NotFound,
		SearchPlaceholder: "Search name customer..",
	}
}

// TransactionRow maps a transaction to a table row keyed by its reference
// number.
func TransactionRow(t api.Transaction) table.Row {
	return table.Row{
		ID: t.ReferenceNo,
		Cells: map[string]table.Cell{
			"salesName":     table.Text(t.Sales),
			"customer":      table.Text(t.Customer.Name),
			"amountDue":     table.Text(format.LargeNumber(t.AmountDue.Float())),
			"amountUntaxed": table.Text(format.LargeNumber(t.AmountUntaxed.Float())),
			"amountTotal":   table.Text(format.LargeNumber(t.AmountTotal.Float())),
			"dateOrder":     table.Text(format.DateTime(t.DateOrder)),
			"dateDue":       table.Text(format.DateTime(t.DateDue)),
			"paidAt":        table.Text(format.DateTime(t.PaidAt)),
			"createdAt":     table.Text(format.DateTime(t.CreatedAt)),
			"action": table.Actions{
				{Name: EventOpenTransaction, Label: "View", Icon: "eye", Target: t.ReferenceNo},
			},
		},
	}
}

// UniqueRefs drops entries whose code was already seen, keeping the first.
// The customer option list may repeat a customer once per sales person.
func UniqueRefs(refs []api.Ref) []api.Ref {
	seen := make(map[string]bool, len(refs))
	out := make([]api.Ref, 0, len(refs))
	for _, r := range refs {
		if seen[r.Code] {
			continue
		}
		seen[r.Code] = true
		out = append(out, r)
	}
	return out
}

// Choices converts refs into select choices labelled by name.
func Choices(refs []api.Ref) []Choice {
	out := make([]Choice, len(refs))
	for i, r := range refs {
		out[i] = Choice{Value: r.Code, Label: r.Name}
	}
	return out
}
