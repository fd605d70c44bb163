package listview

import (
	"strconv"
	"strings"

	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/format"
	"github.com/vango-dev/salesdash/pkg/table"
)

// NotFound is shown for optional customer fields the server left empty, and
// as the empty state of every list.
const NotFound = "not found"

// Customer filter keys.
const (
	FilterProvince = "provinceCode"
	FilterCity     = "cityCode"
)

// CustomTruncate is the custom cell kind for long text clipped to one line.
const CustomTruncate = "truncate"

// CustomerColumns are the columns of the customer list.
var CustomerColumns = []table.Column{
	{Key: "name", Title: "Name"},
	{Key: "type", Title: "Type"},
	{Key: "companyType", Title: "Company Type"},
	{Key: "group", Title: "Group"},
	{Key: "area", Title: "Area"},
	{Key: "province", Title: "Province"},
	{Key: "city", Title: "City"},
	{Key: "address", Title: "Address"},
	{Key: "status", Title: "Status"},
	{Key: "target", Title: "Target", Align: "right"},
	{Key: "achievement", Title: "Achievement", Align: "right"},
	{Key: "percentage", Title: "Percentage", Align: "right"},
	{Key: "createdAt", Title: "Created At"},
	{Key: "action", Title: "Action"},
}

// CustomerList defines the customer list served by client.
func CustomerList(client *api.Client) Definition[api.Customer] {
	return Definition[api.Customer]{
		Name:    "customers",
		URL:     client.CustomersURL,
		Columns: CustomerColumns,
		Row:     CustomerRow,
		Filters: []string{FilterProvince, FilterCity},
		SortOptions: []Choice{
			{Value: "created_at", Label: "Created At"},
			{Value: "name", Label: "Name"},
		},
		Defaults: Query{
			StartDate:     "2025-01-01",
			EndDate:       "2025-12-31",
			SortBy:        "created_at",
			SortDirection: SortDesc,
			Page:          1,
			PerPage:       10,
		},
		EmptyMessage:      NotFound,
		SearchPlaceholder: "Search name customer..",
	}
}

// CustomerRow maps a customer to a table row keyed by its code.
func CustomerRow(c api.Customer) table.Row {
	kind := table.Badge{
		Label:   strings.ToLower(c.Type),
		Variant: table.VariantInfo,
		Icon:    "user-plus",
	}
	if c.Type == "EXISTING" {
		kind.Variant = table.VariantSuccess
		kind.Icon = "user-check"
	}

	company := table.Badge{Label: c.CompanyType, Variant: table.VariantNeutral, Icon: "building"}
	if c.CompanyType == "person" {
		company.Icon = "user"
	}

	return table.Row{
		ID: c.Code,
		Cells: map[string]table.Cell{
			"name":        table.Text(c.Name),
			"type":        kind,
			"companyType": company,
			"group":       table.Text(c.Group.Name),
			"area":        table.Text(orNotFound(c.Area)),
			"province":    table.Text(c.Province),
			"city":        table.Text(orNotFound(c.City)),
			"address":     table.Custom{Kind: CustomTruncate, Data: c.Address},
			"status":      table.Text(c.Status),
			"target":      table.Text(format.Decimal(c.Target.Float())),
			"achievement": table.Text(format.Decimal(c.Achievement.Float())),
			"percentage":  table.Text(strconv.Itoa(format.Percentage(c.Percentage.Float())) + "%"),
			"createdAt":   table.Text(format.DateTime(c.CreatedAt)),
			"action": table.Actions{
				{Name: string(PanelDetail), Label: "View", Icon: "eye", Target: c.Code},
				{Name: string(PanelEdit), Label: "Edit", Icon: "pencil", Target: c.Code},
			},
		},
	}
}

func orNotFound(s string) string {
	if s == "" {
		return NotFound
	}
	return s
}
