package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Auth

// Login exchanges a phone number and password for a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.Call(ctx, http.MethodPost, "auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a user account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Message, error) {
	var out Message
	if err := c.Call(ctx, http.MethodPost, "auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.Call(ctx, http.MethodPost, "auth/logout", nil, nil)
}

// ChangePassword changes the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*Message, error) {
	var out Message
	if err := c.Call(ctx, http.MethodPut, "auth/password", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProfileURL locates the signed-in user's profile.
func (c *Client) ProfileURL() string {
	return c.URL("auth/profile", nil)
}

// Customers

// CreateCustomer creates a customer.
func (c *Client) CreateCustomer(ctx context.Context, p CustomerPayload) (*Message, error) {
	var out Message
	if err := c.Call(ctx, http.MethodPost, "customers", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCustomer updates the customer identified by code.
func (c *Client) UpdateCustomer(ctx context.Context, code string, p CustomerPayload) (*Message, error) {
	var out Message
	if err := c.Call(ctx, http.MethodPut, "customers/"+url.PathEscape(code), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CustomersURL locates a page of customers. Decodes into Page[Customer].
func (c *Client) CustomersURL(q url.Values) string {
	return c.URL("customers", q)
}

// CustomerURL locates one customer. Decodes into CustomerDetail.
func (c *Client) CustomerURL(code string) string {
	return c.URL("customers/"+url.PathEscape(code), nil)
}

// CustomerOptionsURL locates the customer option list. Decodes into
// List[Ref].
func (c *Client) CustomerOptionsURL() string {
	return c.URL("customers/list", nil)
}

// Transactions

// TransactionsURL locates a page of transactions. Decodes into
// Page[Transaction].
func (c *Client) TransactionsURL(q url.Values) string {
	return c.URL("transactions", q)
}

// TransactionURL locates one invoice. Decodes into TransactionDetail.
func (c *Client) TransactionURL(referenceNo string) string {
	return c.URL("transactions/"+url.PathEscape(referenceNo), nil)
}

// Lookups

// ProvincesURL locates the province option list. Decodes into List[Ref].
func (c *Client) ProvincesURL() string {
	return c.URL("provinces/list", nil)
}

// CitiesURL locates the city option list. Decodes into List[Ref].
func (c *Client) CitiesURL() string {
	return c.URL("cities/list", nil)
}

// SalesURL locates the sales people option list. Decodes into List[Ref].
func (c *Client) SalesURL() string {
	return c.URL("sales/list", nil)
}

// Summaries

// DailyTransactionsURL locates daily totals between two YYYY-MM-DD dates.
// Decodes into List[DailyAmount].
func (c *Client) DailyTransactionsURL(startDate, endDate, salesCode string) string {
	return c.URL("summaries/daily-transactions", url.Values{
		"startDate": {startDate},
		"endDate":   {endDate},
		"salesCode": {salesCode},
	})
}

// MonthlyTransactionsURL locates monthly totals between two YYYY-MM months.
// Decodes into List[MonthlyAmount].
func (c *Client) MonthlyTransactionsURL(startMonth, endMonth, salesCode string) string {
	return c.URL("summaries/monthly-transactions", url.Values{
		"startMonth": {startMonth},
		"endMonth":   {endMonth},
		"salesCode":  {salesCode},
	})
}

// YearlyTransactionsURL locates the year-over-year comparison. Decodes into
// YearlyTransactions.
func (c *Client) YearlyTransactionsURL(year int, salesCode string) string {
	return c.URL("summaries/yearly-transactions", url.Values{
		"year":      {strconv.Itoa(year)},
		"salesCode": {salesCode},
	})
}

// TopCustomersURL locates the customer ranking. Decodes into
// List[TopCustomer].
func (c *Client) TopCustomersURL(startDate, endDate string, limit int) string {
	return c.URL("summaries/top-customers", url.Values{
		"startDate": {startDate},
		"endDate":   {endDate},
		"limit":     {strconv.Itoa(limit)},
	})
}
