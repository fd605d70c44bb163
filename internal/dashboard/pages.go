package dashboard

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	dasherrors "github.com/vango-dev/salesdash/internal/errors"
	"github.com/vango-dev/salesdash/pkg/live"
	"github.com/vango-dev/salesdash/pkg/session"
)

// Page routes.
const (
	pathAuth         = "/auth"
	pathSummary      = "/summary"
	pathCustomers    = "/customer"
	pathTransactions = "/transactions"
	pathTransaction  = "/transactions/{no}"
	pathProfile      = "/profile"
	pathLogout       = "/logout"
	pathLive         = "/live"
	pathHealth       = "/healthz"
)

// page describes one live page.
type page struct {
	pattern string
	title   string
	public  bool

	// sections are the [data-view] fragments of the page, in layout order.
	sections []string

	view func(s *Server, param string) live.View
}

var pages = map[string]*page{
	pathAuth: {
		pattern:  pathAuth,
		title:    "Sign in",
		public:   true,
		sections: []string{viewAuth},
		view:     newAuthView,
	},
	pathSummary: {
		pattern:  pathSummary,
		title:    "Summary",
		sections: []string{viewSummaryFilters, viewSummaryKPIs, viewSummaryDaily, viewSummaryMonthly, viewSummaryTop},
		view:     newSummaryView,
	},
	pathCustomers: {
		pattern:  pathCustomers,
		title:    "Customers",
		sections: []string{viewCustomerToolbar, viewCustomerTable, viewCustomerPanels},
		view:     newCustomersView,
	},
	pathTransactions: {
		pattern:  pathTransactions,
		title:    "Transactions",
		sections: []string{viewTransactionToolbar, viewTransactionTable},
		view:     newTransactionsView,
	},
	pathTransaction: {
		pattern:  pathTransaction,
		title:    "Invoice",
		sections: []string{viewInvoice},
		view:     newTransactionView,
	},
	pathProfile: {
		pattern:  pathProfile,
		title:    "Profile",
		sections: []string{viewProfile},
		view:     newProfileView,
	},
}

// navItem is a sidebar link.
type navItem struct {
	Path  string
	Label string
	Icon  string
}

var nav = []navItem{
	{Path: pathSummary, Label: "Summary", Icon: "chart"},
	{Path: pathCustomers, Label: "Customer", Icon: "users"},
	{Path: pathTransactions, Label: "Transactions", Icon: "receipt"},
	{Path: pathProfile, Label: "Profile", Icon: "user"},
}

// resolve maps a request path to its page and route parameter.
func resolve(path string) (*page, string, error) {
	if p, ok := pages[path]; ok && p.pattern != pathTransaction {
		return p, "", nil
	}
	rest, ok := strings.CutPrefix(path, pathTransactions+"/")
	if !ok {
		return nil, "", live.ErrNoView
	}
	if rest == "" {
		return nil, "", dasherrors.New("E200").WithDetail("The invoice number is missing from " + path + ".")
	}
	if strings.Contains(rest, "/") {
		return nil, "", live.ErrNoView
	}
	no, err := url.PathUnescape(rest)
	if err != nil {
		return nil, "", live.ErrNoView
	}
	return pages[pathTransaction], no, nil
}

// mount is the live.Mounter of the dashboard.
func (s *Server) mount(r *http.Request, path string) (live.View, error) {
	p, param, err := resolve(path)
	if err != nil {
		if dasherrors.CodeOf(err) != "" {
			return nil, fmt.Errorf("%w: %w", live.ErrNoView, err)
		}
		return nil, err
	}
	if !p.public {
		sess := session.FromContext(r.Context())
		if sess == nil || !sess.Authenticated() {
			return nil, live.ErrUnauthorized
		}
	}
	return p.view(s, param), nil
}
