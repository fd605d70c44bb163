// Package dashboard is the sales dashboard application: its HTTP routes,
// page templates and the live views behind every page.
//
// A page is served in two steps. The HTTP handler renders the layout with an
// empty section per [data-view] fragment, and the browser then opens
// /live?path=<page> over a WebSocket. The live handler mounts the page's view,
// which owns all of the page state (fetch resources, list queries, panels and
// form submissions) and streams its fragments back as patches.
//
// Pages:
//
//	/auth                 login and registration tabs
//	/summary              KPIs, daily and monthly series, top customers
//	/customer             customer list with add, detail and edit panels
//	/transactions         transaction list
//	/transactions/{no}    invoice detail
//	/profile              profile and password change
//
// Everything except /auth requires a signed-in session.
package dashboard
