// Package api is the client of the remote CRM HTTP API.
//
// The remote service owns all persistent state; this package only knows its
// wire formats. List endpoints answer with a Page envelope, option lists with
// a List envelope, and failed requests with an Error envelope carrying a
// five-digit responseCode. Counters and amounts arrive as JSON numbers or as
// numeric strings depending on the endpoint, so they decode through Int and
// Number.
//
// Reads go through fetch.Resource with a *Client as the Doer, which gives
// them tracing and metrics. Mutations use Call.
package api
