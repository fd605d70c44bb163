// Package fetch provides the fetch state hook used by every salesdash view.
//
// A Resource issues an HTTP request for a Locator and tracks its lifecycle as
// a State: loading, ready with data, or failed with an error. Changing the
// locator or calling Refetch resets the state to loading and issues a new
// request; responses that arrive for a superseded request are discarded, so
// the rendered state always belongs to the most recently issued locator.
//
// Resources are owned by a loop.Dispatcher. All methods must be called on the
// owner's loop; network work happens on a separate goroutine and its result is
// dispatched back onto the loop before it touches state.
//
//	res := fetch.New[api.Page[api.Customer]](sess, client,
//	    fetch.Get(client.URL("/customers", query.Values())),
//	    fetch.WithTokenSource(credentials),
//	    fetch.WithName("customers"),
//	)
//	res.OnChange(func(s fetch.State[api.Page[api.Customer]]) {
//	    ctx.Invalidate()
//	})
//
// The bearer token is read from the TokenSource each time a request is
// issued. A request that is already in flight keeps the token it started with.
package fetch
