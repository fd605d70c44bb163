// Package loop provides the single-goroutine executor that owns view state.
//
// Every piece of mutable view state in salesdash (fetch state, debounced
// inputs, pagination, open panels) belongs to exactly one Loop and is only
// read or written from functions running on that loop. Asynchronous work such
// as HTTP requests and timers runs elsewhere and hands its result back with
// Dispatch, which serializes it with user events.
//
//	l := loop.New()
//	defer l.Close()
//
//	go func() {
//	    data, err := load()
//	    l.Dispatch(func() {
//	        state.Set(data, err) // runs on the loop
//	    })
//	}()
//
// Closing a loop drops queued and future callbacks, which is how disposal
// turns late async results into no-ops.
package loop
