// Package live serves server-rendered views over a WebSocket.
//
// A page is rendered once over HTTP with empty [data-view] containers. The
// browser then opens /live?path=<page path>, and the Handler mounts the View
// for that path into a new Session. From then on:
//
//   - the browser sends JSON events {view, name, value, values} for elements
//     carrying data-live attributes;
//   - each event and each dispatched callback runs on the session's loop, one
//     at a time;
//   - after every callback the session renders the view and sends a patch
//     frame for each fragment whose HTML changed.
//
// Views talk back through a Ctx: Emit sends a named frame (toasts use this),
// Navigate asks the browser to load another page, and Dispatch schedules work
// from other goroutines onto the loop.
//
// # Frames
//
//	{"type":"patch","view":"table","html":"<table>...</table>"}
//	{"type":"toast","payload":{"level":"success","message":"Saved"}}
//	{"type":"navigate","url":"/summary"}
//	{"type":"error","message":"rate limited"}
//
// Closing a session disposes its view on the loop, which in turn disposes
// every resource and debounced value the view owns.
package live
