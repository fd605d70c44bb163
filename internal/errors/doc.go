// Package errors provides coded, actionable errors for the dashboard.
//
// Every failure that is not a plain transport or validation error carries a
// stable code (e.g. "E200") that maps to a short message, a longer detail and,
// where one exists, a hint on how to fix it. The same error can be shown to an
// operator on the terminal, written to the structured log, or rendered on an
// error page.
//
// # Error Categories
//
//   - config: salesdash.json / environment problems found at startup
//   - guard: a page was reached without what it needs (route parameter, sign-in)
//   - api: the remote CRM API was unreachable or answered unexpectedly
//   - live: a browser sent something the live session could not accept
//   - cli: command line usage errors
//
// # Usage
//
//	err := errors.New("E200").
//	    WithDetail("/transactions/ has no reference number").
//	    WithSuggestion("Open the invoice from the transactions list")
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR E200: Missing route parameter
//	//
//	//   /transactions/ has no reference number
//	//
//	//   Hint: Open the invoice from the transactions list
package errors
