// Package form validates dashboard forms and routes submission failures.
//
// Schemas are structs with validate tags, checked by a shared
// go-playground validator that reports fields under their json names. Each
// schema supplies its own messages so users see the same text whatever the
// rule that failed.
//
// A submission ends in one of two ways. A validation failure from the
// server (responseCode 42200 with per-field errors) is shown next to the
// fields and nowhere else. Any other failure is shown as exactly one toast.
//
//	var in form.Login
//	if errs := form.Validate(&in); errs != nil {
//	    v.errors = errs
//	    return
//	}
//	if !v.submit.Begin() {
//	    return // already submitting
//	}
//	...
//	out := form.Route(err, form.FallbackLogin)
package form
