package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig Category = "config"
	CategoryGuard  Category = "guard"
	CategoryAPI    Category = "api"
	CategoryLive   Category = "live"
	CategoryCLI    Category = "cli"
)

// DashError is a structured error with a stable code and a fix suggestion.
type DashError struct {
	// Code is a unique error identifier (e.g., "E200").
	Code string

	// Category is the error type (config, guard, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of this occurrence.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Status is the HTTP status used when the error ends a request.
	Status int

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *DashError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *DashError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a DashError with the same code.
func (e *DashError) Is(target error) bool {
	t, ok := target.(*DashError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *DashError) WithSuggestion(s string) *DashError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *DashError) WithDetail(d string) *DashError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *DashError) Wrap(err error) *DashError {
	e.Wrapped = err
	return e
}

// HTTPStatus returns the status for the error, 500 when none is registered.
func (e *DashError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// New creates a DashError from a registered error code.
func New(code string) *DashError {
	template, ok := registry[code]
	if !ok {
		return &DashError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &DashError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		Status:     template.Status,
	}
}

// Newf creates a new DashError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *DashError {
	return &DashError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in a DashError with the given code unless it already
// is one.
func FromError(err error, code string) *DashError {
	if err == nil {
		return nil
	}
	var de *DashError
	if stderrors.As(err, &de) {
		return de
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first DashError in err's chain.
func CodeOf(err error) string {
	var de *DashError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}
