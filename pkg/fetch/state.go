package fetch

import (
	"fmt"
	"net/http"
	"strings"
)

// State is the observable state of a Resource.
//
// While Loading is true both Data and Err are nil. Once the request settles
// exactly one of Data and Err is set.
type State[T any] struct {
	Data    *T
	Loading bool
	Err     error
}

// Ready reports whether data has been loaded.
func (s State[T]) Ready() bool {
	return !s.Loading && s.Data != nil
}

// Failed reports whether the last request failed.
func (s State[T]) Failed() bool {
	return !s.Loading && s.Err != nil
}

// Message returns the error message, or "" when there is no error.
func (s State[T]) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// StatusError is the error stored when the server answers with a non-2xx
// status. The response body is never decoded as data.
type StatusError struct {
	StatusCode int
	StatusText string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.StatusCode, e.StatusText)
}

// newStatusError derives a human-readable status text from the response,
// falling back to the standard text for the code.
func newStatusError(resp *http.Response, body []byte) *StatusError {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		StatusText: text,
		Body:       body,
	}
}
