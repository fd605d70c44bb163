package api

import (
	"encoding/json"
	"sort"
	"strings"
)

// Response codes with special meaning.
const (
	CodeValidation = "42200"
	CodeUnknown    = "50000"
)

// MessageUnknown is used when a failure response carries no message.
const MessageUnknown = "Unknown error occurred"

// Page is the envelope of paginated list endpoints.
type Page[T any] struct {
	Items       []T `json:"items"`
	CurrentPage Int `json:"currentPage"`
	LastPage    Int `json:"lastPage"`
	PerPage     Int `json:"perPage"`
	Total       Int `json:"total"`
}

// List is the envelope of unpaginated option lists.
type List[T any] struct {
	Items []T `json:"items"`
}

// Message is the envelope of mutation endpoints.
type Message struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}

// FieldErrors maps request field names to messages. The server sends either
// a string or a list of strings per field; only the first message is kept.
type FieldErrors map[string]string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FieldErrors) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(FieldErrors, len(raw))
	for field, msg := range raw {
		var one string
		if err := json.Unmarshal(msg, &one); err == nil {
			out[field] = one
			continue
		}
		var many []string
		if err := json.Unmarshal(msg, &many); err == nil && len(many) > 0 {
			out[field] = many[0]
		}
	}
	*f = out
	return nil
}

// Fields returns the field names in sorted order.
func (f FieldErrors) Fields() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Error is a failure reported by the remote service.
type Error struct {
	Status          int         `json:"-"`
	ResponseCode    string      `json:"responseCode"`
	ResponseMessage string      `json:"responseMessage"`
	Errors          FieldErrors `json:"errors,omitempty"`
}

func (e *Error) Error() string {
	return e.ResponseMessage
}

// IsValidation reports whether e carries per-field validation messages.
func (e *Error) IsValidation() bool {
	return e.ResponseCode == CodeValidation && len(e.Errors) > 0
}

// FieldError returns the message for field, or "".
func (e *Error) FieldError(field string) string {
	return e.Errors[field]
}

// FromResponse builds an Error from a failure response body. Bodies that are
// not JSON envelopes produce an Error with the default code and message.
func FromResponse(status int, body []byte) *Error {
	e := &Error{Status: status}
	if err := json.Unmarshal(body, e); err != nil {
		e.ResponseCode = ""
		e.ResponseMessage = ""
		e.Errors = nil
	}
	if e.ResponseCode == "" {
		e.ResponseCode = CodeUnknown
	}
	if strings.TrimSpace(e.ResponseMessage) == "" {
		e.ResponseMessage = MessageUnknown
	}
	return e
}
