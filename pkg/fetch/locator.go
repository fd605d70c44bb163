package fetch

import (
	"bytes"
	"net/http"
)

// Locator identifies a request. Two locators are equal when their method,
// URL and body match; headers do not participate in identity.
type Locator struct {
	Method string
	URL    string
	Body   []byte
	Header http.Header
}

// Get returns a GET locator for url.
func Get(url string) Locator {
	return Locator{Method: http.MethodGet, URL: url}
}

// Equal reports whether l and o describe the same request.
func (l Locator) Equal(o Locator) bool {
	return l.method() == o.method() && l.URL == o.URL && bytes.Equal(l.Body, o.Body)
}

// IsZero reports whether the locator has no URL.
func (l Locator) IsZero() bool {
	return l.URL == ""
}

func (l Locator) method() string {
	if l.Method == "" {
		return http.MethodGet
	}
	return l.Method
}
