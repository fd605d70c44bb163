package assets

import "strings"

// Resolver maps a source asset name such as "app.css" to the URL the page
// should reference.
type Resolver interface {
	Asset(source string) string
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(source string) string

func (f ResolverFunc) Asset(source string) string { return f(source) }

// NewResolver returns URLs for the fingerprinted names recorded in m,
// joined onto prefix. Names missing from m resolve to themselves.
func NewResolver(m *Manifest, prefix string) Resolver {
	return ResolverFunc(func(source string) string {
		return joinURL(prefix, m.Resolve(source))
	})
}

// NewPassthroughResolver joins source names onto prefix unchanged, giving
// tests stable URLs.
func NewPassthroughResolver(prefix string) Resolver {
	return ResolverFunc(func(source string) string {
		return joinURL(prefix, source)
	})
}

func joinURL(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(name, "/")
}
