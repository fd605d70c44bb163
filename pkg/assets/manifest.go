// Package assets serves the dashboard's static files under fingerprinted
// names.
//
// At startup Build hashes every file of an fs.FS and records a manifest
// mapping source names to fingerprinted ones:
//
//	{
//	  "live.js": "live.a1b2c3d4.js",
//	  "app.css": "app.e5f6a7b8.css"
//	}
//
// Templates resolve names through a Resolver, and Handler serves both forms,
// with long-lived caching for the fingerprinted one:
//
//	manifest, _ := assets.Build(staticFS)
//	resolver := assets.NewResolver(manifest, "/static/")
//	resolver.Asset("live.js") // "/static/live.a1b2c3d4.js"
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"path"
	"strings"
	"sync"
)

// hashLen is the number of hex characters of the content hash kept in
// fingerprinted names.
const hashLen = 8

// Manifest holds the mapping from source asset paths to fingerprinted paths.
// It is safe for concurrent use.
type Manifest struct {
	mu      sync.RWMutex
	entries map[string]string
	reverse map[string]string
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]string),
		reverse: make(map[string]string),
	}
}

// Build hashes every regular file of fsys into a new manifest.
func Build(fsys fs.FS) (*Manifest, error) {
	m := NewManifest()
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		m.Set(p, Fingerprint(p, hex.EncodeToString(sum[:])[:hashLen]))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Fingerprint inserts hash before the extension of p:
// "js/live.js" becomes "js/live.<hash>.js".
func Fingerprint(p, hash string) string {
	dir, base := path.Split(p)
	ext := path.Ext(base)
	return dir + strings.TrimSuffix(base, ext) + "." + hash + ext
}

// Resolve returns the fingerprinted path for the given source path.
// If not found, returns the original path unchanged.
func (m *Manifest) Resolve(source string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if resolved, ok := m.entries[source]; ok {
		return resolved
	}
	return source
}

// Source maps a fingerprinted path back to its source path.
func (m *Manifest) Source(resolved string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	source, ok := m.reverse[resolved]
	return source, ok
}

// Set adds or updates an entry in the manifest.
func (m *Manifest) Set(source, resolved string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[source]; ok {
		delete(m.reverse, old)
	}
	m.entries[source] = resolved
	m.reverse[resolved] = source
}

// Len returns the number of entries in the manifest.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
