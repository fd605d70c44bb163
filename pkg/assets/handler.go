package assets

import (
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
)

// Cache-Control values.
const (
	cacheImmutable   = "public, max-age=31536000, immutable"
	cacheRevalidate  = "public, max-age=3600, must-revalidate"
	cacheDevelopment = "no-store, no-cache, must-revalidate"
)

// Handler serves the files of an fs.FS by source or fingerprinted name.
type Handler struct {
	fsys     fs.FS
	manifest *Manifest
	noCache  bool
	modTime  time.Time
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithNoCache disables caching. Used in development.
func WithNoCache() HandlerOption {
	return func(h *Handler) {
		h.noCache = true
	}
}

// NewHandler serves fsys. Mount it with http.StripPrefix so request paths
// are relative to the asset root.
func NewHandler(fsys fs.FS, m *Manifest, opts ...HandlerOption) *Handler {
	h := &Handler{
		fsys:     fsys,
		manifest: m,
		modTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	rel, ok := cleanPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	immutable := false
	if source, found := h.manifest.Source(rel); found {
		rel = source
		immutable = true
	}

	f, err := h.fsys.Open(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		http.Error(w, "asset not seekable", http.StatusInternalServerError)
		return
	}

	switch {
	case h.noCache:
		w.Header().Set("Cache-Control", cacheDevelopment)
	case immutable:
		w.Header().Set("Cache-Control", cacheImmutable)
	default:
		w.Header().Set("Cache-Control", cacheRevalidate)
	}

	// Embedded files carry no modification time.
	mod := info.ModTime()
	if mod.IsZero() {
		mod = h.modTime
	}
	http.ServeContent(w, r, rel, mod, rs)
}

// cleanPath returns a sanitized relative path for an asset request. It
// rejects traversal and absolute-path tricks so a request cannot escape the
// asset root.
func cleanPath(urlPath string) (string, bool) {
	rel := strings.TrimPrefix(urlPath, "/")
	if rel == "" {
		return "", false
	}
	// %00 and platform separators.
	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") {
		return "", false
	}
	// "/static//etc/passwd" leaves a leading slash after stripping.
	if strings.HasPrefix(rel, "/") {
		return "", false
	}
	// Reject dot-segments before cleaning so traversal is not cleaned away.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || strings.HasPrefix(clean, "../") || !fs.ValidPath(clean) {
		return "", false
	}
	return clean, true
}
