package handler

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const (
	immutableCache = "public, max-age=31536000, immutable"
	revalidate     = "no-cache"
)

// StaticHandler serves the built single-page site. Hashed files under
// assets/ are cached forever; everything else is revalidated. HTML
// navigations to unknown paths receive the root document so client-side
// routes work offline and on reload.
type StaticHandler struct {
	fsys fs.FS
}

// NewStaticHandler creates a StaticHandler rooted at fsys.
func NewStaticHandler(fsys fs.FS) *StaticHandler {
	return &StaticHandler{fsys: fsys}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}

	if fi, err := fs.Stat(h.fsys, name); err == nil {
		if fi.IsDir() {
			name = path.Join(name, "index.html")
			if _, err := fs.Stat(h.fsys, name); err == nil {
				h.serve(w, r, name)
				return
			}
		} else {
			h.serve(w, r, name)
			return
		}
	}

	if isNavigation(r) {
		h.serve(w, r, "index.html")
		return
	}
	writeError(w, http.StatusNotFound, "not_found")
}

func (h *StaticHandler) serve(w http.ResponseWriter, r *http.Request, name string) {
	if strings.HasPrefix(name, "assets/") {
		w.Header().Set("Cache-Control", immutableCache)
	} else {
		w.Header().Set("Cache-Control", revalidate)
	}
	http.ServeFileFS(w, r, h.fsys, name)
}

// isNavigation reports whether r is a browser page load rather than a
// request for a file such as an image or script.
func isNavigation(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html") && path.Ext(r.URL.Path) == ""
}
