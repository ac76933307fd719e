package http

import (
	"net/http"
	"path/filepath"
	"strings"
)

// Router dispatches each request to exactly one of three destinations,
// decided once per request before any body is read:
//
//   - paths under the protected prefix -> the proxy engine;
//   - paths containing a '.' (the file-extension heuristic) -> static files;
//   - everything else -> the SPA entry page, served as a static file, so
//     client-side routes resolve inside the single-page app.
type Router struct {
	protectedPrefix string
	staticDir       string
	spaPage         string
	proxy           http.Handler
	static          http.Handler // nil when no static dir is configured
}

// NewRouter creates a Router. staticDir may be empty, in which case
// non-protected paths return 404.
func NewRouter(protectedPrefix, staticDir, spaPage string, proxy http.Handler) *Router {
	r := &Router{
		protectedPrefix: protectedPrefix,
		staticDir:       staticDir,
		spaPage:         spaPage,
		proxy:           proxy,
	}
	if staticDir != "" {
		r.static = http.FileServer(http.Dir(staticDir))
	}
	return r
}

// ServeHTTP implements the dispatch decision.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if strings.HasPrefix(path, rt.protectedPrefix) {
		rt.proxy.ServeHTTP(w, r)
		return
	}

	if rt.static == nil {
		http.NotFound(w, r)
		return
	}

	if !strings.Contains(path, ".") {
		// Client-side route: serve the SPA entry page directly. ServeFile is
		// used rather than a URL rewrite because FileServer would redirect a
		// request for the index page back to the directory root.
		http.ServeFile(w, r, filepath.Join(rt.staticDir, rt.spaPage))
		return
	}

	rt.static.ServeHTTP(w, r)
}
