package hostrouter

import (
	"net/http"
	"strings"
)

// Routes maps host patterns to HTTP handlers.
// Exact: "admin.platform.com"
// Wildcard: "*.platform.com"
type Routes map[string]http.Handler

// Router routes requests based on the Host header.
// Exact patterns win over wildcards; unmatched hosts go to the fallback.
type Router struct {
	exact    map[string]http.Handler
	wildcard map[string]http.Handler // keyed by the domain after "*."
	fallback http.Handler
}

// New creates a host router from the given routes.
// A nil fallback responds with 404.
func New(routes Routes, fallback http.Handler) *Router {
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}
	r := &Router{
		exact:    make(map[string]http.Handler, len(routes)),
		wildcard: make(map[string]http.Handler),
		fallback: fallback,
	}

	for pattern, handler := range routes {
		if domain, ok := strings.CutPrefix(strings.TrimSpace(pattern), "*."); ok {
			if domain = NormalizeHost(domain); domain != "" {
				r.wildcard[domain] = handler
			}
			continue
		}
		if pattern = NormalizeHost(pattern); pattern != "" {
			r.exact[pattern] = handler
		}
	}

	return r
}

// ServeHTTP routes requests based on the Host header.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Handler(req.Host).ServeHTTP(w, req)
}

// Handler returns the handler serving host.
func (r *Router) Handler(host string) http.Handler {
	host = NormalizeHost(host)
	if h, ok := r.exact[host]; ok {
		return h
	}
	// One label only: "*.platform.com" does not serve "a.b.platform.com".
	if _, domain, ok := strings.Cut(host, "."); ok {
		if h, ok := r.wildcard[domain]; ok {
			return h
		}
	}
	return r.fallback
}
