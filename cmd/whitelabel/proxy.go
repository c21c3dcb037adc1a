package main

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// newProxy forwards requests to the upstream application. The original
// Host is kept so the upstream sees the tenant's domain.
func newProxy(target *url.URL, log *slog.Logger) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
			r.Out.Host = r.In.Host
			// Responses are rewritten on the way back; they must arrive uncompressed.
			r.Out.Header.Del("Accept-Encoding")
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.ErrorContext(r.Context(), "upstream request failed",
				slog.String("host", r.Host),
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}
