package middlewares

import (
	"net/http"

	"github.com/dmitrymomot/whitelabel/internal"
	"github.com/dmitrymomot/whitelabel/internal/injector"
	"github.com/dmitrymomot/whitelabel/internal/metrics"
)

type injectConfig struct {
	metrics  *metrics.Metrics
	maxBytes int64
}

// InjectOption configures Inject.
type InjectOption func(*injectConfig)

// WithInjectMaxBytes caps the size of a body held for injection.
func WithInjectMaxBytes(n int64) InjectOption {
	return func(cfg *injectConfig) {
		if n > 0 {
			cfg.maxBytes = n
		}
	}
}

// WithInjectMetrics counts performed injections.
func WithInjectMetrics(m *metrics.Metrics) InjectOption {
	return func(cfg *injectConfig) {
		cfg.metrics = m
	}
}

// Inject splices the request's branding into successful HTML and JSON
// responses. It must run after Branding; requests without branding pass
// through unbuffered.
func Inject(opts ...InjectOption) internal.Middleware {
	cfg := &injectConfig{maxBytes: internal.DefaultBufferLimit}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			rb := GetBranding(c)
			if rb == nil {
				return next(c)
			}

			b := rb.Branding.Clone()
			w := c.ResponseWriter()
			w.SetBufferLimit(cfg.maxBytes)
			w.AddTransformer(internal.BodyTransformer{
				Match: func(status int, h http.Header) bool {
					return status == http.StatusOK && injector.Kind(h.Get("Content-Type")) != ""
				},
				Transform: func(h http.Header, body []byte) []byte {
					out, kind := injector.Apply(h.Get("Content-Type"), body, &b)
					if kind != "" {
						cfg.metrics.Injection(kind)
					}
					return out
				},
			})
			return next(c)
		}
	}
}
