package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/whitelabel/internal"
)

// corsMethods is fixed: public branding is read-only.
const corsMethods = "GET, HEAD, OPTIONS"

// BrandingCORS is the policy for the public branding endpoint. Branding is
// not a secret, so any origin may read it and credentials are never allowed.
type BrandingCORS struct {
	// Origins allowed to read branding. "*" allows any origin.
	Origins []string
	// Headers a preflight may ask for. The identity header belongs here when
	// tenant pages send it.
	Headers []string
	// MaxAge is how long browsers cache a preflight answer. Zero omits the
	// header.
	MaxAge time.Duration
}

// DefaultBrandingCORS allows any origin and caches preflights for 12 hours.
var DefaultBrandingCORS = BrandingCORS{
	Origins: []string{"*"},
	Headers: []string{"Origin", "Accept", "Content-Type", "X-Organization-ID"},
	MaxAge:  12 * time.Hour,
}

// CORSOption adjusts BrandingCORS.
type CORSOption func(*BrandingCORS)

// WithAllowOrigins restricts the origins allowed to read branding.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(p *BrandingCORS) { p.Origins = origins }
}

// WithAllowHeaders replaces the headers a preflight may request.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(p *BrandingCORS) { p.Headers = headers }
}

// WithMaxAge sets the preflight cache duration.
func WithMaxAge(d time.Duration) CORSOption {
	return func(p *BrandingCORS) { p.MaxAge = d }
}

// CORS lets browser code on tenant pages fetch branding from another
// origin. Preflights are answered here with 204; other requests get the
// allow-origin header and continue. Requests without an Origin, or from an
// origin outside the policy, pass through without CORS headers and the
// browser blocks the read.
func CORS(opts ...CORSOption) internal.Middleware {
	p := DefaultBrandingCORS
	for _, opt := range opts {
		opt(&p)
	}

	anyOrigin := slices.Contains(p.Origins, "*")
	allowHeaders := strings.Join(p.Headers, ", ")
	maxAge := strconv.Itoa(int(p.MaxAge.Seconds()))

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			origin := c.Header("Origin")
			if origin == "" || (!anyOrigin && !slices.Contains(p.Origins, origin)) {
				return next(c)
			}

			headers := c.Response().Header()
			headers.Add("Vary", "Origin")
			if anyOrigin {
				headers.Set("Access-Control-Allow-Origin", "*")
			} else {
				headers.Set("Access-Control-Allow-Origin", origin)
			}

			// chi never sees OPTIONS for the GET-only branding route.
			if c.Request().Method != http.MethodOptions {
				return next(c)
			}

			headers.Add("Vary", "Access-Control-Request-Method")
			headers.Add("Vary", "Access-Control-Request-Headers")
			headers.Set("Access-Control-Allow-Methods", corsMethods)
			headers.Set("Access-Control-Allow-Headers", allowHeaders)
			if p.MaxAge > 0 {
				headers.Set("Access-Control-Max-Age", maxAge)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}
