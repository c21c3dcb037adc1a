package verifier

import (
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/whitelabel/internal/metrics"
)

const defaultCheckTimeout = 5 * time.Second

// Option configures a Verifier.
type Option func(*Verifier)

// WithPlatformName sets the label used in the TXT challenge name,
// _<platform>-verify.<domain>.
func WithPlatformName(name string) Option {
	return func(v *Verifier) {
		if name = strings.TrimSpace(name); name != "" {
			v.platform = name
		}
	}
}

// WithRoutingDomain sets the CNAME target tenants are told to use. It is
// the fallback when a config carries no CNAME record of its own.
func WithRoutingDomain(domain string) Option {
	return func(v *Verifier) {
		v.routingDomain = strings.TrimSpace(domain)
	}
}

// WithBaseDomain rejects the platform's own domain and its subdomains as
// custom domains.
func WithBaseDomain(domain string) Option {
	return func(v *Verifier) {
		v.baseDomain = strings.TrimSpace(domain)
	}
}

// WithCheckTimeout bounds each of the three checks.
func WithCheckTimeout(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.checkTimeout = d
		}
	}
}

// WithRequireTXT makes a missing TXT challenge fail verification instead of
// passing vacuously.
func WithRequireTXT(required bool) Option {
	return func(v *Verifier) {
		v.requireTXT = required
	}
}

// WithApexFallback toggles accepting an address record when the domain has
// no CNAME. Enabled by default.
func WithApexFallback(allowed bool) Option {
	return func(v *Verifier) {
		v.apexFallback = allowed
	}
}

// WithInvalidator is notified after every persisted verdict and domain change.
func WithInvalidator(inv Invalidator) Option {
	return func(v *Verifier) {
		v.invalidator = inv
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Verifier) {
		v.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(v *Verifier) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithClock overrides the time source stamped on reports.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}
