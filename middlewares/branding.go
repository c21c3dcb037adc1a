package middlewares

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/whitelabel/internal"
	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/internal/resolver"
	"github.com/dmitrymomot/whitelabel/pkg/logger"
)

// DefaultIdentityHeader carries the authenticated organization id, set by
// the auth proxy in front of the service.
const DefaultIdentityHeader = "X-Organization-ID"

// BrandingResolver resolves the branding for a host and an optional
// organization. It never fails; nil means no branding applies.
type BrandingResolver interface {
	Resolve(ctx context.Context, host string, orgID uuid.UUID) *models.ResolvedBranding
}

// OrgExtractor returns the authenticated organization for the request.
type OrgExtractor func(c internal.Context) (uuid.UUID, bool)

// HeaderOrgExtractor reads the organization id from a trusted request
// header. Malformed values count as unauthenticated.
func HeaderOrgExtractor(header string) OrgExtractor {
	return func(c internal.Context) (uuid.UUID, bool) {
		v := c.Header(header)
		if v == "" {
			return uuid.Nil, false
		}
		orgID, err := uuid.Parse(v)
		if err != nil || orgID == uuid.Nil {
			return uuid.Nil, false
		}
		return orgID, true
	}
}

type orgIDKey struct{}

type brandingConfig struct {
	extractor OrgExtractor
}

// BrandingOption configures Branding.
type BrandingOption func(*brandingConfig)

// WithOrgExtractor replaces the default identity header lookup.
func WithOrgExtractor(fn OrgExtractor) BrandingOption {
	return func(cfg *brandingConfig) {
		if fn != nil {
			cfg.extractor = fn
		}
	}
}

// Branding resolves the request's branding and stores it, together with
// the authenticated organization id, in the request context.
func Branding(r BrandingResolver, opts ...BrandingOption) internal.Middleware {
	cfg := &brandingConfig{extractor: HeaderOrgExtractor(DefaultIdentityHeader)}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			orgID, ok := cfg.extractor(c)
			if ok {
				c.Set(orgIDKey{}, orgID)
			} else {
				orgID = uuid.Nil
			}

			if rb := r.Resolve(c.Context(), c.Request().Host, orgID); rb != nil {
				c.SetContext(resolver.WithBranding(c.Context(), rb))
			}
			return next(c)
		}
	}
}

// GetBranding returns the branding resolved for the request, or nil.
func GetBranding(c internal.Context) *models.ResolvedBranding {
	return resolver.FromContext(c)
}

// GetOrgID returns the authenticated organization id.
func GetOrgID(c internal.Context) (uuid.UUID, bool) {
	return OrgIDFromContext(c)
}

// OrgIDFromContext returns the organization id stored by Branding.
func OrgIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	orgID, ok := ctx.Value(orgIDKey{}).(uuid.UUID)
	return orgID, ok
}

// OrgIDExtractor adds "org_id" to every log record of an authenticated
// request.
func OrgIDExtractor() logger.ContextExtractor {
	return logger.StringExtractor("org_id", func(ctx context.Context) (string, bool) {
		orgID, ok := OrgIDFromContext(ctx)
		if !ok {
			return "", false
		}
		return orgID.String(), true
	})
}
