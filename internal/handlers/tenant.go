package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/whitelabel/internal"
	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/internal/resolver"
)

// Tenant serves the public, host-scoped branding endpoint.
type Tenant struct {
	mw []internal.Middleware
}

// TenantOption configures Tenant.
type TenantOption func(*Tenant)

// WithBrandingMiddleware wraps the branding endpoint, including its
// preflight route. Used for CORS.
func WithBrandingMiddleware(mw ...internal.Middleware) TenantOption {
	return func(t *Tenant) {
		t.mw = append(t.mw, mw...)
	}
}

// NewTenant creates the tenant handler.
func NewTenant(opts ...TenantOption) *Tenant {
	t := &Tenant{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tenant) Routes(r internal.Router) {
	r.GET("/branding", t.branding, t.mw...)
	r.OPTIONS("/branding", func(c internal.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, t.mw...)
}

// BrandingResponse is the public view of the request's branding. The
// allow-listed fields sit under the same "_branding" key that response
// injection uses, so the body is never injected twice.
type BrandingResponse struct {
	Branding        models.PublicBranding `json:"_branding"`
	OrganizationID  uuid.UUID             `json:"organization_id"`
	Source          string                `json:"source"`
	CanonicalDomain string                `json:"canonical_domain,omitempty"`
}

func (t *Tenant) branding(c internal.Context) error {
	rb := resolver.FromContext(c)
	if rb == nil {
		return internal.ErrNotFound("No branding for this host", internal.WithErrorCode("no_branding"))
	}

	c.SetHeader("Cache-Control", "private, max-age=60")
	return c.JSON(http.StatusOK, BrandingResponse{
		Branding:        rb.Branding.Public(),
		OrganizationID:  rb.OrganizationID,
		Source:          rb.Source,
		CanonicalDomain: rb.CanonicalDomain,
	})
}
