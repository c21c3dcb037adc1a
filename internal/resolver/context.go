package resolver

import (
	"context"

	"github.com/dmitrymomot/whitelabel/internal/models"
)

type brandingKey struct{}

// WithBranding stores rb in ctx.
func WithBranding(ctx context.Context, rb *models.ResolvedBranding) context.Context {
	return context.WithValue(ctx, brandingKey{}, rb)
}

// FromContext returns the branding resolved for the request, or nil.
func FromContext(ctx context.Context) *models.ResolvedBranding {
	rb, _ := ctx.Value(brandingKey{}).(*models.ResolvedBranding)
	return rb
}
