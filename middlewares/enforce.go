package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/whitelabel/internal"
	"github.com/dmitrymomot/whitelabel/internal/enforcer"
	"github.com/dmitrymomot/whitelabel/internal/models"
)

// OrganizationResolver returns an organization's own branding regardless
// of the request host. *resolver.Resolver satisfies it.
type OrganizationResolver interface {
	Organization(ctx context.Context, orgID uuid.UUID) *models.ResolvedBranding
}

// Enforce sends authenticated users of an organization with a verified
// custom domain to that domain with a 301. It must run after Branding.
// When the host resolved to another organization's branding, r supplies
// the user's own.
func Enforce(r OrganizationResolver) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			req := c.Request()
			orgID, ok := GetOrgID(c)
			if !ok || orgID == uuid.Nil || !enforcer.Redirectable(req.Method) {
				return next(c)
			}

			home := GetBranding(c)
			if home == nil || home.OrganizationID != orgID {
				home = r.Organization(c.Context(), orgID)
			}

			target, ok := enforcer.Decide(req.Method, req.Host, req.URL.RequestURI(), orgID, home)
			if !ok {
				return next(c)
			}
			c.LogDebug("redirecting to canonical domain", slog.String("target", target))
			return c.Redirect(http.StatusMovedPermanently, target)
		}
	}
}
