// Package enforcer keeps authenticated users of an organization with a
// verified custom domain on that domain.
package enforcer

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/pkg/hostrouter"
)

// Redirectable reports whether requests with method may be redirected.
func Redirectable(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// Decide returns the redirect target for a request made by orgID, and
// whether a redirect is due. home must be orgID's own branding, not the
// branding resolved for the host: a user of one organization visiting
// another tenant's domain is sent to the domain of their own organization.
// Only GET and HEAD requests arriving on a host other than the verified
// domain are redirected.
func Decide(method, host, requestURI string, orgID uuid.UUID, home *models.ResolvedBranding) (string, bool) {
	if orgID == uuid.Nil || home == nil || home.OrganizationID != orgID || home.CanonicalDomain == "" {
		return "", false
	}
	if !Redirectable(method) {
		return "", false
	}

	canonical := hostrouter.NormalizeHost(home.CanonicalDomain)
	if canonical == "" || hostrouter.NormalizeHost(host) == canonical {
		return "", false
	}

	if !strings.HasPrefix(requestURI, "/") {
		requestURI = "/" + requestURI
	}
	return "https://" + canonical + requestURI, true
}
