package models

import "github.com/google/uuid"

// Where a resolved branding came from.
const (
	SourceDomain       = "domain"
	SourceOrganization = "organization"
)

// ResolvedBranding is the branding in effect for one request.
type ResolvedBranding struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Source         string    `json:"source"`
	// CanonicalDomain is set only when the organization's custom domain is verified.
	CanonicalDomain string   `json:"canonical_domain,omitempty"`
	Branding        Branding `json:"branding"`
}

// NewResolvedBranding snapshots cfg. CanonicalDomain is filled only for an
// active config with a verified domain.
func NewResolvedBranding(cfg *WhitelabelConfig, source string) *ResolvedBranding {
	rb := &ResolvedBranding{
		OrganizationID: cfg.OrganizationID,
		Source:         source,
		Branding:       cfg.Branding.Clone(),
	}
	if cfg.Active && cfg.CustomDomainVerified && cfg.CustomDomain != "" {
		rb.CanonicalDomain = cfg.CustomDomain
	}
	return rb
}

// Clone returns a deep copy; nil stays nil.
func (r *ResolvedBranding) Clone() *ResolvedBranding {
	if r == nil {
		return nil
	}
	c := *r
	c.Branding = r.Branding.Clone()
	return &c
}
