package models

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DNS record types a tenant is asked to create.
const (
	RecordCNAME = "CNAME"
	RecordTXT   = "TXT"
)

// DNSRecord is a record the tenant must publish for its custom domain.
type DNSRecord struct {
	Type  string `json:"type" yaml:"type"`
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// WhitelabelConfig is the per-organization domain and branding configuration.
type WhitelabelConfig struct {
	ID                     string      `json:"id"`
	OrganizationID         uuid.UUID   `json:"organization_id"`
	CustomDomain           string      `json:"custom_domain,omitempty"`
	CustomDomainVerified   bool        `json:"custom_domain_verified"`
	CustomDomainVerifiedAt *time.Time  `json:"custom_domain_verified_at,omitempty"`
	LastVerificationAt     *time.Time  `json:"last_verification_at,omitempty"`
	LastVerificationError  string      `json:"last_verification_error,omitempty"`
	CustomDomainDNS        []DNSRecord `json:"custom_domain_dns,omitempty"`
	Branding               Branding    `json:"branding"`
	Active                 bool        `json:"active"`
	CreatedAt              time.Time   `json:"created_at"`
	UpdatedAt              time.Time   `json:"updated_at"`
}

// ExpectedCNAME returns the CNAME target the tenant was asked to publish.
func (c *WhitelabelConfig) ExpectedCNAME() (string, bool) {
	r, ok := c.Record(RecordCNAME)
	return r.Value, ok
}

// ExpectedTXT returns the configured ownership token. Absent means the
// tenant was never issued one.
func (c *WhitelabelConfig) ExpectedTXT() (string, bool) {
	r, ok := c.Record(RecordTXT)
	return r.Value, ok
}

// Record returns the first expected record of the given type with a
// non-empty value, trimmed.
func (c *WhitelabelConfig) Record(typ string) (DNSRecord, bool) {
	for _, r := range c.CustomDomainDNS {
		if !strings.EqualFold(r.Type, typ) {
			continue
		}
		r.Name, r.Value = strings.TrimSpace(r.Name), strings.TrimSpace(r.Value)
		if r.Value != "" {
			return r, true
		}
	}
	return DNSRecord{}, false
}

// Branding holds the tenant's visual identity.
type Branding struct {
	PrimaryColor    string `json:"primary_color,omitempty"`
	SecondaryColor  string `json:"secondary_color,omitempty"`
	AccentColor     string `json:"accent_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	TextColor       string `json:"text_color,omitempty"`

	LogoURL     string `json:"logo_url,omitempty"`
	LogoDarkURL string `json:"logo_dark_url,omitempty"`
	FaviconURL  string `json:"favicon_url,omitempty"`

	EmailSenderName    string `json:"email_sender_name,omitempty"`
	EmailSenderAddress string `json:"email_sender_address,omitempty"`
	EmailLogoURL       string `json:"email_logo_url,omitempty"`
	EmailFooter        string `json:"email_footer,omitempty"`

	CustomCSS string `json:"custom_css,omitempty"`
	CustomJS  string `json:"custom_js,omitempty"`

	ProductName   string `json:"product_name,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
	Tagline       string `json:"tagline,omitempty"`
	HideWatermark bool   `json:"hide_watermark"`

	Fonts map[string]string `json:"fonts,omitempty"`
}

// Clone returns a deep copy.
func (b Branding) Clone() Branding {
	b.Fonts = maps.Clone(b.Fonts)
	return b
}

// FontKeys returns the font map keys in a stable order.
func (b Branding) FontKeys() []string {
	return slices.Sorted(maps.Keys(b.Fonts))
}

// PublicBranding is the subset of Branding that may appear in API payloads.
// Raw CSS and JS never belong here.
type PublicBranding struct {
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	LogoURL        string `json:"logoUrl,omitempty"`
	ProductName    string `json:"productName,omitempty"`
	CompanyName    string `json:"companyName,omitempty"`
	HideWatermark  bool   `json:"hideWatermark"`
}

// Public returns the allow-listed subset of b.
func (b Branding) Public() PublicBranding {
	return PublicBranding{
		PrimaryColor:   b.PrimaryColor,
		SecondaryColor: b.SecondaryColor,
		LogoURL:        b.LogoURL,
		ProductName:    b.ProductName,
		CompanyName:    b.CompanyName,
		HideWatermark:  b.HideWatermark,
	}
}
