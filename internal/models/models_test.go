package models_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/whitelabel/internal/models"
)

func TestExpectedRecords(t *testing.T) {
	t.Parallel()

	cfg := &models.WhitelabelConfig{CustomDomainDNS: []models.DNSRecord{
		{Type: "cname", Name: "custom.example.com", Value: " app.platform.com "},
		{Type: models.RecordTXT, Name: "_platform-verify.custom.example.com", Value: "tok123"},
	}}

	cname, ok := cfg.ExpectedCNAME()
	require.True(t, ok)
	require.Equal(t, "app.platform.com", cname)

	txt, ok := cfg.ExpectedTXT()
	require.True(t, ok)
	require.Equal(t, "tok123", txt)

	empty := &models.WhitelabelConfig{CustomDomainDNS: []models.DNSRecord{{Type: models.RecordTXT, Value: "  "}}}
	_, ok = empty.ExpectedTXT()
	require.False(t, ok)
	_, ok = empty.ExpectedCNAME()
	require.False(t, ok)
}

func TestNewResolvedBranding(t *testing.T) {
	t.Parallel()

	orgID := uuid.New()
	base := models.WhitelabelConfig{
		OrganizationID: orgID,
		CustomDomain:   "custom.example.com",
		Active:         true,
		Branding:       models.Branding{ProductName: "Acme", Fonts: map[string]string{"body": "Inter"}},
	}

	tests := []struct {
		name          string
		mutate        func(*models.WhitelabelConfig)
		wantCanonical string
	}{
		{name: "verified", mutate: func(c *models.WhitelabelConfig) { c.CustomDomainVerified = true }, wantCanonical: "custom.example.com"},
		{name: "unverified", mutate: func(*models.WhitelabelConfig) {}},
		{name: "inactive", mutate: func(c *models.WhitelabelConfig) { c.CustomDomainVerified = true; c.Active = false }},
		{name: "no domain", mutate: func(c *models.WhitelabelConfig) { c.CustomDomainVerified = true; c.CustomDomain = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := base
			cfg.Branding = base.Branding.Clone()
			tt.mutate(&cfg)

			rb := models.NewResolvedBranding(&cfg, models.SourceOrganization)
			require.Equal(t, orgID, rb.OrganizationID)
			require.Equal(t, models.SourceOrganization, rb.Source)
			require.Equal(t, tt.wantCanonical, rb.CanonicalDomain)

			cfg.Branding.Fonts["body"] = "Comic Sans"
			require.Equal(t, "Inter", rb.Branding.Fonts["body"])
		})
	}
}

func TestResolvedBrandingClone(t *testing.T) {
	t.Parallel()

	var nilRB *models.ResolvedBranding
	require.Nil(t, nilRB.Clone())

	rb := &models.ResolvedBranding{Source: models.SourceDomain, Branding: models.Branding{Fonts: map[string]string{"h": "Lato"}}}
	c := rb.Clone()
	c.Branding.Fonts["h"] = "Arial"
	c.Source = models.SourceOrganization
	require.Equal(t, "Lato", rb.Branding.Fonts["h"])
	require.Equal(t, models.SourceDomain, rb.Source)
}

func TestFontKeysSorted(t *testing.T) {
	t.Parallel()

	b := models.Branding{Fonts: map[string]string{"heading": "a", "body": "b", "mono": "c"}}
	require.Equal(t, []string{"body", "heading", "mono"}, b.FontKeys())
}

func TestErrorSummary(t *testing.T) {
	t.Parallel()

	r := &models.VerificationReport{
		CNAME: models.CNAMEResult{Valid: true},
		TXT:   models.TXTResult{Valid: false},
		SSL:   models.SSLResult{Valid: false, Error: "tlsverify: certificate expired"},
	}
	require.Equal(t, "txt: failed; ssl: tlsverify: certificate expired", r.ErrorSummary())

	r.TXT.Valid, r.SSL.Valid = true, true
	require.Empty(t, r.ErrorSummary())

	r.Conflict = "verified by another organization"
	require.Equal(t, "owner: verified by another organization", r.ErrorSummary())
}

func TestPublicOmitsCode(t *testing.T) {
	t.Parallel()

	b := models.Branding{
		PrimaryColor:  "#123456",
		ProductName:   "Acme",
		CustomCSS:     "body{}",
		CustomJS:      "alert(1)",
		HideWatermark: true,
	}
	data, err := json.Marshal(b.Public())
	require.NoError(t, err)
	require.JSONEq(t, `{"primaryColor":"#123456","productName":"Acme","hideWatermark":true}`, string(data))
}
