package verifier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/internal/store"
	"github.com/dmitrymomot/whitelabel/internal/verifier"
)

func TestNormalizeDomain(t *testing.T) {
	t.Parallel()

	v := verifier.New(nil, nil, nil, verifier.WithBaseDomain("platform.com"))

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Custom.Example.COM.", want: "custom.example.com"},
		{in: " brand.example.org ", want: "brand.example.org"},
		{in: "bücher.example", want: "xn--bcher-kva.example"},
		{in: "example", wantErr: true},
		{in: "", wantErr: true},
		{in: "127.0.0.1", wantErr: true},
		{in: "app.localhost", wantErr: true},
		{in: "platform.com", wantErr: true},
		{in: "tenant.platform.com", wantErr: true},
		{in: "https://example.com/path", wantErr: true},
		{in: "*.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := v.NormalizeDomain(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, verifier.ErrInvalidDomain)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSetDomain(t *testing.T) {
	t.Parallel()

	t.Run("issues records and resets verification", func(t *testing.T) {
		t.Parallel()

		orgID := uuid.New()
		s := newFakeStore()
		inv := &recordingInvalidator{}
		v := newVerifier(s, nil, nil, verifier.WithInvalidator(inv))

		cfg, err := v.SetDomain(context.Background(), orgID, "Custom.Example.com")
		require.NoError(t, err)
		require.Equal(t, domain, cfg.CustomDomain)
		require.False(t, cfg.CustomDomainVerified)

		cname, ok := cfg.Record(models.RecordCNAME)
		require.True(t, ok)
		require.Equal(t, models.DNSRecord{Type: models.RecordCNAME, Name: domain, Value: routing}, cname)

		txt, ok := cfg.Record(models.RecordTXT)
		require.True(t, ok)
		require.Equal(t, txtName, txt.Name)
		require.Len(t, txt.Value, 26)

		require.Equal(t, [][]string{{orgID.String(), "", domain}}, inv.calls)
	})

	t.Run("token survives domain change", func(t *testing.T) {
		t.Parallel()

		cfg := scenarioConfig()
		cfg.CustomDomainVerified = true
		s := newFakeStore(cfg)
		inv := &recordingInvalidator{}
		v := newVerifier(s, nil, nil, verifier.WithInvalidator(inv))

		updated, err := v.SetDomain(context.Background(), cfg.OrganizationID, "brand.example.com")
		require.NoError(t, err)
		require.False(t, updated.CustomDomainVerified)

		tok, ok := updated.ExpectedTXT()
		require.True(t, ok)
		require.Equal(t, token, tok)

		txt, _ := updated.Record(models.RecordTXT)
		require.Equal(t, "_platform-verify.brand.example.com", txt.Name)
		require.Equal(t, [][]string{{cfg.OrganizationID.String(), domain, "brand.example.com"}}, inv.calls)
	})

	t.Run("empty releases domain", func(t *testing.T) {
		t.Parallel()

		cfg := scenarioConfig()
		s := newFakeStore(cfg)
		v := newVerifier(s, nil, nil)

		updated, err := v.SetDomain(context.Background(), cfg.OrganizationID, "  ")
		require.NoError(t, err)
		require.Empty(t, updated.CustomDomain)
		require.Empty(t, updated.CustomDomainDNS)
	})

	t.Run("invalid domain never reaches store", func(t *testing.T) {
		t.Parallel()

		s := newFakeStore()
		v := newVerifier(s, nil, nil)
		_, err := v.SetDomain(context.Background(), uuid.New(), "localhost")
		require.ErrorIs(t, err, verifier.ErrInvalidDomain)
		require.Empty(t, s.configs)
	})

	t.Run("domain taken passes through", func(t *testing.T) {
		t.Parallel()

		s := newFakeStore()
		s.setErr = store.ErrDomainTaken
		v := newVerifier(s, nil, nil)
		_, err := v.SetDomain(context.Background(), uuid.New(), domain)
		require.ErrorIs(t, err, store.ErrDomainTaken)
		require.NotErrorIs(t, err, verifier.ErrStore)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		s := newFakeStore()
		s.getErr = errors.New("timeout")
		v := newVerifier(s, nil, nil)
		_, err := v.SetDomain(context.Background(), uuid.New(), domain)
		require.ErrorIs(t, err, verifier.ErrStore)
	})
}
