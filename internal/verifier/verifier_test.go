package verifier_test

import (
	"context"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/whitelabel/internal/metrics"
	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/internal/store"
	"github.com/dmitrymomot/whitelabel/internal/verifier"
	"github.com/dmitrymomot/whitelabel/pkg/tlsverify"
)

const (
	domain  = "custom.example.com"
	routing = "app.platform.com"
	txtName = "_platform-verify.custom.example.com"
	token   = "tok123"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func scenarioConfig() *models.WhitelabelConfig {
	return &models.WhitelabelConfig{
		OrganizationID: uuid.New(),
		CustomDomain:   domain,
		Active:         true,
		CustomDomainDNS: []models.DNSRecord{
			{Type: models.RecordCNAME, Name: domain, Value: routing},
			{Type: models.RecordTXT, Name: txtName, Value: token},
		},
	}
}

func scenarioDNS() *fakeDNS {
	return &fakeDNS{
		cname: map[string]string{domain: routing},
		txt:   map[string][]string{txtName: {"unrelated", token}},
	}
}

// certChecker evaluates a synthetic leaf with the real evaluation rules.
func certChecker(notBefore, notAfter time.Time, names ...string) *fakeCerts {
	leaf := &x509.Certificate{
		Subject:   pkix.Name{CommonName: domain},
		Issuer:    pkix.Name{CommonName: "Test CA"},
		NotBefore: notBefore,
		NotAfter:  notAfter,
		DNSNames:  names,
	}
	res, err := tlsverify.Evaluate([]*x509.Certificate{leaf}, domain, now)
	return &fakeCerts{result: res, err: err}
}

func validCert() *fakeCerts {
	return certChecker(now.Add(-24*time.Hour), now.Add(24*time.Hour))
}

func newVerifier(s verifier.Store, dns *fakeDNS, certs verifier.CertificateChecker, opts ...verifier.Option) *verifier.Verifier {
	opts = append([]verifier.Option{
		verifier.WithPlatformName("platform"),
		verifier.WithRoutingDomain(routing),
		verifier.WithClock(func() time.Time { return now }),
	}, opts...)
	return verifier.New(s, dns, certs, opts...)
}

func TestScenarioA_AllChecksPass(t *testing.T) {
	t.Parallel()

	cfg := scenarioConfig()
	s := newFakeStore(cfg)
	inv := &recordingInvalidator{}
	v := newVerifier(s, scenarioDNS(), validCert(), verifier.WithInvalidator(inv))

	ok, err := v.Verify(context.Background(), cfg.OrganizationID)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, s.verified(cfg.OrganizationID))

	require.Len(t, s.updates, 1)
	rep := s.updates[0].report
	require.Equal(t, domain, s.updates[0].domain)
	require.True(t, rep.CNAME.Valid)
	require.False(t, rep.CNAME.Fallback)
	require.Equal(t, []string{routing}, rep.CNAME.Records)
	require.True(t, rep.TXT.Valid)
	require.True(t, rep.SSL.Valid)
	require.Contains(t, rep.SSL.Details.Subject, domain)
	require.Equal(t, now, rep.CheckedAt)

	require.Equal(t, [][]string{{cfg.OrganizationID.String(), domain}}, inv.calls)
}

func TestScenarioB_WrongCNAMEAndNoAddress(t *testing.T) {
	t.Parallel()

	cfg := scenarioConfig()
	cfg.CustomDomainVerified = true
	s := newFakeStore(cfg)
	dns := scenarioDNS()
	dns.cname[domain] = "wrong.domain.com"

	v := newVerifier(s, dns, validCert())

	ok, err := v.Verify(context.Background(), cfg.OrganizationID)
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, s.verified(cfg.OrganizationID))

	rep := s.updates[0].report
	require.False(t, rep.CNAME.Valid)
	require.Equal(t, []string{"wrong.domain.com"}, rep.CNAME.Records)
	require.NotEmpty(t, rep.CNAME.Error)
	require.True(t, rep.TXT.Valid)
	require.True(t, rep.SSL.Valid)
}

func TestScenarioC_ExpiredCertificate(t *testing.T) {
	t.Parallel()

	cfg := scenarioConfig()
	s := newFakeStore(cfg)
	v := newVerifier(s, scenarioDNS(), certChecker(now.Add(-48*time.Hour), now.Add(-24*time.Hour)))

	ok, err := v.Verify(context.Background(), cfg.OrganizationID)
	require.NoError(t, err)
	require.False(t, ok)

	rep := s.updates[0].report
	require.True(t, rep.CNAME.Valid)
	require.True(t, rep.TXT.Valid)
	require.False(t, rep.SSL.Valid)
	require.Contains(t, rep.SSL.Error, tlsverify.ErrCertificateExpired.Error())
	require.NotNil(t, rep.SSL.Details)
}

func TestCertificateWildcard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		names []string
		want  bool
	}{
		{name: "one label wildcard", names: []string{"*.example.com"}, want: true},
		{name: "exact san", names: []string{"other.example.com", domain}, want: true},
		{name: "parent wildcard too deep", names: []string{"*.com"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := scenarioConfig()
			leaf := &x509.Certificate{
				Subject:   pkix.Name{CommonName: "unrelated.test"},
				NotBefore: now.Add(-time.Hour),
				NotAfter:  now.Add(time.Hour),
				DNSNames:  tt.names,
			}
			res, err := tlsverify.Evaluate([]*x509.Certificate{leaf}, domain, now)
			v := newVerifier(newFakeStore(cfg), scenarioDNS(), &fakeCerts{result: res, err: err})

			rep, derr := v.Details(context.Background(), cfg.OrganizationID)
			require.NoError(t, derr)
			require.Equal(t, tt.want, rep.SSL.Valid)
			require.Equal(t, tt.want, rep.Overall)
		})
	}
}

func TestDetailsDoesNotPersist(t *testing.T) {
	t.Parallel()

	cfg := scenarioConfig()
	cfg.CustomDomainVerified = true
	s := newFakeStore(cfg)
	inv := &recordingInvalidator{}
	dns := scenarioDNS()
	dns.txt = nil

	v := newVerifier(s, dns, validCert(), verifier.WithInvalidator(inv))
	rep, err := v.Details(context.Background(), cfg.OrganizationID)
	require.NoError(t, err)
	require.False(t, rep.Overall)
	require.False(t, rep.TXT.Valid)

	require.Empty(t, s.updates)
	require.True(t, s.verified(cfg.OrganizationID))
	require.Empty(t, inv.calls)
}

func TestNoCustomDomain(t *testing.T) {
	t.Parallel()

	noDomain := &models.WhitelabelConfig{OrganizationID: uuid.New(), Active: true}
	s := newFakeStore(noDomain)
	certs := validCert()
	v := newVerifier(s, scenarioDNS(), certs)

	for _, orgID := range []uuid.UUID{noDomain.OrganizationID, uuid.New()} {
		ok, err := v.Verify(context.Background(), orgID)
		require.NoError(t, err)
		require.False(t, ok)

		_, err = v.Details(context.Background(), orgID)
		require.ErrorIs(t, err, verifier.ErrNoCustomDomain)
	}
	require.Empty(t, s.updates)
	require.Empty(t, certs.hosts)
}

func TestStoreErrorsSurface(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")

	t.Run("load", func(t *testing.T) {
		t.Parallel()

		s := newFakeStore(scenarioConfig())
		s.getErr = boom
		v := newVerifier(s, scenarioDNS(), validCert())

		ok, err := v.Verify(context.Background(), uuid.New())
		require.False(t, ok)
		require.ErrorIs(t, err, verifier.ErrStore)
		require.ErrorIs(t, err, boom)
	})

	t.Run("persist", func(t *testing.T) {
		t.Parallel()

		cfg := scenarioConfig()
		s := newFakeStore(cfg)
		s.updateErr = boom
		inv := &recordingInvalidator{}
		v := newVerifier(s, scenarioDNS(), validCert(), verifier.WithInvalidator(inv))

		ok, err := v.Verify(context.Background(), cfg.OrganizationID)
		require.False(t, ok)
		require.ErrorIs(t, err, boom)
		require.Empty(t, inv.calls)
	})

	t.Run("domain changed mid-run", func(t *testing.T) {
		t.Parallel()

		cfg := scenarioConfig()
		s := newFakeStore(cfg)
		s.updateErr = store.ErrDomainChanged
		v := newVerifier(s, scenarioDNS(), validCert())

		ok, err := v.Verify(context.Background(), cfg.OrganizationID)
		require.False(t, ok)
		require.ErrorIs(t, err, store.ErrDomainChanged)
	})
}

func TestDomainHeldByAnotherOrganization(t *testing.T) {
	t.Parallel()

	cfg := scenarioConfig()
	s := newFakeStore(cfg)
	s.held = domain
	inv := &recordingInvalidator{}
	v := newVerifier(s, scenarioDNS(), validCert(), verifier.WithInvalidator(inv))

	ok, err := v.Verify(context.Background(), cfg.OrganizationID)
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, s.verified(cfg.OrganizationID))

	require.Len(t, s.updates, 1)
	got := s.updates[0]
	require.False(t, got.verified)
	require.False(t, got.report.Overall)
	require.True(t, got.report.TXT.Valid)
	require.Equal(t, "owner: domain is verified by another organization", got.report.ErrorSummary())
	require.Len(t, inv.calls, 1)
}

func TestApexFallback(t *testing.T) {
	t.Parallel()

	dnsWithA := func() *fakeDNS {
		d := scenarioDNS()
		delete(d.cname, domain)
		d.ips = map[string][]net.IP{domain: {net.ParseIP("203.0.113.7")}}
		return d
	}

	t.Run("enabled by default", func(t *testing.T) {
		t.Parallel()

		cfg := scenarioConfig()
		v := newVerifier(newFakeStore(cfg), dnsWithA(), validCert())
		rep, err := v.Details(context.Background(), cfg.OrganizationID)
		require.NoError(t, err)
		require.True(t, rep.CNAME.Valid)
		require.True(t, rep.CNAME.Fallback)
		require.Equal(t, []string{"203.0.113.7"}, rep.CNAME.Records)
		require.True(t, rep.Overall)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		cfg := scenarioConfig()
		v := newVerifier(newFakeStore(cfg), dnsWithA(), validCert(), verifier.WithApexFallback(false))
		rep, err := v.Details(context.Background(), cfg.OrganizationID)
		require.NoError(t, err)
		require.False(t, rep.CNAME.Valid)
		require.False(t, rep.Overall)
	})

	t.Run("cname lookup error falls back", func(t *testing.T) {
		t.Parallel()

		cfg := scenarioConfig()
		d := dnsWithA()
		d.cnameErr = &net.DNSError{Err: "server misbehaving", Name: domain}
		v := newVerifier(newFakeStore(cfg), d, validCert())
		rep, err := v.Details(context.Background(), cfg.OrganizationID)
		require.NoError(t, err)
		require.True(t, rep.CNAME.Valid)
		require.True(t, rep.CNAME.Fallback)
	})
}

func TestTXTPolicy(t *testing.T) {
	t.Parallel()

	withoutTXT := func() *models.WhitelabelConfig {
		cfg := scenarioConfig()
		cfg.CustomDomainDNS = cfg.CustomDomainDNS[:1]
		return cfg
	}

	t.Run("unconfigured passes vacuously", func(t *testing.T) {
		t.Parallel()

		cfg := withoutTXT()
		v := newVerifier(newFakeStore(cfg), scenarioDNS(), validCert())
		rep, err := v.Details(context.Background(), cfg.OrganizationID)
		require.NoError(t, err)
		require.True(t, rep.TXT.Valid)
		require.False(t, rep.TXT.Required)
		require.True(t, rep.Overall)
	})

	t.Run("unconfigured fails when required", func(t *testing.T) {
		t.Parallel()

		cfg := withoutTXT()
		v := newVerifier(newFakeStore(cfg), scenarioDNS(), validCert(), verifier.WithRequireTXT(true))
		rep, err := v.Details(context.Background(), cfg.OrganizationID)
		require.NoError(t, err)
		require.False(t, rep.TXT.Valid)
		require.True(t, rep.TXT.Required)
		require.Equal(t, verifier.ErrTXTNotConfigured.Error(), rep.TXT.Error)
		require.False(t, rep.Overall)
	})

	t.Run("wrong token", func(t *testing.T) {
		t.Parallel()

		cfg := scenarioConfig()
		d := scenarioDNS()
		d.txt[txtName] = []string{"tok999"}
		v := newVerifier(newFakeStore(cfg), d, validCert())
		rep, err := v.Details(context.Background(), cfg.OrganizationID)
		require.NoError(t, err)
		require.False(t, rep.TXT.Valid)
		require.Equal(t, []string{"tok999"}, rep.TXT.Records)
	})
}

func TestCNAMEFallsBackToRoutingDomain(t *testing.T) {
	t.Parallel()

	cfg := scenarioConfig()
	cfg.CustomDomainDNS = cfg.CustomDomainDNS[1:]

	v := newVerifier(newFakeStore(cfg), scenarioDNS(), validCert())
	rep, err := v.Details(context.Background(), cfg.OrganizationID)
	require.NoError(t, err)
	require.True(t, rep.CNAME.Valid)

	v = verifier.New(newFakeStore(cfg), scenarioDNS(), validCert())
	rep, err = v.Details(context.Background(), cfg.OrganizationID)
	require.NoError(t, err)
	require.False(t, rep.CNAME.Valid)
	require.Equal(t, verifier.ErrCNAMENotConfigured.Error(), rep.CNAME.Error)
}

func TestCheckPanicIsRecovered(t *testing.T) {
	t.Parallel()

	cfg := scenarioConfig()
	d := scenarioDNS()
	d.panicOn = "cname"
	v := newVerifier(newFakeStore(cfg), d, validCert())

	rep, err := v.Details(context.Background(), cfg.OrganizationID)
	require.NoError(t, err)
	require.False(t, rep.CNAME.Valid)
	require.Contains(t, rep.CNAME.Error, "panicked")
	require.True(t, rep.TXT.Valid)
	require.False(t, rep.Overall)
}

func TestCheckTimeout(t *testing.T) {
	t.Parallel()

	cfg := scenarioConfig()
	v := newVerifier(newFakeStore(cfg), scenarioDNS(), &fakeCerts{block: true},
		verifier.WithCheckTimeout(20*time.Millisecond))

	start := time.Now()
	rep, err := v.Details(context.Background(), cfg.OrganizationID)
	require.NoError(t, err)
	require.Less(t, time.Since(start), 2*time.Second)
	require.False(t, rep.SSL.Valid)
	require.Contains(t, rep.SSL.Error, context.DeadlineExceeded.Error())
}

func TestMetricsRecorded(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	cfg := scenarioConfig()
	v := newVerifier(newFakeStore(cfg), scenarioDNS(), validCert(), verifier.WithMetrics(m))
	_, err = v.Verify(context.Background(), cfg.OrganizationID)
	require.NoError(t, err)

	require.Equal(t, 3, testutil.CollectAndCount(reg, "whitelabel_verification_check_total"))
	require.Equal(t, 1, testutil.CollectAndCount(reg, "whitelabel_verifications_total"))
}
