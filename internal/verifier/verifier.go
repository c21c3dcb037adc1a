// Package verifier proves that an organization controls its custom domain.
//
// A run performs three independent checks concurrently: the domain aliases
// the platform's routing domain (CNAME, or an address record for apex
// domains), publishes the ownership token (TXT), and serves a current
// certificate for the name (TLS). The verdict is persisted; the full report
// is returned to the caller.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/whitelabel/internal/metrics"
	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/internal/store"
	"github.com/dmitrymomot/whitelabel/pkg/dnsverify"
	"github.com/dmitrymomot/whitelabel/pkg/tlsverify"
)

// Store is the slice of the config store the verifier needs.
type Store interface {
	GetConfig(ctx context.Context, orgID uuid.UUID) (*models.WhitelabelConfig, error)
	UpdateVerification(ctx context.Context, orgID uuid.UUID, domain string, verified bool, report *models.VerificationReport) error
	SetCustomDomain(ctx context.Context, orgID uuid.UUID, domain string, records []models.DNSRecord) (*models.WhitelabelConfig, string, error)
}

// CertificateChecker inspects the certificate a host serves.
type CertificateChecker interface {
	Check(ctx context.Context, host string) (tlsverify.Result, error)
}

// Invalidator drops cached branding for an organization and its domains.
type Invalidator interface {
	Invalidate(ctx context.Context, orgID uuid.UUID, domains ...string)
}

// Verifier runs domain verification for organizations.
type Verifier struct {
	store        Store
	dns          dnsverify.Resolver
	certs        CertificateChecker
	invalidator  Invalidator
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
	checkTimeout time.Duration

	platform      string
	routingDomain string
	baseDomain    string
	requireTXT    bool
	apexFallback  bool
}

// New creates a Verifier. *net.Resolver satisfies dnsverify.Resolver and
// *tlsverify.Checker satisfies CertificateChecker.
func New(s Store, dns dnsverify.Resolver, certs CertificateChecker, opts ...Option) *Verifier {
	v := &Verifier{
		store:        s,
		dns:          dns,
		certs:        certs,
		logger:       slog.New(slog.DiscardHandler),
		now:          time.Now,
		checkTimeout: defaultCheckTimeout,
		platform:     "platform",
		apexFallback: true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the organization's custom domain and persists the verdict.
// An organization without a config or domain is simply not verified. DNS and
// TLS failures are part of the verdict; only store failures are returned.
func (v *Verifier) Verify(ctx context.Context, orgID uuid.UUID) (bool, error) {
	cfg, err := v.load(ctx, orgID)
	if errors.Is(err, ErrNoCustomDomain) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	report := v.run(ctx, cfg)

	err = v.store.UpdateVerification(ctx, orgID, cfg.CustomDomain, report.Overall, report)
	if errors.Is(err, store.ErrDomainTaken) {
		// The checks passed but the domain belongs to someone else. Store the
		// failure so the recheck sweep moves on to other candidates.
		report.Overall = false
		report.Conflict = errDomainHeld
		err = v.store.UpdateVerification(ctx, orgID, cfg.CustomDomain, false, report)
	}
	if err != nil {
		return false, errors.Join(ErrStore, err)
	}
	if v.invalidator != nil {
		v.invalidator.Invalidate(ctx, orgID, cfg.CustomDomain)
	}

	v.logger.InfoContext(ctx, "custom domain verified",
		slog.String("org_id", orgID.String()),
		slog.String("domain", cfg.CustomDomain),
		slog.Bool("verified", report.Overall),
		slog.String("failures", report.ErrorSummary()),
	)
	return report.Overall, nil
}

// Details runs the same checks as Verify without persisting anything.
func (v *Verifier) Details(ctx context.Context, orgID uuid.UUID) (*models.VerificationReport, error) {
	cfg, err := v.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return v.run(ctx, cfg), nil
}

func (v *Verifier) load(ctx context.Context, orgID uuid.UUID) (*models.WhitelabelConfig, error) {
	cfg, err := v.store.GetConfig(ctx, orgID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNoCustomDomain
	case err != nil:
		return nil, errors.Join(ErrStore, err)
	case cfg == nil || cfg.CustomDomain == "":
		return nil, ErrNoCustomDomain
	}
	return cfg, nil
}

func (v *Verifier) run(ctx context.Context, cfg *models.WhitelabelConfig) *models.VerificationReport {
	start := v.now()
	report := &models.VerificationReport{
		Domain:    cfg.CustomDomain,
		CheckedAt: start.UTC(),
	}

	// Each check owns one report field and never returns an error.
	var g errgroup.Group
	g.Go(func() error { report.CNAME = v.checkCNAME(ctx, cfg); return nil })
	g.Go(func() error { report.TXT = v.checkTXT(ctx, cfg); return nil })
	g.Go(func() error { report.SSL = v.checkSSL(ctx, cfg); return nil })
	_ = g.Wait()

	report.Overall = report.CNAME.Valid && report.TXT.Valid && report.SSL.Valid

	v.metrics.Check(models.CheckCNAME, report.CNAME.Valid)
	v.metrics.Check(models.CheckTXT, report.TXT.Valid)
	v.metrics.Check(models.CheckSSL, report.SSL.Valid)
	v.metrics.Verification(report.Overall, v.now().Sub(start))
	return report
}

func (v *Verifier) checkCNAME(ctx context.Context, cfg *models.WhitelabelConfig) models.CNAMEResult {
	res := models.CNAMEResult{Records: []string{}}
	err := v.guard(ctx, models.CheckCNAME, func(ctx context.Context) error {
		target, ok := cfg.ExpectedCNAME()
		if !ok {
			target = v.routingDomain
		}
		if target == "" {
			return ErrCNAMENotConfigured
		}

		r, err := dnsverify.CheckCNAME(ctx, v.dns, cfg.CustomDomain, target, v.apexFallback)
		res.Valid, res.Fallback = r.Valid, r.Fallback
		if len(r.Records) > 0 {
			res.Records = r.Records
		}
		return err
	})
	if err != nil {
		res.Valid = false
		res.Error = err.Error()
	}
	return res
}

func (v *Verifier) checkTXT(ctx context.Context, cfg *models.WhitelabelConfig) models.TXTResult {
	res := models.TXTResult{Records: []string{}, Required: v.requireTXT}

	record, ok := cfg.Record(models.RecordTXT)
	if !ok {
		if v.requireTXT {
			res.Error = ErrTXTNotConfigured.Error()
		} else {
			res.Valid = true
		}
		return res
	}
	if record.Name == "" {
		record.Name = dnsverify.TXTRecordName(v.platform, cfg.CustomDomain)
	}

	err := v.guard(ctx, models.CheckTXT, func(ctx context.Context) error {
		r, err := dnsverify.CheckTXT(ctx, v.dns, record.Name, record.Value)
		res.Valid = r.Valid
		if len(r.Records) > 0 {
			res.Records = r.Records
		}
		return err
	})
	if err != nil {
		res.Valid = false
		res.Error = err.Error()
	}
	return res
}

func (v *Verifier) checkSSL(ctx context.Context, cfg *models.WhitelabelConfig) models.SSLResult {
	var res models.SSLResult
	err := v.guard(ctx, models.CheckSSL, func(ctx context.Context) error {
		r, err := v.certs.Check(ctx, cfg.CustomDomain)
		res.Valid = r.Valid
		if d := r.Details; d != nil {
			res.Details = &models.CertificateDetails{
				Subject:   d.Subject,
				Issuer:    d.Issuer,
				DNSNames:  d.DNSNames,
				NotBefore: d.NotBefore,
				NotAfter:  d.NotAfter,
			}
		}
		return err
	})
	if err != nil {
		res.Valid = false
		res.Error = err.Error()
	}
	return res
}

// guard bounds fn by the check timeout and turns a panic into an error.
func (v *Verifier) guard(ctx context.Context, check string, fn func(context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, v.checkTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCheckPanicked, r)
			v.logger.ErrorContext(ctx, "verification check panicked",
				slog.String("check", check),
				slog.Any("panic", r),
			)
		}
	}()

	return fn(ctx)
}
