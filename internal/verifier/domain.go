package verifier

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/internal/store"
	"github.com/dmitrymomot/whitelabel/pkg/dnsverify"
	"github.com/dmitrymomot/whitelabel/pkg/hostrouter"
	"github.com/dmitrymomot/whitelabel/pkg/id"
)

const maxDomainLength = 253

// SetDomain claims domain for the organization and issues the DNS records
// the tenant must publish. Verification is reset; the caller schedules a
// new run. An empty domain releases the current one. The ownership token is
// kept across domain changes once issued.
func (v *Verifier) SetDomain(ctx context.Context, orgID uuid.UUID, domain string) (*models.WhitelabelConfig, error) {
	var records []models.DNSRecord
	if strings.TrimSpace(domain) != "" {
		normalized, err := v.NormalizeDomain(domain)
		if err != nil {
			return nil, err
		}
		domain = normalized

		token := id.NewToken()
		existing, err := v.store.GetConfig(ctx, orgID)
		switch {
		case err == nil:
			if t, ok := existing.ExpectedTXT(); ok {
				token = t
			}
		case !errors.Is(err, store.ErrNotFound):
			return nil, errors.Join(ErrStore, err)
		}
		records = v.Records(domain, token)
	} else {
		domain = ""
	}

	cfg, previous, err := v.store.SetCustomDomain(ctx, orgID, domain, records)
	if err != nil {
		if errors.Is(err, store.ErrDomainTaken) {
			return nil, err
		}
		return nil, errors.Join(ErrStore, err)
	}

	if v.invalidator != nil {
		v.invalidator.Invalidate(ctx, orgID, previous, domain)
	}
	v.logger.InfoContext(ctx, "custom domain changed",
		slog.String("org_id", orgID.String()),
		slog.String("domain", domain),
		slog.String("previous", previous),
	)
	return cfg, nil
}

// Records builds the DNS records a tenant publishes for domain.
func (v *Verifier) Records(domain, token string) []models.DNSRecord {
	records := make([]models.DNSRecord, 0, 2)
	if v.routingDomain != "" {
		records = append(records, models.DNSRecord{Type: models.RecordCNAME, Name: domain, Value: v.routingDomain})
	}
	if token != "" {
		records = append(records, models.DNSRecord{
			Type:  models.RecordTXT,
			Name:  dnsverify.TXTRecordName(v.platform, domain),
			Value: token,
		})
	}
	return records
}

// NormalizeDomain validates a tenant-supplied hostname and returns its
// canonical form. IP literals, single-label names, loopback names and the
// platform's own domain are rejected.
func (v *Verifier) NormalizeDomain(raw string) (string, error) {
	domain, err := dnsverify.NormalizeName(raw)
	if err != nil {
		return "", errors.Join(ErrInvalidDomain, err)
	}

	switch {
	case len(domain) > maxDomainLength,
		!strings.Contains(domain, "."),
		strings.ContainsAny(domain, "/:@ *"),
		net.ParseIP(domain) != nil,
		hostrouter.IsLoopback(domain):
		return "", ErrInvalidDomain
	}
	if v.baseDomain != "" && hostrouter.InDomain(domain, hostrouter.NormalizeHost(v.baseDomain)) {
		return "", ErrInvalidDomain
	}
	return domain, nil
}
