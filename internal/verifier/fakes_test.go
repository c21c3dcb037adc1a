package verifier_test

import (
	"context"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/internal/store"
	"github.com/dmitrymomot/whitelabel/pkg/tlsverify"
)

type update struct {
	orgID    uuid.UUID
	domain   string
	verified bool
	report   *models.VerificationReport
}

type fakeStore struct {
	mu        sync.Mutex
	configs   map[uuid.UUID]*models.WhitelabelConfig
	updates   []update
	getErr    error
	updateErr error
	setErr    error
	// held is a domain another organization holds verified.
	held string
}

func newFakeStore(cfgs ...*models.WhitelabelConfig) *fakeStore {
	s := &fakeStore{configs: map[uuid.UUID]*models.WhitelabelConfig{}}
	for _, c := range cfgs {
		s.configs[c.OrganizationID] = c
	}
	return s
}

func (s *fakeStore) GetConfig(_ context.Context, orgID uuid.UUID) (*models.WhitelabelConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	c, ok := s.configs[orgID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) UpdateVerification(_ context.Context, orgID uuid.UUID, domain string, verified bool, report *models.VerificationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	c, ok := s.configs[orgID]
	if !ok {
		return store.ErrNotFound
	}
	if c.CustomDomain != domain {
		return store.ErrDomainChanged
	}
	if verified && domain == s.held {
		return store.ErrDomainTaken
	}
	c.CustomDomainVerified = verified
	s.updates = append(s.updates, update{orgID: orgID, domain: domain, verified: verified, report: report})
	return nil
}

func (s *fakeStore) SetCustomDomain(_ context.Context, orgID uuid.UUID, domain string, records []models.DNSRecord) (*models.WhitelabelConfig, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return nil, "", s.setErr
	}
	c, ok := s.configs[orgID]
	if !ok {
		c = &models.WhitelabelConfig{OrganizationID: orgID, Active: true}
		s.configs[orgID] = c
	}
	prev := c.CustomDomain
	c.CustomDomain = domain
	c.CustomDomainDNS = records
	c.CustomDomainVerified = false
	cp := *c
	return &cp, prev, nil
}

func (s *fakeStore) verified(orgID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configs[orgID].CustomDomainVerified
}

// fakeDNS mirrors net.Resolver: LookupCNAME answers with the queried name
// plus a dot when there is no alias.
type fakeDNS struct {
	cname    map[string]string
	cnameErr error
	ips      map[string][]net.IP
	txt      map[string][]string
	panicOn  string
}

func notFound(name string) error {
	return &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

func (d *fakeDNS) LookupCNAME(_ context.Context, host string) (string, error) {
	if d.panicOn == "cname" {
		panic("resolver exploded")
	}
	if d.cnameErr != nil {
		return "", d.cnameErr
	}
	if c, ok := d.cname[host]; ok {
		return c + ".", nil
	}
	return host + ".", nil
}

func (d *fakeDNS) LookupIP(_ context.Context, _, host string) ([]net.IP, error) {
	if ips, ok := d.ips[host]; ok {
		return ips, nil
	}
	return nil, notFound(host)
}

func (d *fakeDNS) LookupTXT(_ context.Context, name string) ([]string, error) {
	if recs, ok := d.txt[name]; ok {
		return recs, nil
	}
	return nil, notFound(name)
}

type fakeCerts struct {
	result tlsverify.Result
	err    error
	block  bool
	hosts  []string
	mu     sync.Mutex
}

func (c *fakeCerts) Check(ctx context.Context, host string) (tlsverify.Result, error) {
	c.mu.Lock()
	c.hosts = append(c.hosts, host)
	c.mu.Unlock()
	if c.block {
		<-ctx.Done()
		return tlsverify.Result{}, ctx.Err()
	}
	return c.result, c.err
}

type recordingInvalidator struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, orgID uuid.UUID, domains ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{orgID.String()}, domains...))
}
