package tlsverify

import (
	"context"
	"crypto/x509"
	"time"
)

// Checker combines a Fetcher with Evaluate and optional chain verification.
type Checker struct {
	fetcher     Fetcher
	now         func() time.Time
	roots       *x509.CertPool
	verifyChain bool
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithClock sets the time source used for validity checks.
func WithClock(now func() time.Time) CheckerOption {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRoots enables chain verification against the given pool.
// A nil pool verifies against the system roots.
func WithRoots(roots *x509.CertPool) CheckerOption {
	return func(c *Checker) {
		c.roots = roots
		c.verifyChain = true
	}
}

// WithChainVerification toggles chain verification against the configured
// roots. Disabled by default.
func WithChainVerification(enabled bool) CheckerOption {
	return func(c *Checker) {
		c.verifyChain = enabled
	}
}

// NewChecker creates a Checker on top of f.
func NewChecker(f Fetcher, opts ...CheckerOption) *Checker {
	c := &Checker{
		fetcher: f,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check fetches the chain for host and evaluates it.
func (c *Checker) Check(ctx context.Context, host string) (Result, error) {
	chain, err := c.fetcher.PeerCertificates(ctx, host)
	if err != nil {
		return Result{}, err
	}

	now := c.now()
	res, err := Evaluate(chain, host, now)
	if err != nil {
		return res, err
	}
	if c.verifyChain {
		if err := VerifyChain(chain, c.roots, now); err != nil {
			res.Valid = false
			return res, err
		}
	}
	return res, nil
}
