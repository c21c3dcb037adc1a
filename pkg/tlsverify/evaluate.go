package tlsverify

import (
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

// Details describes the leaf certificate a host presented.
type Details struct {
	NotBefore time.Time `json:"not_before" yaml:"not_before"`
	NotAfter  time.Time `json:"not_after" yaml:"not_after"`
	Subject   string    `json:"subject" yaml:"subject"`
	Issuer    string    `json:"issuer" yaml:"issuer"`
	DNSNames  []string  `json:"dns_names,omitempty" yaml:"dns_names,omitempty"`
}

// Result is the outcome of a certificate check.
type Result struct {
	Details *Details
	Valid   bool
}

// Evaluate checks the leaf of chain against host at the given time.
// The leaf must be inside its validity window, bounds included, and must
// match host by common name or DNS SAN.
func Evaluate(chain []*x509.Certificate, host string, now time.Time) (Result, error) {
	if len(chain) == 0 || chain[0] == nil {
		return Result{}, ErrNoCertificate
	}
	leaf := chain[0]
	res := Result{Details: describe(leaf)}

	switch {
	case now.Before(leaf.NotBefore):
		return res, fmt.Errorf("%w: valid from %s", ErrCertificateNotYetValid, leaf.NotBefore.UTC().Format(time.RFC3339))
	case now.After(leaf.NotAfter):
		return res, fmt.Errorf("%w: valid to %s", ErrCertificateExpired, leaf.NotAfter.UTC().Format(time.RFC3339))
	}

	if !MatchCertificate(leaf, host) {
		return res, fmt.Errorf("%w: %s", ErrHostnameMismatch, host)
	}

	res.Valid = true
	return res, nil
}

// VerifyChain builds a path from the leaf to roots using the presented
// intermediates. A nil pool means the system roots. Host matching is left to
// Evaluate so wildcard rules stay in one place.
func VerifyChain(chain []*x509.Certificate, roots *x509.CertPool, now time.Time) error {
	if len(chain) == 0 || chain[0] == nil {
		return ErrNoCertificate
	}
	intermediates := x509.NewCertPool()
	for _, cert := range chain[1:] {
		intermediates.AddCert(cert)
	}
	_, err := chain[0].Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		CurrentTime:   now,
	})
	if err != nil {
		return errors.Join(ErrUntrustedChain, err)
	}
	return nil
}

func describe(cert *x509.Certificate) *Details {
	return &Details{
		Subject:   cert.Subject.String(),
		Issuer:    cert.Issuer.String(),
		DNSNames:  append([]string(nil), cert.DNSNames...),
		NotBefore: cert.NotBefore,
		NotAfter:  cert.NotAfter,
	}
}
