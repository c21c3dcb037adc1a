package models

import (
	"strings"
	"time"
)

// Check names used in reports and metrics.
const (
	CheckCNAME = "cname"
	CheckTXT   = "txt"
	CheckSSL   = "ssl"
	// CheckOwner fails when another organization holds the domain verified.
	CheckOwner = "owner"
)

// CNAMEResult is the routing check outcome. Fallback marks a pass that only
// proved the domain resolves to an address.
type CNAMEResult struct {
	Valid    bool     `json:"valid" yaml:"valid"`
	Records  []string `json:"records" yaml:"records"`
	Fallback bool     `json:"fallback" yaml:"fallback"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// TXTResult is the ownership challenge outcome.
type TXTResult struct {
	Valid    bool     `json:"valid" yaml:"valid"`
	Records  []string `json:"records" yaml:"records"`
	Required bool     `json:"required" yaml:"required"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// CertificateDetails describes the leaf certificate served for the domain.
type CertificateDetails struct {
	Subject   string    `json:"subject" yaml:"subject"`
	Issuer    string    `json:"issuer" yaml:"issuer"`
	DNSNames  []string  `json:"dns_names" yaml:"dns_names"`
	NotBefore time.Time `json:"not_before" yaml:"not_before"`
	NotAfter  time.Time `json:"not_after" yaml:"not_after"`
}

// SSLResult is the certificate check outcome.
type SSLResult struct {
	Valid   bool                `json:"valid" yaml:"valid"`
	Details *CertificateDetails `json:"details,omitempty" yaml:"details,omitempty"`
	Error   string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// VerificationReport is the per-check breakdown of one verification run.
type VerificationReport struct {
	Domain    string      `json:"domain" yaml:"domain"`
	CNAME     CNAMEResult `json:"cname" yaml:"cname"`
	TXT       TXTResult   `json:"txt" yaml:"txt"`
	SSL       SSLResult   `json:"ssl" yaml:"ssl"`
	Conflict  string      `json:"conflict,omitempty" yaml:"conflict,omitempty"`
	Overall   bool        `json:"overall" yaml:"overall"`
	CheckedAt time.Time   `json:"checked_at" yaml:"checked_at"`
}

// ErrorSummary joins failing checks as "check: error" pairs. Empty when
// every check passed.
func (r *VerificationReport) ErrorSummary() string {
	var parts []string
	add := func(check string, valid bool, msg string) {
		if valid {
			return
		}
		if msg == "" {
			msg = "failed"
		}
		parts = append(parts, check+": "+msg)
	}
	add(CheckCNAME, r.CNAME.Valid, r.CNAME.Error)
	add(CheckTXT, r.TXT.Valid, r.TXT.Error)
	add(CheckSSL, r.SSL.Valid, r.SSL.Error)
	add(CheckOwner, r.Conflict == "", r.Conflict)
	return strings.Join(parts, "; ")
}
