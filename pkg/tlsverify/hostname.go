package tlsverify

import (
	"crypto/x509"
	"strings"
)

// MatchHostname reports whether a certificate name covers host.
// Comparison is case-insensitive and ignores a trailing dot. A leading "*."
// label matches exactly one non-empty label; other wildcard forms never match.
func MatchHostname(pattern, host string) bool {
	pattern = normalize(pattern)
	host = normalize(host)
	if pattern == "" || host == "" {
		return false
	}

	suffix, ok := strings.CutPrefix(pattern, "*.")
	if !ok {
		return !strings.Contains(pattern, "*") && pattern == host
	}
	// "*.com" style patterns are too broad to honor.
	if !strings.Contains(suffix, ".") || strings.Contains(suffix, "*") {
		return false
	}

	label, ok := strings.CutSuffix(host, "."+suffix)
	return ok && label != "" && !strings.Contains(label, ".")
}

// MatchCertificate reports whether the certificate's common name or any DNS
// subject alternative name covers host.
func MatchCertificate(cert *x509.Certificate, host string) bool {
	if cert == nil {
		return false
	}
	for _, name := range cert.DNSNames {
		if MatchHostname(name, host) {
			return true
		}
	}
	return MatchHostname(cert.Subject.CommonName, host)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
}
