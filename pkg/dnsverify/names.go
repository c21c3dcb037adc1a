package dnsverify

import (
	"errors"
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeName returns the lowercase IDNA ASCII form of name without a
// trailing dot.
//
//	"Example.COM."  -> "example.com"
//	"bücher.de"     -> "xn--bcher-kva.de"
func NormalizeName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	if name == "" {
		return "", ErrInvalidInput
	}
	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return "", errors.Join(ErrInvalidInput, err)
	}
	return strings.ToLower(ascii), nil
}

// EqualNames reports whether a and b name the same DNS node.
// Empty names never match.
func EqualNames(a, b string) bool {
	ca, cb := canonicalName(a), canonicalName(b)
	return ca != "" && ca == cb
}

// TXTRecordName returns the challenge record name for a platform and domain.
func TXTRecordName(platform, domain string) string {
	return "_" + strings.ToLower(strings.TrimSpace(platform)) + "-verify." + canonicalName(domain)
}

// canonicalName is NormalizeName that degrades to a plain lowercase
// comparison form for names IDNA rejects (underscore labels, for one).
func canonicalName(name string) string {
	if n, err := NormalizeName(name); err == nil {
		return n
	}
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
}
