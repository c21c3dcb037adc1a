package dnsverify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Resolver is the subset of *net.Resolver used by the checks.
type Resolver interface {
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// Result is the outcome of a single DNS check.
type Result struct {
	Records  []string
	Valid    bool
	Fallback bool
}

// CheckCNAME verifies that domain is an alias of target.
// When the domain has no CNAME and allowFallback is set, a successful A
// or AAAA lookup is accepted instead and the result is marked as a fallback.
func CheckCNAME(ctx context.Context, r Resolver, domain, target string, allowFallback bool) (Result, error) {
	domain, err := NormalizeName(domain)
	if err != nil {
		return Result{}, err
	}
	target, err = NormalizeName(target)
	if err != nil {
		return Result{}, err
	}

	cname, cnameErr := r.LookupCNAME(ctx, domain)
	if cnameErr == nil {
		cname = canonicalName(cname)
		// The resolver answers with the queried name when there is no alias.
		if cname != "" && cname != domain {
			res := Result{Records: []string{cname}}
			if cname == target || aliasOf(ctx, r, target, cname) {
				res.Valid = true
				return res, nil
			}
			return res, fmt.Errorf("%w: got %s, want %s", ErrCNAMEMismatch, cname, target)
		}
	}

	if !allowFallback {
		if cnameErr != nil {
			return Result{}, lookupError(cnameErr, ErrCNAMENotFound)
		}
		return Result{}, ErrCNAMENotFound
	}

	ips, err := r.LookupIP(ctx, "ip", domain)
	if err != nil {
		return Result{Fallback: true}, lookupError(err, ErrNoRecords)
	}
	if len(ips) == 0 {
		return Result{Fallback: true}, ErrNoRecords
	}

	res := Result{Valid: true, Fallback: true, Records: make([]string, 0, len(ips))}
	for _, ip := range ips {
		res.Records = append(res.Records, ip.String())
	}
	return res, nil
}

// aliasOf reports whether target itself resolves through a CNAME chain to
// canonical. A domain pointed at target then reports canonical as its alias.
func aliasOf(ctx context.Context, r Resolver, target, canonical string) bool {
	name, err := r.LookupCNAME(ctx, target)
	if err != nil {
		return false
	}
	name = canonicalName(name)
	return name != target && name == canonical
}

// CheckTXT verifies that one of the TXT records at name equals token.
// Use TXTRecordName to build the challenge name.
func CheckTXT(ctx context.Context, r Resolver, name, token string) (Result, error) {
	name = canonicalName(name)
	token = strings.TrimSpace(token)
	if name == "" || token == "" {
		return Result{}, ErrInvalidInput
	}

	records, err := r.LookupTXT(ctx, name)
	if err != nil {
		return Result{}, lookupError(err, ErrTXTRecordNotFound)
	}
	if len(records) == 0 {
		return Result{}, ErrTXTRecordNotFound
	}

	res := Result{Records: records}
	for _, record := range records {
		if strings.Trim(strings.TrimSpace(record), `"`) == token {
			res.Valid = true
			return res, nil
		}
	}
	return res, ErrTXTMismatch
}

// lookupError maps resolver errors to package errors.
// NXDOMAIN and empty answers become notFound, everything else is a lookup failure.
func lookupError(err, notFound error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return notFound
	}
	return fmt.Errorf("%w: %v", ErrDNSLookupFailed, err)
}
