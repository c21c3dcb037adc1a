// Package dnsverify provides the DNS half of custom domain verification.
//
// Tenants prove control over a domain with two records: a CNAME pointing the
// domain at the platform routing host, and a TXT record holding an opaque
// per-organization token. This package checks both against a [Resolver],
// which *net.Resolver satisfies, so tests can substitute a fake.
//
// # CNAME Check
//
//	res, err := dnsverify.CheckCNAME(ctx, net.DefaultResolver,
//	    "custom.example.com", "app.platform.com", true)
//	if err != nil {
//	    // res.Valid is false, err explains why
//	}
//
// The comparison is case-insensitive, ignores a trailing dot and compares the
// IDNA ASCII form of both names. The Go resolver follows CNAME chains and
// reports the final canonical name, so a chain that ends at the canonical name
// of the expected target is accepted as well.
//
// Apex domains cannot carry a CNAME. When no CNAME exists and the fallback is
// enabled, any successful A lookup counts as a weaker pass and the result is
// marked with Fallback. The returned addresses are not compared with the
// platform ingress.
//
// # TXT Check
//
//	name := dnsverify.TXTRecordName("acme", "custom.example.com")
//	// _acme-verify.custom.example.com
//	res, err := dnsverify.CheckTXT(ctx, net.DefaultResolver, name, token)
//
// Multi-string TXT records are returned concatenated by the resolver. A record
// must equal the token exactly after trimming whitespace and quotes.
//
// # Error Handling
//
//   - ErrInvalidInput: a name or token is empty or not a valid domain name
//   - ErrDNSLookupFailed: the resolver returned a network or server error
//   - ErrNoRecords: the name does not exist or has no records of the type
//   - ErrCNAMENotFound: no CNAME and the A fallback is disabled
//   - ErrCNAMEMismatch: a CNAME exists but points somewhere else
//   - ErrTXTRecordNotFound: no TXT records at the challenge name
//   - ErrTXTMismatch: TXT records exist but none holds the token
package dnsverify
