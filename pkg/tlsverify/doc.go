// Package tlsverify inspects the certificate a host presents on its HTTPS port.
//
// It does not issue or manage certificates. A [Dialer] fetches the peer chain
// without trusting it, and [Evaluate] decides whether the leaf is usable for
// a host: the current time must fall inside the validity window, and the
// common name or one of the DNS SANs must match the host.
//
// # Usage
//
//	checker := tlsverify.NewChecker(tlsverify.NewDialer(
//	    tlsverify.WithTimeout(5 * time.Second),
//	))
//	res, err := checker.Check(ctx, "custom.example.com")
//	if err != nil {
//	    // res.Valid is false, res.Details describes the leaf if one was read
//	}
//
// # Wildcards
//
// A wildcard name covers exactly one label:
//
//	MatchHostname("*.example.com", "app.example.com")     // true
//	MatchHostname("*.example.com", "example.com")         // false
//	MatchHostname("*.example.com", "sub.app.example.com") // false
//
// # Connections
//
// Every connection opened by [Dialer] is closed before PeerCertificates
// returns, whatever the outcome, and the dial plus handshake are bounded by
// the configured timeout.
package tlsverify
