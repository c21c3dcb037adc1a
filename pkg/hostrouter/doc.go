// Package hostrouter normalizes request hosts and dispatches on them.
//
// The platform serves two kinds of traffic on one listener: its own hosts
// (the admin API, the platform base domain) and tenant custom domains.
// [Router] sends exact and "*.domain" patterns to their handlers and every
// other host to a fallback, which is where custom domains land.
//
// # Host Normalization
//
// [NormalizeHost] strips the port, lowercases and drops a trailing dot.
// IPv6 literals keep their brackets:
//
//	"Custom.Example.com:8443" -> "custom.example.com"
//	"custom.example.com."     -> "custom.example.com"
//	"[::1]:8080"              -> "[::1]"
//
// # Classification
//
// [IsLoopback] and [InDomain] answer the questions branding resolution asks
// before it trusts a host as a tenant domain:
//
//	hostrouter.IsLoopback("127.0.0.1")                  // true
//	hostrouter.InDomain("app.platform.com", "platform.com") // true
package hostrouter
