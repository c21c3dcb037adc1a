package hostrouter

import (
	"net"
	"net/http"
	"strings"
)

// GetDomain returns the normalized host of the request.
func GetDomain(r *http.Request) string {
	return NormalizeHost(r.Host)
}

// NormalizeHost strips the port, lowercases and removes a trailing dot.
// IPv6 literals keep their brackets. A bare IPv6 literal such as "::1" is
// returned as is; a port is only split off when it cannot be part of the
// address.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	switch {
	case strings.HasPrefix(host, "["):
		if end := strings.IndexByte(host, ']'); end != -1 {
			host = host[:end+1]
		}
	case strings.Count(host, ":") == 1:
		host = host[:strings.IndexByte(host, ':')]
	}
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

// IsLoopback reports whether host names the local machine:
// "localhost", any "*.localhost" name, or a loopback IP literal.
func IsLoopback(host string) bool {
	host = NormalizeHost(host)
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}

// InDomain reports whether host equals domain or is one of its subdomains.
func InDomain(host, domain string) bool {
	host = NormalizeHost(host)
	domain = NormalizeHost(domain)
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
