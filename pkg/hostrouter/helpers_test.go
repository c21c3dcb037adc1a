package hostrouter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/whitelabel/pkg/hostrouter"
)

func TestNormalizeHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{"simple domain", "custom.example.com", "custom.example.com"},
		{"domain with port", "custom.example.com:8443", "custom.example.com"},
		{"uppercase", "Custom.Example.COM", "custom.example.com"},
		{"trailing dot", "custom.example.com.", "custom.example.com"},
		{"trailing dot with port", "custom.example.com.:443", "custom.example.com"},
		{"IPv4 with port", "192.168.1.1:8080", "192.168.1.1"},
		{"IPv6", "[::1]", "[::1]"},
		{"IPv6 with port", "[2001:db8::1]:8080", "[2001:db8::1]"},
		{"bare IPv6 loopback", "::1", "::1"},
		{"bare IPv6", "2001:DB8::1", "2001:db8::1"},
		{"localhost with port", "localhost:3000", "localhost"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, hostrouter.NormalizeHost(tt.host))
		})
	}
}

func TestGetDomain(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "API.Example.Com:8080"
	require.Equal(t, "api.example.com", hostrouter.GetDomain(req))
}

func TestIsLoopback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"localhost:8080", true},
		{"tenant.localhost", true},
		{"127.0.0.1", true},
		{"127.0.0.53:53", true},
		{"[::1]:8080", true},
		{"::1", true},
		{"2001:db8::1", false},
		{"10.0.0.1", false},
		{"localhost.example.com", false},
		{"custom.example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, hostrouter.IsLoopback(tt.host))
		})
	}
}

func TestInDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host   string
		domain string
		want   bool
	}{
		{"platform.com", "platform.com", true},
		{"app.platform.com", "platform.com", true},
		{"a.b.platform.com:443", "Platform.com", true},
		{"notplatform.com", "platform.com", false},
		{"platform.com.evil.io", "platform.com", false},
		{"platform.com", "", false},
		{"", "platform.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.host+"|"+tt.domain, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, hostrouter.InDomain(tt.host, tt.domain))
		})
	}
}
