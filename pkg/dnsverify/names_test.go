package dnsverify_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/whitelabel/pkg/dnsverify"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"lowercase", "Example.COM", "example.com", false},
		{"trailing dot", "example.com.", "example.com", false},
		{"whitespace", "  example.com ", "example.com", false},
		{"unicode", "bücher.de", "xn--bcher-kva.de", false},
		{"punycode kept", "xn--bcher-kva.de", "xn--bcher-kva.de", false},
		{"empty", "", "", true},
		{"only dot", ".", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := dnsverify.NormalizeName(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, dnsverify.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEqualNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want bool
	}{
		{"app.platform.com", "app.platform.com", true},
		{"APP.Platform.com.", "app.platform.com", true},
		{"app.platform.com.", "app.platform.com.", true},
		{"bücher.de", "xn--bcher-kva.de", true},
		{"_acme-verify.example.com", "_ACME-verify.example.com.", true},
		{"app.platform.com", "wrong.domain.com", false},
		{"app.platform.com", "platform.com", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, dnsverify.EqualNames(tt.a, tt.b))
		})
	}
}

func TestTXTRecordName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "_acme-verify.custom.example.com", dnsverify.TXTRecordName("acme", "custom.example.com"))
	require.Equal(t, "_acme-verify.custom.example.com", dnsverify.TXTRecordName("ACME", "Custom.Example.com."))
}
