package tlsverify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"time"
)

const (
	defaultPort    = "443"
	defaultTimeout = 5 * time.Second
)

// ContextDialer opens network connections. *net.Dialer satisfies it.
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Fetcher returns the certificate chain a host presents.
type Fetcher interface {
	PeerCertificates(ctx context.Context, host string) ([]*x509.Certificate, error)
}

// Dialer fetches peer certificates over a real TLS handshake.
type Dialer struct {
	dialer  ContextDialer
	port    string
	timeout time.Duration
}

// Option configures a Dialer.
type Option func(*Dialer)

// WithPort sets the port to connect to. Defaults to 443.
func WithPort(port string) Option {
	return func(d *Dialer) {
		if port != "" {
			d.port = port
		}
	}
}

// WithTimeout bounds the dial and the handshake together. Defaults to 5s.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dialer) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithNetDialer replaces the underlying network dialer.
func WithNetDialer(nd ContextDialer) Option {
	return func(d *Dialer) {
		if nd != nil {
			d.dialer = nd
		}
	}
}

// NewDialer creates a Dialer with the given options.
func NewDialer(opts ...Option) *Dialer {
	d := &Dialer{
		dialer:  &net.Dialer{},
		port:    defaultPort,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// PeerCertificates connects to host, completes a handshake with SNI set to
// host and returns the presented chain, leaf first. The chain is not trusted
// here; see Evaluate and VerifyChain.
func (d *Dialer) PeerCertificates(ctx context.Context, host string) ([]*x509.Certificate, error) {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if host == "" {
		return nil, ErrInvalidHost
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	raw, err := d.dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, d.port))
	if err != nil {
		return nil, errors.Join(ErrHandshake, err)
	}
	defer raw.Close()

	conn := tls.Client(raw, &tls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		// Inspection only: expired or mismatched certificates must still be readable.
		InsecureSkipVerify: true, //nolint:gosec
	})
	defer conn.Close()

	if err := conn.HandshakeContext(ctx); err != nil {
		return nil, errors.Join(ErrHandshake, err)
	}

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, ErrNoCertificate
	}
	return certs, nil
}
