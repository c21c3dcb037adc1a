package tlsverify

import "errors"

var (
	ErrInvalidHost            = errors.New("tlsverify: invalid host")
	ErrHandshake              = errors.New("tlsverify: tls handshake failed")
	ErrNoCertificate          = errors.New("tlsverify: no peer certificate")
	ErrCertificateExpired     = errors.New("tlsverify: certificate expired")
	ErrCertificateNotYetValid = errors.New("tlsverify: certificate not yet valid")
	ErrHostnameMismatch       = errors.New("tlsverify: certificate does not match host")
	ErrUntrustedChain         = errors.New("tlsverify: certificate chain not trusted")
)
