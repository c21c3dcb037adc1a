package verifier

import "errors"

var (
	ErrStore              = errors.New("verifier: config store failed")
	ErrNoCustomDomain     = errors.New("verifier: organization has no custom domain")
	ErrInvalidDomain      = errors.New("verifier: invalid custom domain")
	ErrCNAMENotConfigured = errors.New("verifier: no expected CNAME target")
	ErrTXTNotConfigured   = errors.New("verifier: TXT challenge required but not configured")
	ErrCheckPanicked      = errors.New("verifier: check panicked")
)

const errDomainHeld = "domain is verified by another organization"
