package dnsverify

import "errors"

var (
	ErrInvalidInput      = errors.New("dnsverify: invalid domain name or token")
	ErrDNSLookupFailed   = errors.New("dnsverify: dns lookup failed")
	ErrNoRecords         = errors.New("dnsverify: no records found")
	ErrCNAMENotFound     = errors.New("dnsverify: cname record not found")
	ErrCNAMEMismatch     = errors.New("dnsverify: cname points to unexpected target")
	ErrTXTRecordNotFound = errors.New("dnsverify: txt record not found")
	ErrTXTMismatch       = errors.New("dnsverify: txt record does not match token")
)
