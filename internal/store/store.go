// Package store holds the errors shared by whitelabel config stores.
// Consumers declare the narrow interfaces they need; postgres implements them.
package store

import "errors"

var (
	ErrNotFound      = errors.New("store: config not found")
	ErrDomainChanged = errors.New("store: custom domain changed since verification started")
	ErrDomainTaken   = errors.New("store: custom domain already claimed by another organization")
)
