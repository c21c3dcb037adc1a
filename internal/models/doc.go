// Package models defines the whitelabel domain types shared by the store,
// the verifier and the request pipeline.
package models
