package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/whitelabel/internal"
	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/internal/store"
	"github.com/dmitrymomot/whitelabel/internal/tasks"
	"github.com/dmitrymomot/whitelabel/internal/verifier"
	"github.com/dmitrymomot/whitelabel/pkg/job"
)

// DomainService verifies and assigns custom domains.
type DomainService interface {
	Verify(ctx context.Context, orgID uuid.UUID) (bool, error)
	Details(ctx context.Context, orgID uuid.UUID) (*models.VerificationReport, error)
	SetDomain(ctx context.Context, orgID uuid.UUID, domain string) (*models.WhitelabelConfig, error)
}

// ConfigStore is the part of the config store the admin surface reads and
// soft-deletes through.
type ConfigStore interface {
	GetConfig(ctx context.Context, orgID uuid.UUID) (*models.WhitelabelConfig, error)
	Deactivate(ctx context.Context, orgID uuid.UUID) (string, error)
}

// Invalidator drops cached branding.
type Invalidator interface {
	Invalidate(ctx context.Context, orgID uuid.UUID, domains ...string)
}

// Admin serves the operator API for custom domains.
type Admin struct {
	domains     DomainService
	store       ConfigStore
	jobs        job.Enqueuer
	invalidator Invalidator
	mw          []internal.Middleware
	verifyMW    []internal.Middleware
}

// AdminOption configures Admin.
type AdminOption func(*Admin)

// WithEnqueuer schedules background verification after a domain is saved.
func WithEnqueuer(e job.Enqueuer) AdminOption {
	return func(a *Admin) {
		a.jobs = e
	}
}

// WithInvalidator drops cached branding when a config is deactivated.
func WithInvalidator(inv Invalidator) AdminOption {
	return func(a *Admin) {
		a.invalidator = inv
	}
}

// WithAdminMiddleware wraps every admin route. Used for authentication;
// health and metrics endpoints live outside these routes.
func WithAdminMiddleware(mw ...internal.Middleware) AdminOption {
	return func(a *Admin) {
		a.mw = append(a.mw, mw...)
	}
}

// WithVerifyMiddleware wraps only the synchronous verify endpoint, which
// makes outbound DNS and TLS calls. Used for rate limiting.
func WithVerifyMiddleware(mw ...internal.Middleware) AdminOption {
	return func(a *Admin) {
		a.verifyMW = append(a.verifyMW, mw...)
	}
}

// NewAdmin creates the admin handler.
func NewAdmin(domains DomainService, s ConfigStore, opts ...AdminOption) *Admin {
	a := &Admin{domains: domains, store: s}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Admin) Routes(r internal.Router) {
	r.Route("/orgs/{orgID}", func(r internal.Router) {
		r.Use(a.mw...)
		r.DELETE("/", a.deactivate)
		r.PUT("/domain", a.setDomain)
		r.GET("/domain/setup", a.setup)
		r.GET("/domain/verification", a.details)
		r.POST("/domain/verify", a.verify, a.verifyMW...)
	})
}

// DomainSetup is what a tenant needs to finish pointing its domain at the
// platform, plus the outcome of the last check.
type DomainSetup struct {
	OrganizationID        uuid.UUID          `json:"organization_id"`
	Domain                string             `json:"domain,omitempty"`
	Verified              bool               `json:"verified"`
	VerifiedAt            *time.Time         `json:"verified_at,omitempty"`
	LastVerificationAt    *time.Time         `json:"last_verification_at,omitempty"`
	LastVerificationError string             `json:"last_verification_error,omitempty"`
	Records               []models.DNSRecord `json:"records"`
}

func newDomainSetup(cfg *models.WhitelabelConfig) DomainSetup {
	records := cfg.CustomDomainDNS
	if records == nil {
		records = []models.DNSRecord{}
	}
	return DomainSetup{
		OrganizationID:        cfg.OrganizationID,
		Domain:                cfg.CustomDomain,
		Verified:              cfg.CustomDomainVerified,
		VerifiedAt:            cfg.CustomDomainVerifiedAt,
		LastVerificationAt:    cfg.LastVerificationAt,
		LastVerificationError: cfg.LastVerificationError,
		Records:               records,
	}
}

// VerifyResult is the response of the verify endpoint.
type VerifyResult struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Verified       bool      `json:"verified"`
}

type setDomainRequest struct {
	Domain string `json:"domain"`
}

func (a *Admin) details(c internal.Context) error {
	orgID, err := internal.ParamUUID(c, "orgID")
	if err != nil {
		return err
	}

	report, err := a.domains.Details(c, orgID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (a *Admin) verify(c internal.Context) error {
	orgID, err := internal.ParamUUID(c, "orgID")
	if err != nil {
		return err
	}

	verified, err := a.domains.Verify(c, orgID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, VerifyResult{OrganizationID: orgID, Verified: verified})
}

func (a *Admin) setDomain(c internal.Context) error {
	orgID, err := internal.ParamUUID(c, "orgID")
	if err != nil {
		return err
	}

	var req setDomainRequest
	if err := c.BindJSON(&req); err != nil {
		return internal.ErrBadRequest("Invalid request body", internal.WithError(err), internal.WithErrorCode("invalid_body"))
	}

	cfg, err := a.domains.SetDomain(c, orgID, req.Domain)
	if err != nil {
		return domainError(err)
	}

	if cfg.CustomDomain != "" && a.jobs != nil {
		// The domain is saved either way; an operator can still verify by hand.
		if err := tasks.EnqueueVerify(c, a.jobs, orgID); err != nil {
			c.LogWarn("failed to enqueue verification",
				slog.String("org_id", orgID.String()), slog.Any("error", err))
		}
	}
	return c.JSON(http.StatusOK, newDomainSetup(cfg))
}

func (a *Admin) setup(c internal.Context) error {
	orgID, err := internal.ParamUUID(c, "orgID")
	if err != nil {
		return err
	}

	cfg, err := a.store.GetConfig(c, orgID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, newDomainSetup(cfg))
}

func (a *Admin) deactivate(c internal.Context) error {
	orgID, err := internal.ParamUUID(c, "orgID")
	if err != nil {
		return err
	}

	domain, err := a.store.Deactivate(c, orgID)
	if err != nil {
		return domainError(err)
	}
	if a.invalidator != nil {
		a.invalidator.Invalidate(c, orgID, domain)
	}
	return c.NoContent(http.StatusNoContent)
}

func domainError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return internal.ErrNotFound("Configuration not found", internal.WithError(err), internal.WithErrorCode("not_found"))
	case errors.Is(err, verifier.ErrNoCustomDomain):
		return internal.ErrNotFound("No custom domain configured", internal.WithError(err), internal.WithErrorCode("no_custom_domain"))
	case errors.Is(err, verifier.ErrInvalidDomain):
		return internal.ErrUnprocessable("Invalid custom domain", internal.WithError(err), internal.WithErrorCode("invalid_domain"))
	case errors.Is(err, store.ErrDomainTaken):
		return internal.ErrConflict("Domain is already in use", internal.WithError(err), internal.WithErrorCode("domain_taken"))
	case errors.Is(err, store.ErrDomainChanged):
		return internal.ErrConflict("Domain changed during verification", internal.WithError(err), internal.WithErrorCode("domain_changed"))
	default:
		return err
	}
}
