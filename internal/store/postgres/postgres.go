// Package postgres stores whitelabel configs in PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/internal/store"
	"github.com/dmitrymomot/whitelabel/pkg/db"
	"github.com/dmitrymomot/whitelabel/pkg/id"
)

const uniqueViolation = "23505"

const selectColumns = `id, organization_id, custom_domain, custom_domain_verified,
	custom_domain_verified_at, last_verification_at, last_verification_error,
	custom_domain_dns, branding, active, created_at, updated_at`

// Store implements the whitelabel config store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// New creates a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

// GetConfig returns the active config of an organization.
func (s *Store) GetConfig(ctx context.Context, orgID uuid.UUID) (*models.WhitelabelConfig, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM whitelabel_configs WHERE organization_id = $1 AND active`, orgID)
	return scanConfig(row)
}

// GetConfigByDomain returns the active config claiming domain. Several
// organizations may claim a domain; the verified claim wins, otherwise the
// most recent one is returned. Callers decide whether an unverified claim is
// trusted.
func (s *Store) GetConfigByDomain(ctx context.Context, domain string) (*models.WhitelabelConfig, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM whitelabel_configs
		WHERE custom_domain = $1 AND active
		ORDER BY custom_domain_verified DESC, updated_at DESC
		LIMIT 1`, domain)
	return scanConfig(row)
}

// UpdateVerification records a verification verdict for domain. The write is
// rejected with store.ErrDomainChanged when the organization's domain is no
// longer the one that was checked, and with store.ErrDomainTaken when another
// organization already holds the domain verified.
func (s *Store) UpdateVerification(ctx context.Context, orgID uuid.UUID, domain string, verified bool, report *models.VerificationReport) error {
	checkedAt := s.now().UTC()
	summary := ""
	if report != nil {
		if !report.CheckedAt.IsZero() {
			checkedAt = report.CheckedAt.UTC()
		}
		summary = report.ErrorSummary()
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE whitelabel_configs SET
			custom_domain_verified = $3,
			custom_domain_verified_at = CASE
				WHEN NOT $3 THEN NULL
				WHEN custom_domain_verified THEN custom_domain_verified_at
				ELSE $4 END,
			last_verification_at = $4,
			last_verification_error = $5,
			updated_at = now()
		WHERE organization_id = $1 AND custom_domain = $2 AND active`,
		orgID, domain, verified, checkedAt, summary)
	if isUniqueViolation(err) {
		return store.ErrDomainTaken
	}
	if err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM whitelabel_configs WHERE organization_id = $1 AND active)`, orgID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrDomainChanged
}

// SetCustomDomain claims domain for an organization, creating the config on
// first use. The verified flag is always reset. An empty domain releases the
// current one. Claiming a domain another organization holds verified fails
// with store.ErrDomainTaken; unverified claims never block each other. The
// previously stored domain is returned for cache invalidation.
func (s *Store) SetCustomDomain(ctx context.Context, orgID uuid.UUID, domain string, records []models.DNSRecord) (cfg *models.WhitelabelConfig, previous string, err error) {
	var domainArg *string
	if domain != "" {
		domainArg = &domain
	}
	if records == nil {
		records = []models.DNSRecord{}
	}

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var prev *string
		err := tx.QueryRow(ctx,
			`SELECT custom_domain FROM whitelabel_configs WHERE organization_id = $1 FOR UPDATE`, orgID,
		).Scan(&prev)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if prev != nil {
			previous = *prev
		}

		if domainArg != nil {
			var taken bool
			if err := tx.QueryRow(ctx, `
				SELECT EXISTS (
					SELECT 1 FROM whitelabel_configs
					WHERE custom_domain = $1 AND custom_domain_verified AND active
						AND organization_id <> $2
				)`, domain, orgID,
			).Scan(&taken); err != nil {
				return err
			}
			if taken {
				return store.ErrDomainTaken
			}
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO whitelabel_configs (id, organization_id, custom_domain, custom_domain_dns)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (organization_id) DO UPDATE SET
				custom_domain = EXCLUDED.custom_domain,
				custom_domain_dns = EXCLUDED.custom_domain_dns,
				custom_domain_verified = FALSE,
				custom_domain_verified_at = NULL,
				last_verification_at = NULL,
				last_verification_error = '',
				active = TRUE,
				updated_at = now()
			RETURNING `+selectColumns,
			id.NewULID(), orgID, domainArg, records)
		cfg, err = scanConfig(row)
		return err
	})
	if errors.Is(err, store.ErrDomainTaken) || isUniqueViolation(err) {
		return nil, "", store.ErrDomainTaken
	}
	if err != nil {
		return nil, "", fmt.Errorf("set custom domain: %w", err)
	}
	return cfg, previous, nil
}

// ListVerificationCandidates returns organizations with a custom domain,
// least recently checked first.
func (s *Store) ListVerificationCandidates(ctx context.Context, limit int) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT organization_id FROM whitelabel_configs
		WHERE custom_domain IS NOT NULL AND active
		ORDER BY last_verification_at NULLS FIRST, organization_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list verification candidates: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("list verification candidates: %w", err)
	}
	return ids, nil
}

// Deactivate soft-deletes the config and drops its verified flag. The
// domain it held is returned for cache invalidation.
func (s *Store) Deactivate(ctx context.Context, orgID uuid.UUID) (string, error) {
	var domain *string
	err := s.pool.QueryRow(ctx, `
		UPDATE whitelabel_configs SET
			active = FALSE,
			custom_domain_verified = FALSE,
			custom_domain_verified_at = NULL,
			updated_at = now()
		WHERE organization_id = $1 AND active
		RETURNING custom_domain`, orgID).Scan(&domain)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("deactivate: %w", err)
	}
	if domain == nil {
		return "", nil
	}
	return *domain, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func scanConfig(row pgx.Row) (*models.WhitelabelConfig, error) {
	var (
		cfg    models.WhitelabelConfig
		domain *string
	)
	err := row.Scan(
		&cfg.ID,
		&cfg.OrganizationID,
		&domain,
		&cfg.CustomDomainVerified,
		&cfg.CustomDomainVerifiedAt,
		&cfg.LastVerificationAt,
		&cfg.LastVerificationError,
		&cfg.CustomDomainDNS,
		&cfg.Branding,
		&cfg.Active,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if domain != nil {
		cfg.CustomDomain = *domain
	}
	return &cfg, nil
}
