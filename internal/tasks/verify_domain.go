package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/whitelabel/internal/store"
	"github.com/dmitrymomot/whitelabel/pkg/job"
)

// VerifyDomainTask is the registered name of the one-off verification job.
const VerifyDomainTask = "verify_domain"

// Duplicate enqueues for one organization within this window collapse.
const verifyDedupWindow = time.Minute

// Verifier runs and persists a domain verification.
type Verifier interface {
	Verify(ctx context.Context, orgID uuid.UUID) (bool, error)
}

// VerifyDomainPayload is the verify_domain job payload.
type VerifyDomainPayload struct {
	OrganizationID uuid.UUID `json:"org_id"`
}

// VerifyDomain verifies one organization's domain in the background.
type VerifyDomain struct {
	verifier Verifier
	logger   *slog.Logger
}

// NewVerifyDomain creates the verify_domain task.
func NewVerifyDomain(v Verifier, logger *slog.Logger) *VerifyDomain {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &VerifyDomain{verifier: v, logger: logger}
}

func (t *VerifyDomain) Name() string { return VerifyDomainTask }

// Handle verifies the organization's current domain. A domain replaced
// while the checks ran is not an error: the replacement has its own job.
func (t *VerifyDomain) Handle(ctx context.Context, p VerifyDomainPayload) error {
	if p.OrganizationID == uuid.Nil {
		return fmt.Errorf("%w: missing org_id", job.ErrInvalidPayload)
	}

	verified, err := t.verifier.Verify(ctx, p.OrganizationID)
	if errors.Is(err, store.ErrDomainChanged) {
		t.logger.InfoContext(ctx, "domain changed during verification",
			slog.String("org_id", p.OrganizationID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	t.logger.DebugContext(ctx, "verification job done",
		slog.String("org_id", p.OrganizationID.String()),
		slog.Bool("verified", verified))
	return nil
}

// EnqueueVerify schedules verify_domain for orgID. Repeated calls within a
// minute insert a single job.
func EnqueueVerify(ctx context.Context, e job.Enqueuer, orgID uuid.UUID) error {
	return e.Enqueue(ctx, VerifyDomainTask, VerifyDomainPayload{OrganizationID: orgID},
		job.UniqueFor(verifyDedupWindow),
		job.UniqueKey(orgID.String()),
	)
}
