package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/whitelabel/internal/store"
)

// RecheckDomainsTask is the registered name of the periodic re-verification.
const RecheckDomainsTask = "recheck_domains"

// Recheck defaults.
const (
	DefaultRecheckSchedule    = "0 * * * *"
	DefaultRecheckConcurrency = 8
	DefaultRecheckBatchSize   = 500
)

// CandidateLister lists organizations whose domains are due a recheck.
type CandidateLister interface {
	ListVerificationCandidates(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// RecheckDomains re-verifies configured domains so that expired
// certificates and removed DNS records unverify them.
type RecheckDomains struct {
	verifier    Verifier
	lister      CandidateLister
	logger      *slog.Logger
	schedule    string
	concurrency int
	batchSize   int
}

// RecheckOption configures RecheckDomains.
type RecheckOption func(*RecheckDomains)

// WithSchedule sets the five-field cron schedule.
func WithSchedule(expr string) RecheckOption {
	return func(t *RecheckDomains) {
		if expr != "" {
			t.schedule = expr
		}
	}
}

// WithConcurrency bounds how many organizations are verified at once.
func WithConcurrency(n int) RecheckOption {
	return func(t *RecheckDomains) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

// WithBatchSize caps the organizations handled per run.
func WithBatchSize(n int) RecheckOption {
	return func(t *RecheckDomains) {
		if n > 0 {
			t.batchSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RecheckOption {
	return func(t *RecheckDomains) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewRecheckDomains creates the recheck_domains task.
func NewRecheckDomains(v Verifier, lister CandidateLister, opts ...RecheckOption) *RecheckDomains {
	t := &RecheckDomains{
		verifier:    v,
		lister:      lister,
		logger:      slog.New(slog.DiscardHandler),
		schedule:    DefaultRecheckSchedule,
		concurrency: DefaultRecheckConcurrency,
		batchSize:   DefaultRecheckBatchSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *RecheckDomains) Name() string     { return RecheckDomainsTask }
func (t *RecheckDomains) Schedule() string { return t.schedule }

// Handle verifies the least recently checked domains. One organization's
// failure does not stop the others; it is logged and the run goes on.
func (t *RecheckDomains) Handle(ctx context.Context) error {
	ids, err := t.lister.ListVerificationCandidates(ctx, t.batchSize)
	if err != nil {
		return err
	}

	var verified, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(t.concurrency)

	for _, orgID := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ok, err := t.verifier.Verify(ctx, orgID)
			switch {
			case errors.Is(err, store.ErrDomainChanged):
			case err != nil:
				failed.Add(1)
				t.logger.WarnContext(ctx, "recheck failed",
					slog.String("org_id", orgID.String()),
					slog.Any("error", err))
			case ok:
				verified.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	t.logger.InfoContext(ctx, "domains rechecked",
		slog.Int("total", len(ids)),
		slog.Int64("verified", verified.Load()),
		slog.Int64("failed", failed.Load()))
	return ctx.Err()
}
