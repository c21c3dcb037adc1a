// Package resolver decides which branding applies to a request.
//
// A verified custom domain matching the request host wins; otherwise the
// authenticated organization's branding applies; otherwise none. Lookups are
// cached for a short TTL, and every failure degrades to "no branding" so the
// request path never breaks.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/whitelabel/internal/metrics"
	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/internal/store"
	"github.com/dmitrymomot/whitelabel/pkg/cache"
	"github.com/dmitrymomot/whitelabel/pkg/hostrouter"
)

const (
	defaultTTL        = time.Minute
	defaultMaxEntries = 10_000

	sourceNone     = "none"
	sourceInternal = "internal"
	sourceError    = "error"
)

// Store is the read side of the config store.
type Store interface {
	GetConfig(ctx context.Context, orgID uuid.UUID) (*models.WhitelabelConfig, error)
	GetConfigByDomain(ctx context.Context, domain string) (*models.WhitelabelConfig, error)
}

// Entry is a cached lookup result. A nil Branding is a cached miss.
type Entry struct {
	Branding *models.ResolvedBranding `json:"branding,omitempty"`
}

// Resolver maps a request host and identity to branding.
type Resolver struct {
	store      Store
	loader     *cache.Loader[*Entry]
	ttl        time.Duration
	baseDomain string
	internal   []string
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache replaces the default in-process LRU.
func WithCache(c cache.Cache[*Entry]) Option {
	return func(r *Resolver) {
		if c != nil {
			r.loader = cache.NewLoader(c)
		}
	}
}

// WithTTL sets how long lookups, including misses, are cached.
func WithTTL(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithBaseDomain marks the platform's domain and its subdomains as internal.
func WithBaseDomain(domain string) Option {
	return func(r *Resolver) {
		r.baseDomain = hostrouter.NormalizeHost(domain)
	}
}

// WithInternalHosts adds hosts that never resolve by domain.
func WithInternalHosts(hosts ...string) Option {
	return func(r *Resolver) {
		for _, h := range hosts {
			if h = hostrouter.NormalizeHost(h); h != "" {
				r.internal = append(r.internal, h)
			}
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver.
func New(s Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  s,
		ttl:    defaultTTL,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loader == nil {
		r.loader = cache.NewLoader[*Entry](cache.NewMemory[*Entry](
			cache.WithMaxEntries(defaultMaxEntries),
			cache.WithDefaultTTL(r.ttl),
		))
	}
	return r
}

// Resolve returns the branding for a request to host, made by orgID when
// authenticated (uuid.Nil otherwise). It returns nil when no branding
// applies or anything goes wrong. The result is the caller's to keep.
func (r *Resolver) Resolve(ctx context.Context, host string, orgID uuid.UUID) (rb *models.ResolvedBranding) {
	source := sourceNone
	defer func() {
		if p := recover(); p != nil {
			r.logger.ErrorContext(ctx, "branding resolution panicked", slog.Any("panic", p))
			rb, source = nil, sourceError
		}
		r.metrics.Resolve(source)
	}()

	host = hostrouter.NormalizeHost(host)
	failed := false

	if r.IsInternal(host) {
		source = sourceInternal
	} else {
		found, err := r.byDomain(ctx, host)
		if err != nil {
			failed = true
			r.logger.WarnContext(ctx, "branding lookup by domain failed",
				slog.String("host", host), slog.Any("error", err))
		}
		if found != nil {
			source = models.SourceDomain
			return found.Clone()
		}
	}

	if orgID != uuid.Nil {
		found, err := r.byOrganization(ctx, orgID)
		if err != nil {
			failed = true
			r.logger.WarnContext(ctx, "branding lookup by organization failed",
				slog.String("org_id", orgID.String()), slog.Any("error", err))
		}
		if found != nil {
			source = models.SourceOrganization
			return found.Clone()
		}
	}

	if failed {
		source = sourceError
	}
	return nil
}

// Organization returns the active organization's own branding, whatever
// host the request arrived on. Like Resolve it fails open to nil.
func (r *Resolver) Organization(ctx context.Context, orgID uuid.UUID) (rb *models.ResolvedBranding) {
	if orgID == uuid.Nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.ErrorContext(ctx, "organization branding lookup panicked", slog.Any("panic", p))
			rb = nil
		}
	}()

	found, err := r.byOrganization(ctx, orgID)
	if err != nil {
		r.logger.WarnContext(ctx, "branding lookup by organization failed",
			slog.String("org_id", orgID.String()), slog.Any("error", err))
		return nil
	}
	return found.Clone()
}

// IsInternal reports whether host belongs to the platform itself and must
// never be branded through a domain match.
func (r *Resolver) IsInternal(host string) bool {
	host = hostrouter.NormalizeHost(host)
	if host == "" || hostrouter.IsLoopback(host) {
		return true
	}
	if r.baseDomain != "" && hostrouter.InDomain(host, r.baseDomain) {
		return true
	}
	for _, h := range r.internal {
		if hostrouter.InDomain(host, h) {
			return true
		}
	}
	return false
}

func (r *Resolver) byDomain(ctx context.Context, host string) (*models.ResolvedBranding, error) {
	e, err := r.loader.GetOrSet(ctx, domainKey(host), func(ctx context.Context) (*Entry, time.Duration, error) {
		cfg, err := r.store.GetConfigByDomain(ctx, host)
		if errors.Is(err, store.ErrNotFound) {
			return &Entry{}, r.ttl, nil
		}
		if err != nil {
			return nil, 0, err
		}
		// An unverified claim is a miss: anyone can point DNS at the platform.
		if cfg == nil || !cfg.Active || !cfg.CustomDomainVerified || cfg.CustomDomain != host {
			return &Entry{}, r.ttl, nil
		}
		return &Entry{Branding: models.NewResolvedBranding(cfg, models.SourceDomain)}, r.ttl, nil
	})
	if err != nil || e == nil {
		return nil, err
	}
	return e.Branding, nil
}

func (r *Resolver) byOrganization(ctx context.Context, orgID uuid.UUID) (*models.ResolvedBranding, error) {
	e, err := r.loader.GetOrSet(ctx, orgKey(orgID), func(ctx context.Context) (*Entry, time.Duration, error) {
		cfg, err := r.store.GetConfig(ctx, orgID)
		if errors.Is(err, store.ErrNotFound) {
			return &Entry{}, r.ttl, nil
		}
		if err != nil {
			return nil, 0, err
		}
		if cfg == nil || !cfg.Active {
			return &Entry{}, r.ttl, nil
		}
		return &Entry{Branding: models.NewResolvedBranding(cfg, models.SourceOrganization)}, r.ttl, nil
	})
	if err != nil || e == nil {
		return nil, err
	}
	return e.Branding, nil
}

// Invalidate drops cached lookups for an organization and the given
// domains. Empty domains are skipped.
func (r *Resolver) Invalidate(ctx context.Context, orgID uuid.UUID, domains ...string) {
	keys := make([]string, 0, len(domains)+1)
	if orgID != uuid.Nil {
		keys = append(keys, orgKey(orgID))
	}
	for _, d := range domains {
		if d = hostrouter.NormalizeHost(d); d != "" {
			keys = append(keys, domainKey(d))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := r.loader.Forget(ctx, keys...); err != nil {
		r.logger.WarnContext(ctx, "branding cache invalidation failed",
			slog.String("keys", strings.Join(keys, ",")), slog.Any("error", err))
	}
}

// Close releases the cache.
func (r *Resolver) Close() error {
	return r.loader.Cache().Close()
}

func domainKey(host string) string { return "domain:" + host }
func orgKey(orgID uuid.UUID) string { return "org:" + orgID.String() }
