package whitelabel

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"

	"github.com/dmitrymomot/whitelabel/internal"
	"github.com/dmitrymomot/whitelabel/internal/handlers"
	"github.com/dmitrymomot/whitelabel/internal/metrics"
	"github.com/dmitrymomot/whitelabel/internal/resolver"
	"github.com/dmitrymomot/whitelabel/internal/tasks"
	"github.com/dmitrymomot/whitelabel/internal/verifier"
	"github.com/dmitrymomot/whitelabel/middlewares"
	"github.com/dmitrymomot/whitelabel/pkg/cache"
	"github.com/dmitrymomot/whitelabel/pkg/dnsverify"
	"github.com/dmitrymomot/whitelabel/pkg/job"
	"github.com/dmitrymomot/whitelabel/pkg/tlsverify"
)

// Store is everything the subsystem needs from config persistence.
// *postgres.Store implements it.
type Store interface {
	verifier.Store
	resolver.Store
	handlers.ConfigStore
	tasks.CandidateLister
}

// Service wires the verifier, the resolver and their collaborators from a
// Config, and builds the admin and tenant Apps on top of them.
type Service struct {
	cfg      Config
	store    Store
	verifier *verifier.Verifier
	resolver *resolver.Resolver
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	limiter  *limiter.Limiter
	logger   *slog.Logger
}

type serviceConfig struct {
	redis    redis.UniversalClient
	registry *prometheus.Registry
	logger   *slog.Logger
	dns      dnsverify.Resolver
	certs    verifier.CertificateChecker
}

// ServiceOption configures NewService.
type ServiceOption func(*serviceConfig)

// WithRedis shares the branding cache and rate-limit counters across
// replicas through client.
func WithRedis(client redis.UniversalClient) ServiceOption {
	return func(c *serviceConfig) {
		c.redis = client
	}
}

// WithRegistry registers metrics with reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) ServiceOption {
	return func(c *serviceConfig) {
		c.registry = reg
	}
}

// WithServiceLogger sets the logger shared by all components.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(c *serviceConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDNSResolver replaces net.DefaultResolver.
func WithDNSResolver(r dnsverify.Resolver) ServiceOption {
	return func(c *serviceConfig) {
		c.dns = r
	}
}

// WithCertificateChecker replaces the TLS dialer-based checker.
func WithCertificateChecker(cc verifier.CertificateChecker) ServiceOption {
	return func(c *serviceConfig) {
		c.certs = cc
	}
}

// NewService builds the subsystem.
func NewService(cfg Config, s Store, opts ...ServiceOption) (*Service, error) {
	if s == nil {
		return nil, ErrStoreRequired
	}

	sc := &serviceConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.registry == nil {
		sc.registry = prometheus.NewRegistry()
		sc.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m, err := metrics.New(sc.registry)
	if err != nil {
		return nil, err
	}

	brandingCache, err := newBrandingCache(cfg, sc.redis)
	if err != nil {
		return nil, err
	}
	resolverOpts := []resolver.Option{
		resolver.WithCache(brandingCache),
		resolver.WithTTL(cfg.CacheTTL),
		resolver.WithBaseDomain(cfg.BaseDomain),
		resolver.WithInternalHosts(cfg.InternalHosts...),
		resolver.WithMetrics(m),
		resolver.WithLogger(sc.logger),
	}
	res := resolver.New(s, resolverOpts...)

	if sc.dns == nil {
		sc.dns = net.DefaultResolver
	}
	if sc.certs == nil {
		dialer := tlsverify.NewDialer(tlsverify.WithPort(cfg.TLSPort), tlsverify.WithTimeout(cfg.CheckTimeout))
		sc.certs = tlsverify.NewChecker(dialer, tlsverify.WithChainVerification(cfg.VerifyChain))
	}
	v := verifier.New(s, sc.dns, sc.certs,
		verifier.WithPlatformName(cfg.PlatformName),
		verifier.WithRoutingDomain(cfg.RoutingDomain),
		verifier.WithBaseDomain(cfg.BaseDomain),
		verifier.WithCheckTimeout(cfg.CheckTimeout),
		verifier.WithRequireTXT(cfg.RequireTXT),
		verifier.WithApexFallback(cfg.AllowApexFallback),
		verifier.WithInvalidator(res),
		verifier.WithMetrics(m),
		verifier.WithLogger(sc.logger),
	)

	rate, err := limiter.NewRateFromFormatted(cfg.VerifyRateLimit)
	if err != nil {
		_ = res.Close()
		return nil, errors.Join(ErrInvalidRateLimit, err)
	}
	l, err := middlewares.NewLimiter(rate, sc.redis)
	if err != nil {
		_ = res.Close()
		return nil, err
	}

	return &Service{
		cfg:      cfg,
		store:    s,
		verifier: v,
		resolver: res,
		metrics:  m,
		gatherer: sc.registry,
		limiter:  l,
		logger:   sc.logger,
	}, nil
}

func newBrandingCache(cfg Config, client redis.UniversalClient) (cache.Cache[*resolver.Entry], error) {
	switch cfg.CacheBackend {
	case "", CacheMemory:
		return cache.NewMemory[*resolver.Entry](
			cache.WithMaxEntries(int(cfg.CacheMaxEntries)),
			cache.WithDefaultTTL(cfg.CacheTTL),
		), nil
	case CacheRistretto:
		r, err := cache.NewRistretto[*resolver.Entry](cfg.CacheMaxEntries, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		return r, nil
	case CacheRedis:
		if client == nil {
			return nil, ErrRedisRequired
		}
		return cache.NewRedis[*resolver.Entry](client, nil,
			cache.WithPrefix("whitelabel:branding"),
			cache.WithRedisDefaultTTL(cfg.CacheTTL),
		), nil
	default:
		return nil, ErrUnknownCacheBackend
	}
}

// Verifier returns the domain verifier.
func (s *Service) Verifier() *verifier.Verifier { return s.verifier }

// Resolver returns the branding resolver.
func (s *Service) Resolver() *resolver.Resolver { return s.resolver }

// Gatherer exposes the metrics registry.
func (s *Service) Gatherer() prometheus.Gatherer { return s.gatherer }

// Tenant builds the App in front of the product. Requests get their
// branding resolved, may be redirected to the canonical domain, and are
// passed to upstream; HTML and JSON responses come back branded.
func (s *Service) Tenant(upstream http.Handler, opts ...Option) *App {
	mw := []Middleware{
		middlewares.RequestID(),
		middlewares.Recover(),
		middlewares.Branding(s.resolver,
			middlewares.WithOrgExtractor(middlewares.HeaderOrgExtractor(s.identityHeader()))),
	}
	if s.cfg.EnforceCanonicalDomain {
		mw = append(mw, middlewares.Enforce(s.resolver))
	}
	mw = append(mw, middlewares.Inject(
		middlewares.WithInjectMaxBytes(s.cfg.InjectMaxBytes),
		middlewares.WithInjectMetrics(s.metrics),
	))

	base := []Option{
		internal.WithLogger(s.logger),
		internal.WithErrorHandler(middlewares.ErrorHandler),
		internal.WithMiddleware(mw...),
		internal.WithHandlers(handlers.NewTenant(handlers.WithBrandingMiddleware(
			middlewares.CORS(middlewares.WithAllowHeaders("Origin", "Accept", "Content-Type", s.identityHeader())),
		))),
		internal.WithMount("/", upstream),
	}
	return internal.New(append(base, opts...)...)
}

// Admin builds the operator API. Every /orgs route needs token as a bearer
// credential; /metrics and health endpoints stay open for scrapers and
// probes. jobs may be nil, in which case saving a domain only resets it.
func (s *Service) Admin(token string, jobs job.Enqueuer, opts ...Option) *App {
	admin := handlers.NewAdmin(s.verifier, s.store,
		handlers.WithEnqueuer(jobs),
		handlers.WithInvalidator(s.resolver),
		handlers.WithAdminMiddleware(middlewares.BearerAuth(token)),
		handlers.WithVerifyMiddleware(middlewares.RateLimit(s.limiter, middlewares.ByParam("orgID"))),
	)

	base := []Option{
		internal.WithLogger(s.logger),
		internal.WithErrorHandler(middlewares.ErrorHandler),
		internal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.Timeout(middlewares.DefaultTimeout),
		),
		internal.WithHandlers(admin),
		internal.WithMount("/metrics", metrics.Handler(s.gatherer)),
	}
	return internal.New(append(base, opts...)...)
}

// JobOptions registers the verification tasks with a job manager.
func (s *Service) JobOptions() []job.Option {
	return []job.Option{
		job.WithTask(tasks.NewVerifyDomain(s.verifier, s.logger)),
		job.WithScheduledTask(tasks.NewRecheckDomains(s.verifier, s.store,
			tasks.WithSchedule(s.cfg.RecheckSchedule),
			tasks.WithConcurrency(s.cfg.RecheckConcurrency),
			tasks.WithLogger(s.logger),
		)),
		job.WithLogger(s.logger),
	}
}

// Close releases the branding cache.
func (s *Service) Close() error {
	return s.resolver.Close()
}

func (s *Service) identityHeader() string {
	if s.cfg.IdentityHeader == "" {
		return middlewares.DefaultIdentityHeader
	}
	return s.cfg.IdentityHeader
}
