package whitelabel

import "time"

// Cache backends for resolved branding.
const (
	CacheMemory    = "memory"
	CacheRistretto = "ristretto"
	CacheRedis     = "redis"
)

// Config holds the subsystem settings, populated from the environment.
type Config struct {
	// BaseDomain is the platform's own domain; hosts under it never match a
	// tenant's custom domain and tenants cannot claim it.
	BaseDomain    string   `env:"BASE_DOMAIN"`
	PlatformName  string   `env:"PLATFORM_NAME" envDefault:"platform"`
	RoutingDomain string   `env:"ROUTING_DOMAIN"`
	InternalHosts []string `env:"INTERNAL_HOSTS" envSeparator:","`

	CacheBackend    string        `env:"CACHE_BACKEND" envDefault:"memory"`
	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"60s"`
	CacheMaxEntries int64         `env:"CACHE_MAX_ENTRIES" envDefault:"10000"`

	CheckTimeout      time.Duration `env:"CHECK_TIMEOUT" envDefault:"5s"`
	TLSPort           string        `env:"TLS_PORT" envDefault:"443"`
	VerifyChain       bool          `env:"VERIFY_CHAIN" envDefault:"true"`
	RequireTXT        bool          `env:"REQUIRE_TXT" envDefault:"false"`
	AllowApexFallback bool          `env:"ALLOW_APEX_FALLBACK" envDefault:"true"`

	EnforceCanonicalDomain bool   `env:"ENFORCE_CANONICAL_DOMAIN" envDefault:"true"`
	InjectMaxBytes         int64  `env:"INJECT_MAX_BYTES" envDefault:"5242880"`
	IdentityHeader         string `env:"IDENTITY_HEADER" envDefault:"X-Organization-ID"`

	// VerifyRateLimit is a ulule/limiter formatted rate, per organization.
	VerifyRateLimit    string `env:"VERIFY_RATE_LIMIT" envDefault:"6-M"`
	RecheckSchedule    string `env:"RECHECK_SCHEDULE" envDefault:"0 * * * *"`
	RecheckConcurrency int    `env:"RECHECK_CONCURRENCY" envDefault:"8"`
}

// DefaultConfig returns the values the env tags default to.
func DefaultConfig() Config {
	return Config{
		PlatformName:           "platform",
		CacheBackend:           CacheMemory,
		CacheTTL:               time.Minute,
		CacheMaxEntries:        10_000,
		CheckTimeout:           5 * time.Second,
		TLSPort:                "443",
		VerifyChain:            true,
		AllowApexFallback:      true,
		EnforceCanonicalDomain: true,
		InjectMaxBytes:         5 << 20,
		IdentityHeader:         "X-Organization-ID",
		VerifyRateLimit:        "6-M",
		RecheckSchedule:        "0 * * * *",
		RecheckConcurrency:     8,
	}
}
