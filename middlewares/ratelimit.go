package middlewares

import (
	"log/slog"
	"net"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/dmitrymomot/whitelabel/internal"
)

// DefaultRateLimitPrefix namespaces limiter keys in the shared store.
const DefaultRateLimitPrefix = "whitelabel:ratelimit"

// NewLimiter builds a limiter for rate, backed by Redis when client is
// non-nil so replicas share counters, and by process memory otherwise.
func NewLimiter(rate limiter.Rate, client redis.UniversalClient) (*limiter.Limiter, error) {
	opts := limiter.StoreOptions{Prefix: DefaultRateLimitPrefix}
	if client == nil {
		return limiter.New(memory.NewStoreWithOptions(opts), rate), nil
	}
	store, err := sredis.NewStoreWithOptions(client, opts)
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}

// RateLimitKeyFunc derives the bucket a request counts against.
type RateLimitKeyFunc func(c internal.Context) string

// ByParam buckets requests by a URL parameter, such as the organization id.
func ByParam(name string) RateLimitKeyFunc {
	return func(c internal.Context) string {
		return name + ":" + c.Param(name)
	}
}

// ByClientIP buckets requests by the remote address.
func ByClientIP(c internal.Context) string {
	addr := c.Request().RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return "ip:" + addr
}

// RateLimit rejects requests over l's rate with 429. A failing store lets
// the request through.
func RateLimit(l *limiter.Limiter, key RateLimitKeyFunc) internal.Middleware {
	if key == nil {
		key = ByClientIP
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			lc, err := l.Get(c.Context(), key(c))
			if err != nil {
				c.LogWarn("rate limiter unavailable", slog.Any("error", err))
				return next(c)
			}

			c.SetHeader("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
			c.SetHeader("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
			c.SetHeader("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))
			if lc.Reached {
				return internal.ErrTooManyRequests("Too many requests", internal.WithErrorCode("rate_limited"))
			}
			return next(c)
		}
	}
}
