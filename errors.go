package whitelabel

import "errors"

var (
	ErrUnknownCacheBackend = errors.New("whitelabel: unknown cache backend")
	ErrRedisRequired       = errors.New("whitelabel: redis cache backend needs a redis client")
	ErrInvalidRateLimit    = errors.New("whitelabel: invalid verify rate limit")
	ErrStoreRequired       = errors.New("whitelabel: config store is required")
)
