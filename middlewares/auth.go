package middlewares

import (
	"crypto/subtle"
	"strings"

	"github.com/dmitrymomot/whitelabel/internal"
)

// BearerAuth admits only requests carrying token as a bearer credential.
// An empty token rejects everything.
func BearerAuth(token string) internal.Middleware {
	want := []byte(token)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			got, ok := strings.CutPrefix(c.Header("Authorization"), "Bearer ")
			if !ok || len(want) == 0 || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), want) != 1 {
				c.SetHeader("WWW-Authenticate", `Bearer realm="whitelabel"`)
				return internal.ErrUnauthorized("Unauthorized", internal.WithErrorCode("unauthorized"))
			}
			return next(c)
		}
	}
}
