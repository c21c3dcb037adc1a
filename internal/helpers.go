package internal

import (
	"fmt"

	"github.com/google/uuid"
)

// ContextValue returns the request context value stored under key, or the
// zero value of T.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// ParamUUID parses a UUID URL parameter. A missing or malformed value is a
// 400 HTTPError.
func ParamUUID(c Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrBadRequest(fmt.Sprintf("invalid %s", name), WithError(err), WithErrorCode("invalid_"+name))
	}
	return id, nil
}
