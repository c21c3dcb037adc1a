package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/whitelabel/internal"
)

func TestIsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		err := internal.NewHTTPError(http.StatusNotFound, "not found")
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusBadRequest, "bad request")
		err := fmt.Errorf("handler failed: %w", httpErr)
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("double-wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusConflict, "conflict")
		err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", httpErr))
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("unrelated error", func(t *testing.T) {
		t.Parallel()
		err := errors.New("something went wrong")
		require.False(t, internal.IsHTTPError(err))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsHTTPError(nil))
	})
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusNotFound, "not found")
		got := internal.AsHTTPError(httpErr)
		require.NotNil(t, got)
		require.Equal(t, http.StatusNotFound, got.Code)
		require.Equal(t, "not found", got.Message)
	})

	t.Run("wrapped HTTPError preserves fields", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("domain already claimed")
		httpErr := internal.ErrConflict("domain taken",
			internal.WithDetail("another organization uses this domain"),
			internal.WithErrorCode("domain_taken"),
			internal.WithError(cause),
		)
		err := fmt.Errorf("handler: %w", httpErr)

		got := internal.AsHTTPError(err)
		require.NotNil(t, got)
		require.Equal(t, http.StatusConflict, got.Code)
		require.Equal(t, "domain taken", got.Message)
		require.Equal(t, "another organization uses this domain", got.Detail)
		require.Equal(t, "domain_taken", got.ErrorCode)
		require.ErrorIs(t, err, cause)
	})

	t.Run("unrelated error returns nil", func(t *testing.T) {
		t.Parallel()
		err := errors.New("plain error")
		require.Nil(t, internal.AsHTTPError(err))
	})

	t.Run("nil returns nil", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, internal.AsHTTPError(nil))
	})
}

func TestConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *internal.HTTPError
		code int
	}{
		{internal.ErrBadRequest("x"), http.StatusBadRequest},
		{internal.ErrUnauthorized("x"), http.StatusUnauthorized},
		{internal.ErrNotFound("x"), http.StatusNotFound},
		{internal.ErrConflict("x"), http.StatusConflict},
		{internal.ErrUnprocessable("x"), http.StatusUnprocessableEntity},
		{internal.ErrTooManyRequests("x"), http.StatusTooManyRequests},
		{internal.ErrInternal("x"), http.StatusInternalServerError},
		{internal.ErrServiceUnavailable("x"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		require.Equal(t, tt.code, tt.err.StatusCode())
		require.Equal(t, http.StatusText(tt.code), tt.err.StatusText())
		require.Equal(t, "x", tt.err.Error())
	}
}
