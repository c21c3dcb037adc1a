package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"

	"github.com/dmitrymomot/whitelabel/internal"
	"github.com/dmitrymomot/whitelabel/middlewares"
)

func TestRateLimitPerParam(t *testing.T) {
	t.Parallel()

	l, err := middlewares.NewLimiter(limiter.Rate{Period: time.Minute, Limit: 2}, nil)
	require.NoError(t, err)

	app := internal.New(
		internal.WithErrorHandler(middlewares.ErrorHandler),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.POST("/orgs/{orgID}/verify", ok, middlewares.RateLimit(l, middlewares.ByParam("orgID")))
		})),
	)

	call := func(org string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orgs/"+org+"/verify", nil))
		return rec
	}

	require.Equal(t, http.StatusOK, call("a").Code)
	second := call("a")
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "2", second.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := call("a")
	require.Equal(t, http.StatusTooManyRequests, third.Code)
	require.Contains(t, third.Body.String(), `"code":"rate_limited"`)

	require.Equal(t, http.StatusOK, call("b").Code)
}

func TestRateLimitByClientIP(t *testing.T) {
	t.Parallel()

	l, err := middlewares.NewLimiter(limiter.Rate{Period: time.Minute, Limit: 1}, nil)
	require.NoError(t, err)

	req := func(addr string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = addr
		return r
	}

	mw := middlewares.RateLimit(l, nil)
	app := internal.New(
		internal.WithErrorHandler(middlewares.ErrorHandler),
		internal.WithMiddleware(mw),
		internal.WithHandlers(routes(func(r internal.Router) { r.GET("/", ok) })),
	)

	codes := make([]int, 0, 3)
	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.1:2000", "10.0.0.2:1000"} {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req(addr))
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusOK}, codes)
}
