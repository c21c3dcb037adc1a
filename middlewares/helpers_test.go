package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/whitelabel/internal"
	"github.com/dmitrymomot/whitelabel/middlewares"
)

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

// serve runs req through an App with mw as global middleware and h on
// every GET and POST path.
func serve(t *testing.T, req *http.Request, h internal.HandlerFunc, mw ...internal.Middleware) *httptest.ResponseRecorder {
	t.Helper()

	app := internal.New(
		internal.WithErrorHandler(middlewares.ErrorHandler),
		internal.WithMiddleware(mw...),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", h)
			r.POST("/", h)
			r.GET("/*", h)
			r.POST("/*", h)
		})),
	)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func ok(c internal.Context) error {
	return c.String(http.StatusOK, "ok")
}
