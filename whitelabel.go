package whitelabel

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/whitelabel/internal"
	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/pkg/health"
	"github.com/dmitrymomot/whitelabel/pkg/logger"
)

// Type aliases - public API
type (
	// App is one routing surface: the admin API or the tenant proxy.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures an App.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Worker is a background component started and stopped with the server.
	Worker = internal.Worker

	// ContextExtractor adds request-scoped values to log records.
	ContextExtractor = logger.ContextExtractor

	// ResolvedBranding is the branding in effect for one request.
	ResolvedBranding = models.ResolvedBranding

	// VerificationReport is the per-check breakdown of one verification.
	VerificationReport = models.VerificationReport
)

// New creates an App from options. Most callers use Service.Admin and
// Service.Tenant instead.
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// Run serves several Apps by host and blocks until shutdown.
//
// Example:
//
//	err := whitelabel.Run(
//	    whitelabel.Domain("admin.platform.io", svc.Admin(token, jobs)),
//	    whitelabel.Fallback(svc.Tenant(proxy)),
//	    whitelabel.Address(":8080"),
//	    whitelabel.StartupHook(jobs.Start),
//	    whitelabel.ShutdownHook(jobs.Stop),
//	)
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// App options

// WithMiddleware adds global middleware, applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithHealthChecks enables /health/live and /health/ready.
//
//	whitelabel.WithHealthChecks(
//	    whitelabel.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger sets the App's logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithJobs attaches a worker that App.Run starts and stops.
func WithJobs(w Worker) Option {
	return internal.WithJobs(w)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the HTTP server address. Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the server logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout bounds graceful shutdown, hooks included.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook runs after the port is bound and before serving. A failing
// hook aborts startup.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook runs during graceful shutdown, after the server stops.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// Domain routes requests for host pattern to app. Patterns are exact
// ("admin.platform.io") or wildcard ("*.platform.io").
func Domain(pattern string, app *App) RunOption {
	return internal.Domain(pattern, app)
}

// Fallback serves requests for every host not matched by Domain. Tenant
// custom domains are unknown ahead of time, so the tenant App goes here.
func Fallback(app *App) RunOption {
	return internal.Fallback(app)
}

// WithContext sets the base context; cancelling it shuts the server down.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// HostHandler builds the host-dispatching handler Run would serve, without
// starting a server.
func HostHandler(opts ...RunOption) (http.Handler, error) {
	return internal.HostHandler(opts...)
}
