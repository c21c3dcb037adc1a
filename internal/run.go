package internal

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/whitelabel/pkg/hostrouter"
)

// ErrNoHandler is returned by Run when neither domains nor a fallback are set.
var ErrNoHandler = errors.New("internal: no domains or fallback configured")

// Run starts a multi-host HTTP server and blocks until shutdown. Apps are
// matched by Host; everything else goes to the fallback. Workers attached
// to any App are started once before serving and stopped on shutdown.
//
//	err := internal.Run(
//	    internal.Domain("admin.platform.com", admin),
//	    internal.Fallback(tenant),
//	    internal.Address(":8080"),
//	)
func Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	handler, apps, err := cfg.handler()
	if err != nil {
		return err
	}

	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks
	seen := make(map[Worker]bool)
	for _, app := range apps {
		w := app.Jobs()
		if w == nil || seen[w] {
			continue
		}
		seen[w] = true
		startupHooks = append([]func(context.Context) error{w.Start}, startupHooks...)
		shutdownHooks = append(shutdownHooks, w.Stop)
	}

	return runServer(runtimeConfig{
		handler:         handler,
		address:         cfg.address,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// HostHandler builds the host-dispatching handler Run would serve.
func HostHandler(opts ...RunOption) (http.Handler, error) {
	h, _, err := buildRunConfig(opts...).handler()
	return h, err
}

func (c *runConfig) handler() (http.Handler, []*App, error) {
	var apps []*App

	if len(c.domains) == 0 {
		if c.fallback == nil {
			return nil, nil, ErrNoHandler
		}
		return c.fallback, []*App{c.fallback}, nil
	}

	routes := make(hostrouter.Routes, len(c.domains))
	for pattern, app := range c.domains {
		routes[pattern] = app
		apps = append(apps, app)
	}

	var fallback http.Handler = http.NotFoundHandler()
	if c.fallback != nil {
		fallback = c.fallback
		apps = append(apps, c.fallback)
	}

	return hostrouter.New(routes, fallback), apps, nil
}
