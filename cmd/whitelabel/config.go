package main

import (
	"errors"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/whitelabel"
	"github.com/dmitrymomot/whitelabel/pkg/db"
	"github.com/dmitrymomot/whitelabel/pkg/logger"
	"github.com/dmitrymomot/whitelabel/pkg/redis"
)

var errUpstreamScheme = errors.New("whitelabel: UPSTREAM_URL must be an http or https URL")

// baseConfig is what every command needs to reach the store.
type baseConfig struct {
	Whitelabel whitelabel.Config
	DB         db.Config
	Redis      redis.Config
	Log        logger.Config
}

// serverConfig holds the HTTP front settings.
type serverConfig struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	AdminHost       string        `env:"ADMIN_HOST,required"`
	AdminToken      string        `env:"ADMIN_TOKEN,required,unset"`
	UpstreamURL     url.URL       `env:"UPSTREAM_URL,required"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	JobWorkers      int           `env:"JOB_WORKERS" envDefault:"10"`
	MigrateOnStart  bool          `env:"MIGRATE_ON_START" envDefault:"false"`
}

type serveConfig struct {
	Base   baseConfig
	Server serverConfig
}

// loadBase parses the environment into a baseConfig. A nil environ reads
// the process environment.
func loadBase(environ map[string]string) (baseConfig, error) {
	cfg := baseConfig{Whitelabel: whitelabel.DefaultConfig()}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return baseConfig{}, err
	}
	return cfg, nil
}

func loadServe(environ map[string]string) (serveConfig, error) {
	cfg := serveConfig{Base: baseConfig{Whitelabel: whitelabel.DefaultConfig()}}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return serveConfig{}, err
	}
	if s := cfg.Server.UpstreamURL.Scheme; (s != "http" && s != "https") || cfg.Server.UpstreamURL.Host == "" {
		return serveConfig{}, errUpstreamScheme
	}
	return cfg, nil
}
