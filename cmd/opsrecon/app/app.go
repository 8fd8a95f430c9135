// Package app provides the application context and dependency wiring for
// the opsrecon CLI. It centralizes configuration, logging, and engine
// construction so commands stay thin.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/cosmo-lgtm/ops-command-center/pkg/reconcile"
)

// App represents the opsrecon application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Engine instance (lazy-initialized, singleton)
	mu     sync.Mutex
	engine *reconcile.Engine
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Engine returns the reconciliation engine, creating it lazily.
func (a *App) Engine() (*reconcile.Engine, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.engine != nil {
		return a.engine, nil
	}

	var opts []reconcile.Option
	if a.config.Workers > 0 {
		opts = append(opts, reconcile.WithWorkers(a.config.Workers))
	}

	engine, err := reconcile.New(opts...)
	if err != nil {
		return nil, err
	}
	a.engine = engine
	return engine, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
