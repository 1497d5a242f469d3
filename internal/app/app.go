package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/tilecomp/internal/config"
	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/specialistvlad/tilecomp/internal/hclcfg"
	"github.com/specialistvlad/tilecomp/internal/registry"
	"github.com/specialistvlad/tilecomp/internal/yamlcfg"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW       io.Writer
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	loaders    []config.Loader
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns an App
// with its own isolated logger and registry. An invalid registry is a
// programming error and panics.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All operation modules registered.", "count", len(modules), "kinds", len(reg.Kinds()))

	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		ctx:      ctx,
		logger:   logger,
		config:   cfg,
		registry: reg,
		loaders:  []config.Loader{hclcfg.NewLoader(), yamlcfg.NewLoader()},
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (app *App) Registry() *registry.Registry {
	return app.registry
}
