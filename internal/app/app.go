package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/vk/knitgrid/internal/config"
	"github.com/vk/knitgrid/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	tables     *config.Model
	stage      atomic.Value // current pipeline stage name
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and the lookup
// tables already loaded.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	tables, err := loader.Load(ctx, appConfig.ConfigPaths...)
	if err != nil {
		// A failure to load the tables is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Lookup tables loaded.", "categories", tables.Categories(), "entries", tables.Len())

	a := &App{
		outW:   outW,
		logger: logger,
		config: appConfig,
		tables: tables,
	}
	a.stage.Store("idle")
	return a
}

// Tables returns the loaded lookup tables. This is primarily for testing.
func (a *App) Tables() *config.Model {
	return a.tables
}

// Stage returns the name of the pipeline stage currently running.
func (a *App) Stage() string {
	return a.stage.Load().(string)
}
