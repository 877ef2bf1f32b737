package container

import (
	"context"
	"fmt"

	"instviz/adapters/render"
	"instviz/internal/config"
	"instviz/internal/logging"
	"instviz/internal/metrics"
	"instviz/internal/report"
	"instviz/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *logging.Logger

	Renderer *render.Renderer
	Builder  *report.Builder
	Store    report.Store
	Metrics  metrics.Provider
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = logging.NewLogger(logging.ParseLevel(cfg.Log.Level))
	}

	store, err := report.NewStore(cfg.Report.CacheMB, cfg.Report.TTL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create report store: %w", err)
	}

	r := render.NewRenderer(cfg.Render.Width, cfg.Render.Height).WithLogger(logger)
	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Renderer: r,
		Builder:  report.NewBuilder(r, cfg.Report.Workers, cfg.Render.Columns).WithLogger(logger),
		Store:    store,
		Metrics:  metrics.NewProvider(cfg.Metrics.Enabled),
	}

	if store.Enabled() {
		logger.Info("[Container] report store: %dMB, ttl %s", cfg.Report.CacheMB, cfg.Report.TTL)
	} else {
		logger.Info("[Container] report store disabled, reports render inline")
	}
	return c, nil
}

// Server builds the dashboard on top of the container's components
func (c *Container) Server() (*ui.Server, error) {
	return ui.NewServer(c.Config, ui.Deps{
		Builder: c.Builder,
		Store:   c.Store,
		Metrics: c.Metrics,
		Logger:  c.Logger,
	})
}

// Serve runs the dashboard until ctx is cancelled
func (c *Container) Serve(ctx context.Context) error {
	srv, err := c.Server()
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

// Shutdown releases the store and flushes the logger
func (c *Container) Shutdown(_ context.Context) error {
	c.Store.Close()
	c.Logger.Sync()
	return nil
}
