package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/specialistvlad/graphvisgo/internal/config"
	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
	"github.com/specialistvlad/graphvisgo/internal/graph"
	"github.com/specialistvlad/graphvisgo/internal/loop"
	"github.com/specialistvlad/graphvisgo/internal/metrics"
	"github.com/specialistvlad/graphvisgo/internal/renderer"
	"github.com/specialistvlad/graphvisgo/internal/surface"
	"github.com/specialistvlad/graphvisgo/internal/vertex"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "graphvisgo"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	appCfg   *Config
	config   *config.Model
	model    *graph.Model
	loop     *loop.Loop
	metrics  *metrics.Collector
	renderer renderer.Renderer
	surfaces []surface.Surface

	// Loop-owned. Configured labels not yet seen in the graph.
	pendingDisabled []string
}

// Option customises an App, mostly for tests.
type Option func(*App)

// WithRenderer replaces the Mermaid CLI renderer.
func WithRenderer(r renderer.Renderer) Option {
	return func(a *App) { a.renderer = r }
}

// WithSurface adds a display surface.
func WithSurface(s surface.Surface) Option {
	return func(a *App) { a.surfaces = append(a.surfaces, s) }
}

// New is the constructor for the main application. It loads and validates
// the configuration and builds the graph model; the pipeline itself is
// assembled by Run.
func New(outW io.Writer, appCfg *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := newLogger(appCfg.LogLevel, appCfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfgModel, err := loader.Load(ctx, appCfg.ConfigPath, config.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	appCfg.Overrides.Apply(cfgModel)
	if err := cfgModel.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded.",
		"renderer", cfgModel.Renderer.Command,
		"settle", cfgModel.Scheduler.Settle,
		"output", cfgModel.Output.Path,
		"control_port", cfgModel.Control.Port,
	)

	a := &App{
		outW:    outW,
		logger:  logger,
		appCfg:  appCfg,
		config:  cfgModel,
		model:   graph.New(vertex.NewStore()),
		loop:    loop.New(loop.DefaultBuffer),
		metrics: metrics.NewCollector(MetricsNamespace),
		renderer: &renderer.MermaidCLI{
			Command: cfgModel.Renderer.Command,
			Args:    cfgModel.Renderer.Args,
		},
		pendingDisabled: slices.Clone(cfgModel.Vertices.Disabled),
	}

	a.surfaces = []surface.Surface{&surface.Log{Output: cfgModel.Output.Path}}
	if cfgModel.Output.Path != "" {
		a.surfaces = append(a.surfaces, &surface.File{Path: cfgModel.Output.Path})
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Config returns the effective configuration.
func (a *App) Config() *config.Model {
	return a.config
}

// Model returns the graph model. This is primarily for testing.
func (a *App) Model() *graph.Model {
	return a.model
}
