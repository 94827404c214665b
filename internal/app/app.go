// Package app wires the configuration, scheduler and transformation
// pipeline into one runnable application.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/fortloom/internal/config"
	"github.com/vk/fortloom/internal/ctxlog"
	"github.com/vk/fortloom/internal/render"
	"github.com/vk/fortloom/internal/scheduler"
	"github.com/vk/fortloom/internal/transform"
)

// App encapsulates the application's dependencies, configuration and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *Config
}

// New is the constructor for the main application, including its own
// isolated logger.
func New(outW io.Writer, cfg *Config) *App {
	return &App{
		outW:   outW,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, outW),
		cfg:    cfg,
	}
}

// Run executes the full pipeline: load config, scan sources, discover the
// call graph from the root routines, process it bottom-up, and optionally
// dump the rendered call graph.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	routineCfg := config.New()
	if a.cfg.ConfigPath != "" {
		loader, err := loaderFor(a.cfg.ConfigPath)
		if err != nil {
			return err
		}
		routineCfg, err = loader.Load(ctx, a.cfg.ConfigPath)
		if err != nil {
			return err
		}
	}

	var rg *render.CallGraph
	if a.cfg.CallGraphPath != "" {
		rg = render.New()
	}

	sched, err := scheduler.New(ctx, a.cfg.SourceRoots, scheduler.Options{
		Config:   routineCfg,
		Includes: a.cfg.Includes,
		Render:   rg,
	})
	if err != nil {
		return err
	}

	if err := sched.Append(ctx, a.cfg.RootRoutines...); err != nil {
		return err
	}
	if err := sched.Populate(ctx); err != nil {
		return err
	}

	mode := a.cfg.Mode
	if mode == "" {
		mode = routineCfg.Default.Mode
	}
	tr, err := transform.ForMode(mode)
	if err != nil {
		return err
	}
	if err := sched.Process(ctx, tr); err != nil {
		return err
	}

	if a.cfg.CallGraphPath != "" {
		if err := a.writeCallGraph(rg); err != nil {
			return err
		}
	}

	a.logger.Info("Run complete",
		"mode", mode,
		"tasks", len(sched.Tasks()),
		"processed", len(sched.Processed()),
	)
	return nil
}

func (a *App) writeCallGraph(rg *render.CallGraph) error {
	f, err := os.Create(a.cfg.CallGraphPath)
	if err != nil {
		return fmt.Errorf("creating call graph file: %w", err)
	}
	defer f.Close()
	if err := rg.WriteDOT(f); err != nil {
		return fmt.Errorf("writing call graph: %w", err)
	}
	a.logger.Info("Call graph written", "path", a.cfg.CallGraphPath)
	return nil
}
