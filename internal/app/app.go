// Package app wires the loaders, graph builder, scheduler and control
// server into one runnable pipeline orchestrator.
package app

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/vk/gridci/internal/config"
	"github.com/vk/gridci/internal/hcl"
	"github.com/vk/gridci/internal/runner"
	"github.com/vk/gridci/internal/yamlconf"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	runner runner.Runner
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		runner: runner.NewShell(cfg.WorkDir),
	}
}

// SetRunner replaces the job unit executor. This is primarily for testing.
func (a *App) SetRunner(r runner.Runner) {
	a.runner = r
}

// loader picks the workflow loader for the configured path and format.
func (a *App) loader() config.Loader {
	format := a.config.Format
	if format == "auto" {
		switch filepath.Ext(a.config.WorkflowPath) {
		case ".yml", ".yaml":
			format = "yaml"
		default:
			format = "hcl"
		}
	}

	if format == "yaml" {
		return yamlconf.NewLoader()
	}
	return hcl.NewLoader()
}
