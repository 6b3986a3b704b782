package app

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// WorkflowPath is the workflow definition file (.hcl, .yml or .yaml).
	WorkflowPath string
	// Format forces a loader: "hcl", "yaml", or "auto" to pick by extension.
	Format string
	// WorkDir is the working directory for job steps.
	WorkDir string

	// Workers bounds concurrent job execution.
	Workers int
	// HTTPPort enables the control server when positive.
	HTTPPort int
	// RunTimeout bounds the whole run. Zero means no limit.
	RunTimeout time.Duration

	LogFormat string
	LogLevel  string
}

// NewConfig validates and returns an application configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkflowPath == "" {
		return nil, errors.New("WorkflowPath is a required configuration field and cannot be empty")
	}
	switch cfg.Format {
	case "", "auto", "hcl", "yaml":
	default:
		return nil, fmt.Errorf("invalid format %q: must be 'auto', 'hcl' or 'yaml'", cfg.Format)
	}
	if cfg.Format == "" {
		cfg.Format = "auto"
	}
	return &cfg, nil
}
