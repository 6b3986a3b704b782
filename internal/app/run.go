package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/gridci/internal/api"
	"github.com/vk/gridci/internal/ctxlog"
	"github.com/vk/gridci/internal/graph"
	"github.com/vk/gridci/internal/report"
	"github.com/vk/gridci/internal/scheduler"
)

// Execute loads the workflow, builds the graph, runs it to completion, and
// returns the aggregated report.
func (a *App) Execute(ctx context.Context) (*report.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Execute started.")

	wf, err := a.loader().Load(ctx, a.config.WorkflowPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	a.logger.Debug("Building dependency graph from workflow model...")
	g, err := graph.Build(ctx, wf)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "instances", g.Len())

	if g.Len() == 0 {
		a.logger.Warn("No jobs found in workflow, nothing to execute.")
		return &report.Report{Verdict: report.VerdictSuccess, Jobs: map[string]report.JobResult{}}, nil
	}

	runCtx := ctx
	if a.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, a.config.RunTimeout)
		defer cancel()
	}

	a.logger.Info("🚀 Starting pipeline run...", "instances", g.Len(), "workers", a.config.Workers)
	run := scheduler.Start(runCtx, g, scheduler.Options{
		Workers: a.config.Workers,
		Runner:  a.runner,
	})

	if a.config.HTTPPort > 0 {
		srv := api.NewServer()
		runID := srv.Register(run)
		a.logger.Info("Run registered on control server.", "run_id", runID)
		srv.Start(ctx, a.config.HTTPPort)
		defer srv.Shutdown(context.WithoutCancel(ctx))
	}

	rep := run.Wait()
	a.logger.Info("🏁 Pipeline run finished.", "verdict", rep.Verdict, "duration", rep.EndedAt.Sub(rep.StartedAt))
	return rep, nil
}

// Run executes the workflow and maps the verdict onto an error for the CLI:
// nil on success, a descriptive error on failure.
func (a *App) Run(ctx context.Context) error {
	rep, err := a.Execute(ctx)
	if err != nil {
		return err
	}
	if rep.Verdict == report.VerdictFailure {
		return fmt.Errorf("pipeline failed: %s", strings.Join(rep.Causes, ", "))
	}
	return nil
}
