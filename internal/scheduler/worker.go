package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/gridci/internal/condition"
	"github.com/vk/gridci/internal/ctxlog"
	"github.com/vk/gridci/internal/node"
)

// dispatch decides the fate of an instance whose dependencies are all
// terminal: evaluate its run condition exactly once and either queue it for
// a worker, skip it, or fail it when the condition itself is broken.
func (r *Run) dispatch(ctx context.Context, inst *node.Instance) {
	logger := ctxlog.FromContext(ctx)

	if ctx.Err() != nil {
		r.finish(ctx, inst, node.StatusCancelled, -1, ctx.Err())
		return
	}

	decision, err := condition.Evaluate(ctx, inst, r.graph.Dependencies(inst.ID()))
	if err != nil {
		// Fail closed: a broken condition must never silently mask a
		// pipeline issue by skipping the job.
		logger.Error("Run condition failed to evaluate.", "instance", inst.ID(), "error", err)
		r.finish(ctx, inst, node.StatusFailed, -1, err)
		return
	}

	if decision == condition.Skip {
		inst.SetStatus(node.StatusBlocked)
		logger.Info("⏭️ Skipping job", "instance", inst.ID())
		r.finish(ctx, inst, node.StatusSkipped, -1, nil)
		return
	}

	logger.Debug("Instance ready.", "instance", inst.ID())
	inst.SetStatus(node.StatusReady)
	r.ready <- inst
}

// worker is the core processing loop for a single concurrent worker.
func (r *Run) worker(ctx context.Context, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for inst := range r.ready {
		if ctx.Err() != nil {
			logger.Warn("Run cancelled, not starting queued job.", "workerID", workerID, "instance", inst.ID())
			r.finish(ctx, inst, node.StatusCancelled, -1, ctx.Err())
			continue
		}
		r.execute(ctx, inst, workerID)
	}

	logger.Debug("Worker finished.", "workerID", workerID)
}

// execute runs one instance's job unit and records the outcome.
func (r *Run) execute(ctx context.Context, inst *node.Instance, workerID int) {
	logger := ctxlog.FromContext(ctx).With("workerID", workerID, "instance", inst.ID())

	inst.StartedAt = time.Now()
	inst.SetStatus(node.StatusRunning)
	logger.Info("▶️ Starting job")

	jobCtx := ctx
	if timeout := inst.Template.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := r.runner.Run(jobCtx, inst.Template.Steps, inst.Binding())
	switch {
	case err != nil && ctx.Err() != nil:
		// The run itself was aborted while the unit was in flight.
		logger.Warn("🛑 Job cancelled")
		r.finish(ctx, inst, node.StatusCancelled, -1, ctx.Err())
	case err != nil:
		// Executor-level failure or per-job timeout; isolated to this job.
		logger.Error("Job unit failed.", "error", err)
		r.finish(ctx, inst, node.StatusFailed, -1, err)
	case res.ExitCode != 0:
		logger.Error("❌ Job failed", "exit_code", res.ExitCode)
		inst.Log = res.Log
		r.finish(ctx, inst, node.StatusFailed, res.ExitCode, fmt.Errorf("job %q exited with code %d", inst.ID(), res.ExitCode))
	default:
		logger.Info("✅ Job finished")
		inst.Log = res.Log
		r.finish(ctx, inst, node.StatusSucceeded, 0, nil)
	}
}

// finish moves an instance to a terminal state exactly once and cascades
// the completion to its dependents. All mutable fields are written before
// the atomic status store so snapshot readers see consistent records.
func (r *Run) finish(ctx context.Context, inst *node.Instance, status node.Status, exitCode int, instErr error) {
	resolved := inst.Resolve(func() {
		if !inst.StartedAt.IsZero() {
			inst.EndedAt = time.Now()
		}
		inst.ExitCode = exitCode
		inst.Err = instErr
		inst.SetStatus(status)
		r.wg.Done()
	})
	if !resolved {
		return
	}

	for _, dependent := range r.graph.Dependents(inst.ID()) {
		if dependent.DecrementPendingDeps() == 0 {
			ctxlog.FromContext(ctx).Debug("Unlocking dependent.", "instance", dependent.ID())
			r.dispatch(ctx, dependent)
		}
	}
}
