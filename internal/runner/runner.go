// Package runner defines the job unit boundary: the scheduler hands a job's
// opaque step sequence and frozen matrix binding to a Runner and interprets
// nothing but the exit code. Exit zero is success, non-zero is failure, and
// a runner-level error is failure with a distinguished executor cause.
package runner

import (
	"context"
	"errors"

	"github.com/vk/gridci/internal/config"
)

// ErrExecutor marks a failure of the executing machinery itself, as opposed
// to a job's own steps exiting non-zero.
var ErrExecutor = errors.New("executor error")

// Result is the outcome of one job unit execution.
type Result struct {
	// ExitCode is the exit status of the step sequence. Zero means success.
	ExitCode int
	// Log is the combined output of all steps, in execution order.
	Log string
}

// Runner executes one job instance's step sequence to completion.
type Runner interface {
	// Run executes the steps with the given matrix binding. It returns a
	// Result when the unit ran to an exit status, or an error wrapping
	// ErrExecutor (or the context's error on cancellation) when it did not.
	Run(ctx context.Context, steps []config.Step, binding map[string]string) (*Result, error)
}
