package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/vk/gridci/internal/config"
	"github.com/vk/gridci/internal/ctxlog"
)

// Shell executes job steps locally through `sh -c`, one process per step,
// stopping at the first step that exits non-zero. Matrix bindings are
// injected into each step's environment as MATRIX_<AXIS> variables.
type Shell struct {
	// Dir is the working directory for every step. Empty means the
	// process's current directory.
	Dir string
}

// NewShell creates a local shell runner rooted at dir.
func NewShell(dir string) *Shell {
	return &Shell{Dir: dir}
}

// Run implements the Runner interface.
func (s *Shell) Run(ctx context.Context, steps []config.Step, binding map[string]string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	env := os.Environ()
	for axis, value := range binding {
		env = append(env, fmt.Sprintf("MATRIX_%s=%s", strings.ToUpper(axis), value))
	}

	var out bytes.Buffer
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Debug("Running step.", "step", step.Name, "command", step.Run)

		cmd := exec.CommandContext(ctx, "sh", "-c", step.Run)
		cmd.Dir = s.Dir
		cmd.Env = env
		cmd.Stdout = &out
		cmd.Stderr = &out

		err := cmd.Run()
		if err == nil {
			continue
		}

		// A cancelled context surfaces as a killed process; report the
		// cancellation, not a synthetic exit code.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Result{ExitCode: exitErr.ExitCode(), Log: out.String()}, nil
		}
		// The process never ran (missing shell, bad working directory, ...).
		return nil, fmt.Errorf("%w: step %q: %v", ErrExecutor, step.Name, err)
	}

	return &Result{ExitCode: 0, Log: out.String()}, nil
}
