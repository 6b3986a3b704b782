package condition

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/gridci/internal/config"
	"github.com/vk/gridci/internal/ctxlog"
	"github.com/vk/gridci/internal/node"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Evaluate computes the eligibility of inst given the terminal results of
// its dependency instances. It must be called exactly once per instance,
// and only after every instance in deps is terminal.
func Evaluate(ctx context.Context, inst *node.Instance, deps []*node.Instance) (Decision, error) {
	cond := inst.Template.When

	mode := config.ConditionDefault
	if cond != nil {
		mode = cond.Mode
	}

	switch mode {
	case config.ConditionAlways:
		return Run, nil
	case config.ConditionCustom:
		return evaluateCustom(ctx, inst, cond.Expr, deps)
	default:
		// Default rule: any dependency that is not Succeeded, including one
		// that was itself Skipped, suppresses this instance. This is what
		// makes skips propagate transitively.
		for _, dep := range deps {
			if dep.Status() != node.StatusSucceeded {
				return Skip, nil
			}
		}
		return Run, nil
	}
}

// evaluateCustom evaluates a user predicate against the dependency view.
func evaluateCustom(ctx context.Context, inst *node.Instance, expr hcl.Expression, deps []*node.Instance) (Decision, error) {
	logger := ctxlog.FromContext(ctx)
	if expr == nil {
		return Skip, fmt.Errorf("%w: job %q declares a custom condition with no expression", ErrUnresolvedReference, inst.Template.ID)
	}

	evalCtx := buildEvalContext(inst, deps)

	// Reject unknown identifiers up front so the error names the reference
	// instead of surfacing as a generic evaluation diagnostic.
	if err := checkReferences(inst, expr, evalCtx); err != nil {
		return Skip, err
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return Skip, fmt.Errorf("%w: job %q: %s", ErrUnresolvedReference, inst.Template.ID, diags.Error())
	}

	boolVal, err := convert.Convert(val, cty.Bool)
	if err != nil {
		return Skip, fmt.Errorf("%w: job %q: condition must produce a boolean, got %s", ErrUnresolvedReference, inst.Template.ID, val.Type().FriendlyName())
	}

	logger.Debug("Custom condition evaluated.", "instance", inst.ID(), "result", boolVal.True())
	if boolVal.True() {
		return Run, nil
	}
	return Skip, nil
}

// buildEvalContext exposes the read-only dependency view: per dependency
// template its aggregate terminal status and exit code, derived aggregates
// over all dependencies, and the instance's own matrix binding.
func buildEvalContext(inst *node.Instance, deps []*node.Instance) *hcl.EvalContext {
	byTemplate := make(map[string][]*node.Instance)
	for _, dep := range deps {
		byTemplate[dep.Template.ID] = append(byTemplate[dep.Template.ID], dep)
	}

	depVals := make(map[string]cty.Value, len(byTemplate))
	anyFailed := false
	anyCancelled := false
	anySkipped := false
	allSucceeded := true
	for tmplID, instances := range byTemplate {
		status, exitCode := aggregate(instances)
		depVals[tmplID] = cty.ObjectVal(map[string]cty.Value{
			"status":    cty.StringVal(status.String()),
			"exit_code": cty.NumberIntVal(int64(exitCode)),
		})
		switch status {
		case node.StatusFailed:
			anyFailed = true
		case node.StatusCancelled:
			anyCancelled = true
		case node.StatusSkipped:
			anySkipped = true
		}
		if status != node.StatusSucceeded {
			allSucceeded = false
		}
	}

	vars := map[string]cty.Value{
		"any_failed":    cty.BoolVal(anyFailed),
		"any_cancelled": cty.BoolVal(anyCancelled),
		"any_skipped":   cty.BoolVal(anySkipped),
		"all_succeeded": cty.BoolVal(allSucceeded),
	}
	if len(depVals) > 0 {
		vars["deps"] = cty.ObjectVal(depVals)
	} else {
		vars["deps"] = cty.EmptyObjectVal
	}

	binding := inst.Binding()
	if len(binding) > 0 {
		matrixVals := make(map[string]cty.Value, len(binding))
		for axis, value := range binding {
			matrixVals[axis] = cty.StringVal(value)
		}
		vars["matrix"] = cty.ObjectVal(matrixVals)
	} else {
		vars["matrix"] = cty.EmptyObjectVal
	}

	return &hcl.EvalContext{Variables: vars}
}

// aggregate folds a dependency template's instances into one view. The
// worst outcome wins; the exit code is the first non-zero one in expansion
// order, zero when every instance exited clean.
func aggregate(instances []*node.Instance) (node.Status, int) {
	status := node.StatusSucceeded
	exitCode := 0
	for _, dep := range instances {
		switch dep.Status() {
		case node.StatusFailed:
			status = node.StatusFailed
		case node.StatusCancelled:
			if status != node.StatusFailed {
				status = node.StatusCancelled
			}
		case node.StatusSkipped:
			if status == node.StatusSucceeded {
				status = node.StatusSkipped
			}
		}
		if exitCode == 0 && dep.ExitCode > 0 {
			exitCode = dep.ExitCode
		}
	}
	return status, exitCode
}

// checkReferences validates every variable traversal in the expression
// against the evaluation scope before evaluation runs.
func checkReferences(inst *node.Instance, expr hcl.Expression, evalCtx *hcl.EvalContext) error {
	for _, traversal := range expr.Variables() {
		root := traversal.RootName()
		rootVal, known := evalCtx.Variables[root]
		if !known {
			return fmt.Errorf("%w: job %q references unknown identifier %q", ErrUnresolvedReference, inst.Template.ID, root)
		}
		if root != "deps" || len(traversal) < 2 {
			continue
		}
		attr, ok := traversal[1].(hcl.TraverseAttr)
		if !ok {
			continue
		}
		if !rootVal.Type().HasAttribute(attr.Name) {
			return fmt.Errorf("%w: job %q references %q which is not among its dependencies", ErrUnresolvedReference, inst.Template.ID, "deps."+attr.Name)
		}
	}
	return nil
}
