package graph

import (
	"context"
	"fmt"

	"github.com/vk/gridci/internal/config"
	"github.com/vk/gridci/internal/ctxlog"
	"github.com/vk/gridci/internal/matrix"
	"github.com/vk/gridci/internal/node"
)

// Build constructs a complete, validated dependency graph from a workflow
// model. Any structural error (bad matrix, unknown or self dependency,
// cycle) fails construction before a single job is scheduled.
func Build(ctx context.Context, wf *config.Workflow) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.", "templates", len(wf.Jobs))

	g := &Graph{
		instances:  make(map[string]*node.Instance),
		byTemplate: make(map[string][]*node.Instance),
		deps:       make(map[string][]*node.Instance),
		dependents: make(map[string][]*node.Instance),
	}

	// First pass: expand every template into its instances.
	for _, tmpl := range wf.Jobs {
		if _, exists := g.byTemplate[tmpl.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateJob, tmpl.ID)
		}
		addrs, err := matrix.Expand(tmpl)
		if err != nil {
			return nil, err
		}
		for _, addr := range addrs {
			inst := node.NewInstance(addr, tmpl)
			g.instances[inst.ID()] = inst
			g.ordered = append(g.ordered, inst)
			g.byTemplate[tmpl.ID] = append(g.byTemplate[tmpl.ID], inst)
		}
		// Expansion is keyed by template ID even for a single instance, so
		// dependents never care whether their predecessor was parameterized.
	}
	logger.Debug("Build: expansion complete.", "instances", len(g.ordered))

	// Second pass: resolve template-level needs into instance-level edges.
	// An instance depends on every instance of each needed template.
	for _, tmpl := range wf.Jobs {
		for _, need := range tmpl.Needs {
			if need == tmpl.ID {
				return nil, fmt.Errorf("%w: %q", ErrSelfDependency, tmpl.ID)
			}
			predecessors, ok := g.byTemplate[need]
			if !ok {
				return nil, fmt.Errorf("%w: job %q needs %q", ErrUnknownDependency, tmpl.ID, need)
			}
			for _, inst := range g.byTemplate[tmpl.ID] {
				for _, pred := range predecessors {
					g.deps[inst.ID()] = append(g.deps[inst.ID()], pred)
					g.dependents[pred.ID()] = append(g.dependents[pred.ID()], inst)
				}
			}
		}
	}
	logger.Debug("Build: linking complete.")

	// Third pass: initialize dependency counters.
	for _, inst := range g.ordered {
		inst.SetPendingDeps(int32(len(g.deps[inst.ID()])))
	}

	if err := g.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: cycle detection passed.")

	return g, nil
}

// detectCycles checks for circular dependencies using depth-first search
// with the usual visiting/visited coloring. Edges are identical across all
// instances of a template, so a cycle surfaces regardless of which instance
// the search enters through.
func (g *Graph) detectCycles() error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(inst *node.Instance) error
	visit = func(inst *node.Instance) error {
		visiting[inst.ID()] = true
		for _, dep := range g.deps[inst.ID()] {
			if visiting[dep.ID()] {
				return fmt.Errorf("%w: involving %q", ErrCyclicDependency, dep.Template.ID)
			}
			if !visited[dep.ID()] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		delete(visiting, inst.ID())
		visited[inst.ID()] = true
		return nil
	}

	for _, inst := range g.ordered {
		if !visited[inst.ID()] {
			if err := visit(inst); err != nil {
				return err
			}
		}
	}
	return nil
}
