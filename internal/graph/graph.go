package graph

import (
	"errors"

	"github.com/vk/gridci/internal/node"
)

var (
	// ErrUnknownDependency reports a needs entry naming no existing template.
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrSelfDependency reports a template that names itself in needs.
	ErrSelfDependency = errors.New("job depends on itself")

	// ErrCyclicDependency reports a dependency cycle between templates.
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrDuplicateJob reports two templates sharing one identifier.
	ErrDuplicateJob = errors.New("duplicate job identifier")
)

// Graph is the immutable, validated DAG of job instances for one run. The
// topology never changes after Build; only instance state does.
type Graph struct {
	// instances holds every expanded instance keyed by its canonical ID.
	instances map[string]*node.Instance
	// ordered preserves declaration-then-expansion order, which fixes the
	// queueing order among simultaneously ready instances.
	ordered []*node.Instance
	// byTemplate indexes instances by their template identifier, so
	// resolving a template-level dependency to its instances is one lookup.
	byTemplate map[string][]*node.Instance
	// deps and dependents hold the instance-level edges.
	deps       map[string][]*node.Instance
	dependents map[string][]*node.Instance
}

// Instances returns every instance in declaration-then-expansion order.
func (g *Graph) Instances() []*node.Instance {
	return g.ordered
}

// Instance looks up one instance by its canonical ID.
func (g *Graph) Instance(id string) (*node.Instance, bool) {
	n, ok := g.instances[id]
	return n, ok
}

// Len returns the number of instances in the graph.
func (g *Graph) Len() int {
	return len(g.ordered)
}

// InstancesOf returns all instances expanded from the named template.
func (g *Graph) InstancesOf(template string) []*node.Instance {
	return g.byTemplate[template]
}

// Dependencies returns the instances the given instance waits on.
func (g *Graph) Dependencies(id string) []*node.Instance {
	return g.deps[id]
}

// Dependents returns the instances waiting on the given instance.
func (g *Graph) Dependents(id string) []*node.Instance {
	return g.dependents[id]
}
