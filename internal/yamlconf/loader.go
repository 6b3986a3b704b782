// Package yamlconf implements the YAML workflow loader. It produces the
// same format-agnostic model as the HCL loader from a `jobs:` mapping, so
// the engine never knows which syntax a workflow was written in. Custom
// condition strings are parsed as HCL expressions to share one evaluator.
package yamlconf

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/gridci/internal/config"
	"github.com/vk/gridci/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML workflow loader.
func NewLoader() *Loader {
	return &Loader{}
}

// yamlJob mirrors one entry of the `jobs:` mapping. Matrix is a value node,
// not a pointer: yaml.v3 leaves a *yaml.Node field zero-valued instead of
// filling it, so a pointer here would lose every matrix block.
type yamlJob struct {
	Needs   []string   `yaml:"needs"`
	When    string     `yaml:"when"`
	Timeout string     `yaml:"timeout"`
	Matrix  yaml.Node  `yaml:"matrix"`
	Steps   []yamlStep `yaml:"steps"`
}

// yamlStep is a single instruction inside a job.
type yamlStep struct {
	Name string `yaml:"name"`
	Run  string `yaml:"run"`
}

// Load reads one workflow file and translates it into the agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Workflow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading YAML workflow.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}

	// Decode through yaml.Node first: job declaration order matters for
	// deterministic queueing, and plain map decoding would lose it.
	var doc struct {
		Jobs yaml.Node `yaml:"jobs"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workflow file %s: %w", path, err)
	}
	if doc.Jobs.Kind == 0 {
		return nil, fmt.Errorf("workflow file %s has no jobs mapping", path)
	}
	if doc.Jobs.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("workflow file %s: jobs must be a mapping", path)
	}

	wf := &config.Workflow{}
	for i := 0; i+1 < len(doc.Jobs.Content); i += 2 {
		keyNode := doc.Jobs.Content[i]
		valNode := doc.Jobs.Content[i+1]

		var jb yamlJob
		if err := valNode.Decode(&jb); err != nil {
			return nil, fmt.Errorf("job %q in %s: %w", keyNode.Value, path, err)
		}
		tmpl, err := translateJob(keyNode.Value, &jb)
		if err != nil {
			return nil, fmt.Errorf("job %q in %s: %w", keyNode.Value, path, err)
		}
		wf.Jobs = append(wf.Jobs, tmpl)
	}

	logger.Debug("YAML workflow loaded.", "jobs", len(wf.Jobs))
	return wf, nil
}

// translateJob converts one YAML job entry into the agnostic model.
func translateJob(id string, jb *yamlJob) (*config.JobTemplate, error) {
	tmpl := &config.JobTemplate{
		ID:    id,
		Needs: jb.Needs,
	}

	for _, s := range jb.Steps {
		tmpl.Steps = append(tmpl.Steps, config.Step{Name: s.Name, Run: s.Run})
	}

	cond, err := translateCondition(jb.When)
	if err != nil {
		return nil, err
	}
	tmpl.When = cond

	if jb.Timeout != "" {
		d, err := time.ParseDuration(jb.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", jb.Timeout, err)
		}
		tmpl.Timeout = d
	}

	if jb.Matrix.Kind != 0 {
		m, err := translateMatrix(&jb.Matrix)
		if err != nil {
			return nil, err
		}
		tmpl.Matrix = m
	}

	return tmpl, nil
}

// translateCondition maps a `when` value onto the condition sum type: the
// keywords "always" and "on_success", or anything else as a custom HCL
// expression string.
func translateCondition(when string) (*config.Condition, error) {
	switch when {
	case "":
		return nil, nil
	case "always":
		return &config.Condition{Mode: config.ConditionAlways}, nil
	case "on_success":
		return &config.Condition{Mode: config.ConditionDefault}, nil
	}

	expr, diags := hclsyntax.ParseExpression([]byte(when), "when", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid when expression %q: %w", when, diags)
	}
	return &config.Condition{Mode: config.ConditionCustom, Expr: expr}, nil
}

// translateMatrix decodes a matrix mapping node into ordered axes,
// preserving the declared axis and value order.
func translateMatrix(n *yaml.Node) (*config.Matrix, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("matrix must be a mapping of axis name to value list")
	}

	m := &config.Matrix{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode := n.Content[i]
		valNode := n.Content[i+1]

		var values []string
		if err := valNode.Decode(&values); err != nil {
			return nil, fmt.Errorf("matrix axis %q must be a list of values: %w", keyNode.Value, err)
		}
		m.Axes = append(m.Axes, config.Axis{Name: keyNode.Value, Values: values})
	}
	return m, nil
}
