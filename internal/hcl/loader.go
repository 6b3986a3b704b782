package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/gridci/internal/config"
	"github.com/vk/gridci/internal/ctxlog"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL workflow loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads one workflow file and translates it into the agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Workflow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading HCL workflow.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse workflow file %s: %w", path, diags)
	}

	var parsed workflowFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode workflow file %s: %w", path, diags)
	}

	wf := &config.Workflow{Jobs: make([]*config.JobTemplate, 0, len(parsed.Jobs))}
	for _, jb := range parsed.Jobs {
		tmpl, err := l.translateJob(jb)
		if err != nil {
			return nil, fmt.Errorf("job %q in %s: %w", jb.ID, path, err)
		}
		wf.Jobs = append(wf.Jobs, tmpl)
	}

	logger.Debug("HCL workflow loaded.", "jobs", len(wf.Jobs))
	return wf, nil
}
