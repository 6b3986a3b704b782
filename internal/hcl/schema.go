package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// workflowFile represents the top-level structure of a workflow file.
type workflowFile struct {
	Jobs []*jobBlock `hcl:"job,block"`
	Body hcl.Body    `hcl:",remain"`
}

// jobBlock represents a `job` block from a user's workflow file.
type jobBlock struct {
	ID        string         `hcl:"id,label"`
	Needs     []string       `hcl:"needs,optional"`
	RunWhen   *string        `hcl:"run_when,optional"`
	Condition hcl.Expression `hcl:"condition,optional"`
	Timeout   *string        `hcl:"timeout,optional"`
	Matrix    *matrixBlock   `hcl:"matrix,block"`
	Steps     []*stepBlock   `hcl:"step,block"`
}

// matrixBlock captures the raw body of a `matrix` block. Axes are arbitrary
// attribute names, so the body is decoded manually to preserve declaration
// order.
type matrixBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// stepBlock represents a single `step` block inside a job.
type stepBlock struct {
	Name string `hcl:"name,label"`
	Run  string `hcl:"run"`
}
