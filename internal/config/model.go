package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
)

// Workflow is the unified, format-agnostic representation of one pipeline
// definition: the full set of job templates to be expanded and executed.
type Workflow struct {
	Jobs []*JobTemplate
}

// JobTemplate is the format-agnostic representation of a `job` block. It is
// immutable for the duration of a run; expansion produces the mutable
// instances the scheduler operates on.
type JobTemplate struct {
	// ID is the unique template identifier, e.g. "build".
	ID string

	// Steps is the ordered, opaque command sequence handed to the runner.
	Steps []Step

	// Needs lists the template identifiers this job depends on. Every
	// instance of this template waits for every instance of each listed
	// template.
	Needs []string

	// When controls whether an instance runs once its dependencies are
	// terminal. Nil means the default rule: run only if all dependencies
	// succeeded.
	When *Condition

	// Matrix holds the parameter axes for fan-out expansion. Nil or empty
	// means the template produces exactly one instance.
	Matrix *Matrix

	// Timeout bounds a single instance's execution. Zero means no limit.
	Timeout time.Duration
}

// Step is a single opaque instruction inside a job.
type Step struct {
	Name string
	Run  string
}

// Matrix holds the ordered parameter axes of a job template. Axis order and
// value order are the declaration order from the source file; expansion
// ordering is derived from them and must be deterministic.
type Matrix struct {
	Axes []Axis
}

// Axis is one named parameter dimension with its ordered values.
type Axis struct {
	Name   string
	Values []string
}

// ConditionMode distinguishes the supported run-condition policies.
type ConditionMode int

const (
	// ConditionDefault runs the job only if all dependencies succeeded and
	// propagates skips transitively.
	ConditionDefault ConditionMode = iota
	// ConditionAlways runs the job once all dependencies are terminal,
	// regardless of their outcome.
	ConditionAlways
	// ConditionCustom evaluates a user expression against the terminal
	// results of the job's dependencies.
	ConditionCustom
)

// String returns the configuration keyword for the mode.
func (m ConditionMode) String() string {
	switch m {
	case ConditionAlways:
		return "always"
	case ConditionCustom:
		return "custom"
	default:
		return "on_success"
	}
}

// Condition is the run-condition attached to a job template. Modeled as a
// small sum type so new policies are additions, not engine changes.
type Condition struct {
	Mode ConditionMode

	// Expr is set only when Mode is ConditionCustom. Evaluation is deferred
	// until every dependency instance is terminal, mirroring how argument
	// expressions are kept raw until the values they reference exist.
	Expr hcl.Expression
}
