// Package condition decides, for a job instance whose dependencies have all
// reached a terminal state, whether the instance should run or be skipped.
//
// The three policies form a small sum type on config.Condition: the default
// rule (run only on all-succeeded, propagate skips), "always" (run
// regardless of dependency outcome), and custom HCL predicates evaluated
// against a read-only view of the dependencies' terminal results. Custom
// predicates fail closed: a broken expression marks the instance failed
// rather than silently skipping it.
package condition

import (
	"errors"
)

// Decision is the outcome of evaluating a run condition.
type Decision int

const (
	// Run means the instance becomes Ready and is handed to a worker.
	Run Decision = iota
	// Skip means the instance becomes Skipped without running.
	Skip
)

// ErrUnresolvedReference reports a custom predicate naming an identifier
// that does not exist in its evaluation scope.
var ErrUnresolvedReference = errors.New("unresolved reference in condition")
