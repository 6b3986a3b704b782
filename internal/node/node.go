// Package node defines the job instance: one expanded vertex of the
// execution graph, carrying the frozen matrix binding and the mutable
// execution state the scheduler drives through its lifecycle.
package node

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/gridci/internal/config"
	"github.com/vk/gridci/internal/jobid"
)

// Status is the execution state of a job instance.
type Status int32

const (
	// StatusPending indicates the instance is waiting for its dependencies
	// to reach a terminal state.
	StatusPending Status = iota
	// StatusBlocked indicates all dependencies are terminal and the run
	// condition decided against running; the instance is about to be skipped.
	StatusBlocked
	// StatusReady indicates the run condition decided to run and the
	// instance is queued for a worker.
	StatusReady
	// StatusRunning indicates a worker is executing the instance's steps.
	StatusRunning
	// StatusSucceeded is terminal: the job unit exited zero.
	StatusSucceeded
	// StatusFailed is terminal: non-zero exit, executor error, or a broken
	// run condition (fail-closed).
	StatusFailed
	// StatusSkipped is terminal: the run condition decided against running.
	StatusSkipped
	// StatusCancelled is terminal: the run was aborted before or during
	// this instance's execution.
	StatusCancelled
)

// String returns the lower-case status name used in reports and condition
// expressions.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusBlocked:
		return "blocked"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is one no instance leaves.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped, StatusCancelled:
		return true
	}
	return false
}

// Instance is a single vertex in the execution graph: one expansion of a
// job template with a frozen parameter binding.
type Instance struct {
	// id is the unique, structured identifier for the instance.
	id *jobid.Address
	// Template is the immutable job template this instance was expanded from.
	Template *config.JobTemplate

	// Err stores the error that failed or cancelled the instance, if any.
	Err error
	// Log is the combined step output captured by the job unit.
	Log string
	// ExitCode is the job unit's exit status. Meaningful only once the
	// instance is Succeeded or Failed; -1 means the unit never ran.
	ExitCode int
	// StartedAt and EndedAt bracket the Running phase. Zero for instances
	// that never ran.
	StartedAt time.Time
	EndedAt   time.Time

	// status is the instance's current execution state, managed atomically
	// so report snapshots can read it while the scheduler writes.
	status atomic.Int32
	// pendingDeps counts dependency instances not yet terminal.
	pendingDeps atomic.Int32
	// resolveOnce guarantees the instance reaches a terminal state through
	// exactly one path (condition evaluation, execution, or cancellation).
	resolveOnce sync.Once
}

// NewInstance creates a Pending instance of the given template.
func NewInstance(id *jobid.Address, tmpl *config.JobTemplate) *Instance {
	return &Instance{id: id, Template: tmpl, ExitCode: -1}
}

// ID returns the canonical string form of the instance's address.
func (n *Instance) ID() string {
	return n.id.String()
}

// Address returns the structured address of the instance.
func (n *Instance) Address() *jobid.Address {
	return n.id
}

// Binding returns the frozen matrix binding as a map, nil for instances of
// an unparameterized template.
func (n *Instance) Binding() map[string]string {
	return n.id.Values()
}

// Status atomically retrieves the instance's execution state.
func (n *Instance) Status() Status {
	return Status(n.status.Load())
}

// SetStatus atomically sets the instance's execution state. Transitions are
// serialized by the scheduler; this only makes concurrent reads safe.
func (n *Instance) SetStatus(s Status) {
	n.status.Store(int32(s))
}

// SetPendingDeps initializes the unmet-dependency counter.
func (n *Instance) SetPendingDeps(count int32) {
	n.pendingDeps.Store(count)
}

// DecrementPendingDeps atomically decrements the unmet-dependency counter
// and returns the new value. The caller that observes zero owns the
// instance's condition evaluation.
func (n *Instance) DecrementPendingDeps() int32 {
	return n.pendingDeps.Add(-1)
}

// Resolve runs f exactly once over the instance's lifetime and reports
// whether this call was the one that ran it. Every path that moves an
// instance to a terminal state goes through Resolve, which is what makes
// status transitions monotonic under concurrent completions.
func (n *Instance) Resolve(f func()) bool {
	ran := false
	n.resolveOnce.Do(func() {
		f()
		ran = true
	})
	return ran
}
