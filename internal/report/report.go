// Package report aggregates the terminal state of a run into the per-job
// result map and the overall verdict.
package report

import (
	"time"

	"github.com/vk/gridci/internal/graph"
	"github.com/vk/gridci/internal/node"
)

// Verdict is the overall outcome of a run.
type Verdict string

const (
	// VerdictSuccess means every instance is Succeeded or Skipped.
	VerdictSuccess Verdict = "success"
	// VerdictFailure means at least one instance is Failed or Cancelled.
	VerdictFailure Verdict = "failure"
)

// JobResult is one instance's terminal record.
type JobResult struct {
	Status    string    `json:"status"`
	ExitCode  int       `json:"exit_code"`
	StartedAt time.Time `json:"started_at,omitzero"`
	EndedAt   time.Time `json:"ended_at,omitzero"`
	Error     string    `json:"error,omitempty"`
	Log       string    `json:"log,omitempty"`
}

// Report is the per-run result: every instance's terminal state, the
// overall verdict, and on failure the instances that caused it.
type Report struct {
	Verdict   Verdict              `json:"verdict"`
	Jobs      map[string]JobResult `json:"jobs"`
	Causes    []string             `json:"causes,omitempty"`
	StartedAt time.Time            `json:"started_at"`
	EndedAt   time.Time            `json:"ended_at"`
}

// Build computes the final report for a completed run. Skipped instances do
// not fail the pipeline by themselves; a job intentionally skipped is not a
// failure.
func Build(g *graph.Graph, startedAt, endedAt time.Time) *Report {
	r := &Report{
		Verdict:   VerdictSuccess,
		Jobs:      make(map[string]JobResult, g.Len()),
		StartedAt: startedAt,
		EndedAt:   endedAt,
	}

	for _, inst := range g.Instances() {
		res := JobResult{
			Status:    inst.Status().String(),
			ExitCode:  inst.ExitCode,
			StartedAt: inst.StartedAt,
			EndedAt:   inst.EndedAt,
			Log:       inst.Log,
		}
		if inst.Err != nil {
			res.Error = inst.Err.Error()
		}
		r.Jobs[inst.ID()] = res

		switch inst.Status() {
		case node.StatusFailed, node.StatusCancelled:
			r.Verdict = VerdictFailure
			r.Causes = append(r.Causes, inst.ID())
		}
	}
	return r
}

// Snapshot captures the current state of a possibly still-running graph.
// It reuses the terminal report shape but carries no verdict guarantee;
// non-terminal instances appear with their live status.
//
// The scheduler publishes timing and exit fields before the atomic status
// store, so a field is only read here once the status that guarantees it
// has been observed.
func Snapshot(g *graph.Graph) map[string]JobResult {
	jobs := make(map[string]JobResult, g.Len())
	for _, inst := range g.Instances() {
		status := inst.Status()
		res := JobResult{Status: status.String(), ExitCode: -1}
		if status == node.StatusRunning || status.Terminal() {
			res.StartedAt = inst.StartedAt
		}
		if status.Terminal() {
			res.ExitCode = inst.ExitCode
			res.EndedAt = inst.EndedAt
			res.Log = inst.Log
			if inst.Err != nil {
				res.Error = inst.Err.Error()
			}
		}
		jobs[inst.ID()] = res
	}
	return jobs
}
