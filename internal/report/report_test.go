package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridci/internal/config"
	"github.com/vk/gridci/internal/graph"
	"github.com/vk/gridci/internal/node"
)

// buildGraph constructs a graph from templates for report tests.
func buildGraph(t *testing.T, jobs ...*config.JobTemplate) *graph.Graph {
	t.Helper()
	g, err := graph.Build(context.Background(), &config.Workflow{Jobs: jobs})
	require.NoError(t, err)
	return g
}

func TestBuild_AllSucceeded(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, &config.JobTemplate{ID: "build"}, &config.JobTemplate{ID: "test"})
	for _, inst := range g.Instances() {
		inst.ExitCode = 0
		inst.SetStatus(node.StatusSucceeded)
	}

	started := time.Now().Add(-time.Second)
	ended := time.Now()
	rep := Build(g, started, ended)

	assert.Equal(t, VerdictSuccess, rep.Verdict)
	assert.Empty(t, rep.Causes)
	assert.Len(t, rep.Jobs, 2)
	assert.Equal(t, "succeeded", rep.Jobs["build"].Status)
	assert.Equal(t, started, rep.StartedAt)
	assert.Equal(t, ended, rep.EndedAt)
}

func TestBuild_SkipsDoNotFailTheRun(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, &config.JobTemplate{ID: "build"}, &config.JobTemplate{ID: "optional"})

	build, _ := g.Instance("build")
	build.ExitCode = 0
	build.SetStatus(node.StatusSucceeded)

	optional, _ := g.Instance("optional")
	optional.SetStatus(node.StatusSkipped)

	rep := Build(g, time.Now(), time.Now())
	assert.Equal(t, VerdictSuccess, rep.Verdict)
	assert.Equal(t, "skipped", rep.Jobs["optional"].Status)
}

func TestBuild_FailureCollectsCauses(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		&config.JobTemplate{ID: "build"},
		&config.JobTemplate{ID: "lint"},
		&config.JobTemplate{ID: "docs"},
	)

	build, _ := g.Instance("build")
	build.ExitCode = 1
	build.Err = errors.New(`job "build" exited with code 1`)
	build.Log = "compile error: main.go:3\n"
	build.SetStatus(node.StatusFailed)

	lint, _ := g.Instance("lint")
	lint.SetStatus(node.StatusCancelled)

	docs, _ := g.Instance("docs")
	docs.ExitCode = 0
	docs.SetStatus(node.StatusSucceeded)

	rep := Build(g, time.Now(), time.Now())

	assert.Equal(t, VerdictFailure, rep.Verdict)
	assert.ElementsMatch(t, []string{"build", "lint"}, rep.Causes)
	assert.Equal(t, 1, rep.Jobs["build"].ExitCode)
	assert.Contains(t, rep.Jobs["build"].Error, "exited with code 1")
	assert.Equal(t, "compile error: main.go:3\n", rep.Jobs["build"].Log)
}

func TestSnapshot_GatesFieldsOnStatus(t *testing.T) {
	t.Parallel()

	g := buildGraph(t,
		&config.JobTemplate{ID: "pending"},
		&config.JobTemplate{ID: "running"},
		&config.JobTemplate{ID: "done"},
	)

	running, _ := g.Instance("running")
	running.StartedAt = time.Now()
	running.SetStatus(node.StatusRunning)

	done, _ := g.Instance("done")
	done.StartedAt = time.Now().Add(-time.Second)
	done.EndedAt = time.Now()
	done.ExitCode = 0
	done.Log = "ok\n"
	done.SetStatus(node.StatusSucceeded)

	jobs := Snapshot(g)
	require.Len(t, jobs, 3)

	// A pending instance exposes nothing but its status.
	assert.Equal(t, "pending", jobs["pending"].Status)
	assert.Equal(t, -1, jobs["pending"].ExitCode)
	assert.True(t, jobs["pending"].StartedAt.IsZero())

	// A running instance exposes its start time but no exit fields yet.
	assert.Equal(t, "running", jobs["running"].Status)
	assert.False(t, jobs["running"].StartedAt.IsZero())
	assert.Equal(t, -1, jobs["running"].ExitCode)
	assert.True(t, jobs["running"].EndedAt.IsZero())

	// A terminal instance exposes the full record.
	assert.Equal(t, "succeeded", jobs["done"].Status)
	assert.Equal(t, 0, jobs["done"].ExitCode)
	assert.False(t, jobs["done"].EndedAt.IsZero())
	assert.Equal(t, "ok\n", jobs["done"].Log)
	assert.Empty(t, jobs["running"].Log, "a live instance exposes no log yet")
}
