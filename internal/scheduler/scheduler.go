package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/vk/gridci/internal/ctxlog"
	"github.com/vk/gridci/internal/graph"
	"github.com/vk/gridci/internal/node"
	"github.com/vk/gridci/internal/report"
	"github.com/vk/gridci/internal/runner"
)

// DefaultWorkers is the concurrency bound used when Options leaves
// Workers unset.
const DefaultWorkers = 4

// Options configures one run.
type Options struct {
	// Workers bounds how many job units execute concurrently.
	Workers int
	// Runner executes each instance's step sequence.
	Runner runner.Runner
}

// Run is the handle for one execution of a graph. Start launches it;
// Cancel aborts it; Wait blocks until every instance is terminal and
// returns the aggregated report.
type Run struct {
	graph  *graph.Graph
	runner runner.Runner
	cancel context.CancelFunc

	ready chan *node.Instance
	wg    sync.WaitGroup
	done  chan struct{}

	startedAt time.Time
	rep       *report.Report
}

// Start begins executing the graph and returns immediately. The run
// inherits cancellation from ctx; Cancel aborts it explicitly.
func Start(ctx context.Context, g *graph.Graph, opts Options) *Run {
	logger := ctxlog.FromContext(ctx)

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &Run{
		graph:     g,
		runner:    opts.Runner,
		cancel:    cancel,
		ready:     make(chan *node.Instance, g.Len()),
		done:      make(chan struct{}),
		startedAt: time.Now(),
	}
	r.wg.Add(g.Len())

	logger.Debug("Seeding root instances.", "total", g.Len())
	roots := 0
	for _, inst := range g.Instances() {
		if len(g.Dependencies(inst.ID())) == 0 {
			r.dispatch(runCtx, inst)
			roots++
		}
	}
	logger.Debug("Root instances seeded.", "count", roots)

	logger.Debug("Starting worker pool.", "workers", workers)
	for i := 0; i < workers; i++ {
		go r.worker(runCtx, i)
	}

	go func() {
		r.wg.Wait()
		close(r.ready)
		r.rep = report.Build(g, r.startedAt, time.Now())
		cancel()
		close(r.done)
	}()

	return r
}

// Cancel aborts the run: queued instances end Cancelled and in-flight job
// units are signalled to stop. Instances already terminal are unaffected.
func (r *Run) Cancel() {
	r.cancel()
}

// Wait blocks until every instance is terminal and returns the report.
func (r *Run) Wait() *report.Report {
	<-r.done
	return r.rep
}

// Done returns a channel closed when the run completes.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Graph exposes the run's graph for live status snapshots.
func (r *Run) Graph() *graph.Graph {
	return r.graph
}
