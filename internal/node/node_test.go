package node

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/gridci/internal/config"
	"github.com/vk/gridci/internal/jobid"
)

func TestStatus_Terminal(t *testing.T) {
	t.Parallel()

	terminal := []Status{StatusSucceeded, StatusFailed, StatusSkipped, StatusCancelled}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "%s should be terminal", s)
	}

	live := []Status{StatusPending, StatusBlocked, StatusReady, StatusRunning}
	for _, s := range live {
		assert.False(t, s.Terminal(), "%s should not be terminal", s)
	}
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "cancelled", StatusCancelled.String())
	assert.Equal(t, "unknown", Status(99).String())
}

func TestInstance_Lifecycle(t *testing.T) {
	t.Parallel()

	tmpl := &config.JobTemplate{ID: "build"}
	inst := NewInstance(jobid.New("build"), tmpl)

	assert.Equal(t, "build", inst.ID())
	assert.Equal(t, StatusPending, inst.Status())
	assert.Equal(t, -1, inst.ExitCode)

	inst.SetStatus(StatusRunning)
	assert.Equal(t, StatusRunning, inst.Status())
}

func TestInstance_Binding(t *testing.T) {
	t.Parallel()

	addr := jobid.New("test", jobid.AxisValue{Axis: "os", Value: "linux"})
	inst := NewInstance(addr, &config.JobTemplate{ID: "test"})

	assert.Equal(t, map[string]string{"os": "linux"}, inst.Binding())
	assert.Equal(t, "test[os=linux]", inst.ID())
}

func TestInstance_ResolveRunsExactlyOnce(t *testing.T) {
	t.Parallel()

	inst := NewInstance(jobid.New("build"), &config.JobTemplate{ID: "build"})

	calls := 0
	first := inst.Resolve(func() { calls++ })
	second := inst.Resolve(func() { calls++ })

	assert.True(t, first)
	assert.False(t, second)
	assert.Equal(t, 1, calls)
}

func TestInstance_ResolveUnderContention(t *testing.T) {
	t.Parallel()

	inst := NewInstance(jobid.New("build"), &config.JobTemplate{ID: "build"})

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if inst.Resolve(func() {}) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one caller owns the terminal transition")
}

func TestInstance_DecrementPendingDeps(t *testing.T) {
	t.Parallel()

	inst := NewInstance(jobid.New("build"), &config.JobTemplate{ID: "build"})
	inst.SetPendingDeps(2)

	assert.Equal(t, int32(1), inst.DecrementPendingDeps())
	assert.Equal(t, int32(0), inst.DecrementPendingDeps())
}
