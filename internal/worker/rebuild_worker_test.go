package worker_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"finrag-orchestrator/internal/worker"

	"github.com/stretchr/testify/assert"
)

type countingRebuild struct {
	count   atomic.Int32
	started chan struct{}
}

func (c *countingRebuild) Execute(ctx context.Context) error {
	c.count.Add(1)
	if c.started != nil {
		select {
		case c.started <- struct{}{}:
		default:
		}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRebuildWorker_TriggerRunsRebuild(t *testing.T) {
	rebuild := &countingRebuild{started: make(chan struct{}, 1)}
	w := worker.NewRebuildWorker(rebuild, 0, discardLogger())
	w.Start()
	defer w.Stop()

	assert.True(t, w.Trigger())

	select {
	case <-rebuild.started:
	case <-time.After(2 * time.Second):
		t.Fatal("rebuild did not run after trigger")
	}
	assert.Equal(t, int32(1), rebuild.count.Load())
}

func TestRebuildWorker_SecondTriggerWhilePendingIsRejected(t *testing.T) {
	rebuild := &countingRebuild{}
	w := worker.NewRebuildWorker(rebuild, 0, discardLogger())
	// Not started: the first trigger fills the buffer, the second must bounce.
	assert.True(t, w.Trigger())
	assert.False(t, w.Trigger())
}

func TestRebuildWorker_StopTerminates(t *testing.T) {
	rebuild := &countingRebuild{}
	w := worker.NewRebuildWorker(rebuild, 0, discardLogger())
	w.Start()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRebuildWorker_PeriodicRebuild(t *testing.T) {
	rebuild := &countingRebuild{started: make(chan struct{}, 1)}
	w := worker.NewRebuildWorker(rebuild, 20*time.Millisecond, discardLogger())
	w.Start()
	defer w.Stop()

	select {
	case <-rebuild.started:
	case <-time.After(2 * time.Second):
		t.Fatal("periodic rebuild did not run")
	}
}
