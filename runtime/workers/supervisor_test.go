package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// flakyWorker fails a fixed number of times before finishing cleanly.
type flakyWorker struct {
	failures int32
	runs     atomic.Int32
}

func (w *flakyWorker) Run(_ context.Context) error {
	run := w.runs.Add(1)
	if run <= w.failures {
		return fmt.Errorf("transient failure %d", run)
	}
	return nil
}

// panicWorker panics once, then finishes.
type panicWorker struct {
	runs atomic.Int32
}

func (w *panicWorker) Run(_ context.Context) error {
	if w.runs.Add(1) == 1 {
		panic("boom")
	}
	return nil
}

// blockingWorker runs until its context is canceled.
type blockingWorker struct{}

func (w *blockingWorker) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func TestSupervisor_Restarts_Failing_Worker_Until_Clean_Exit(t *testing.T) {
	req := require.New(t)
	supervisor := NewSupervisor(slog.Default(), time.Millisecond)
	worker := &flakyWorker{failures: 3}

	supervisor.Add(worker)
	supervisor.Run(context.Background())

	req.Equal(int32(4), worker.runs.Load())
}

func TestSupervisor_Recovers_From_Panic(t *testing.T) {
	req := require.New(t)
	supervisor := NewSupervisor(slog.Default(), time.Millisecond)
	worker := &panicWorker{}

	supervisor.Add(worker)
	supervisor.Run(context.Background())

	req.Equal(int32(2), worker.runs.Load())
}

func TestSupervisor_Clean_Exit_Is_Not_Restarted(t *testing.T) {
	req := require.New(t)
	supervisor := NewSupervisor(slog.Default(), time.Millisecond)
	worker := &flakyWorker{failures: 0}

	supervisor.Add(worker)
	supervisor.Run(context.Background())

	req.Equal(int32(1), worker.runs.Load())
}

func TestSupervisor_Context_Cancel_Stops_Workers(t *testing.T) {
	req := require.New(t)
	supervisor := NewSupervisor(slog.Default(), time.Millisecond)
	supervisor.Add(&blockingWorker{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		supervisor.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		req.FailNow("supervisor did not stop after context cancellation")
	}
}

func TestSupervisor_Start_Standalone_Worker_Drains_On_Cancel(t *testing.T) {
	supervisor := NewSupervisor(slog.Default(), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	supervisor.Start(ctx, &blockingWorker{})
	cancel()

	done := make(chan struct{})
	go func() {
		supervisor.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("worker did not drain after cancellation")
	}
}
