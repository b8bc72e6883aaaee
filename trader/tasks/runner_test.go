package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerDuplicateScheduleSkipped(t *testing.T) {
	r := NewRunner()
	defer r.Shutdown(time.Second)

	var starts int32
	task := func(ctx context.Context) {
		atomic.AddInt32(&starts, 1)
		<-ctx.Done()
	}

	if !r.Schedule("market", "recompute prices", task) {
		t.Fatal("first schedule should succeed")
	}
	if r.Schedule("market", "recompute prices", task) {
		t.Error("duplicate schedule should be skipped")
	}

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&starts); got != 1 {
		t.Errorf("task started %d times, want 1", got)
	}
	if r.Count() != 1 {
		t.Errorf("count = %d, want 1", r.Count())
	}
}

func TestRunnerShutdownCancelsTasks(t *testing.T) {
	r := NewRunner()

	stopped := make(chan struct{})
	r.Schedule("loop", "", func(ctx context.Context) {
		<-ctx.Done()
		close(stopped)
	})

	if err := r.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	select {
	case <-stopped:
	default:
		t.Error("task was not cancelled by shutdown")
	}
}

func TestRunnerSurvivesPanickingTask(t *testing.T) {
	r := NewRunner()
	defer r.Shutdown(time.Second)

	r.Schedule("bad", "", func(ctx context.Context) {
		panic("boom")
	})

	time.Sleep(50 * time.Millisecond)
	if r.Count() != 0 {
		t.Errorf("panicked task should be forgotten, count = %d", r.Count())
	}

	// The runner still accepts new work after a panic.
	if !r.Schedule("good", "", func(ctx context.Context) { <-ctx.Done() }) {
		t.Error("schedule after panic should succeed")
	}
}

func TestRunnerNameFreeAfterTaskEnds(t *testing.T) {
	r := NewRunner()
	defer r.Shutdown(time.Second)

	done := make(chan struct{})
	r.Schedule("oneshot", "", func(ctx context.Context) { close(done) })
	<-done
	time.Sleep(50 * time.Millisecond)

	if !r.Schedule("oneshot", "", func(ctx context.Context) { <-ctx.Done() }) {
		t.Error("finished task's name should be reusable")
	}
}
