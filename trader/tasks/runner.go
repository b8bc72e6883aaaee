// Package tasks supervises the server's long-running background
// goroutines with a shared lifecycle.
package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner owns every background task. Tasks share a root context; one
// Shutdown cancels them all and waits.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	tasks  map[string]*taskInfo
	mu     sync.RWMutex
}

type taskInfo struct {
	name        string
	description string
	cancel      context.CancelFunc
}

func NewRunner() *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(map[string]*taskInfo),
	}
}

// Schedule starts fn under supervision. Scheduling a name that is
// already running is skipped, not restarted; the running task keeps its
// state.
func (r *Runner) Schedule(name, description string, fn func(ctx context.Context)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[name]; exists {
		slog.Warn("Task already scheduled, skipping",
			slog.String("type", "system"),
			slog.String("task", name))
		return false
	}

	taskCtx, taskCancel := context.WithCancel(r.ctx)
	r.tasks[name] = &taskInfo{
		name:        name,
		description: description,
		cancel:      taskCancel,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.forget(name)
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Background task panic",
					slog.String("type", "error"),
					slog.String("task", name),
					slog.Any("panic", rec))
			}
		}()

		slog.Info("Starting background task",
			slog.String("type", "system"),
			slog.String("task", name),
			slog.String("description", description))

		fn(taskCtx)

		slog.Info("Background task ended",
			slog.String("type", "system"),
			slog.String("task", name))
	}()
	return true
}

// Stop cancels one task by name.
func (r *Runner) Stop(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task, exists := r.tasks[name]; exists {
		task.cancel()
		delete(r.tasks, name)
	}
}

func (r *Runner) forget(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, name)
}

// Count returns the number of running tasks.
func (r *Runner) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// Context is the root context tasks inherit from.
func (r *Runner) Context() context.Context {
	return r.ctx
}

// Shutdown cancels everything and waits up to timeout.
func (r *Runner) Shutdown(timeout time.Duration) error {
	slog.Info("Shutting down background tasks",
		slog.String("type", "system"),
		slog.Int("task_count", r.Count()))

	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		slog.Warn("Timeout waiting for background tasks",
			slog.String("type", "system"),
			slog.Duration("timeout", timeout))
		return context.DeadlineExceeded
	}
}
