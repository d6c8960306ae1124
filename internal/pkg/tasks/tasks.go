// Package tasks runs best-effort side effects off the critical path.
package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner spawns detached tasks: fire-and-forget work whose failure is logged
// and never propagated. Callers must not depend on completion ordering
// relative to the response that triggered the task.
type Runner struct {
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewRunner(logger *slog.Logger, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{logger: logger, timeout: timeout}
}

// Go runs fn on its own goroutine with a fresh bounded context. The caller's
// context is deliberately not inherited so that task lifetime is decoupled
// from the request that spawned it.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("detached task panicked", "task", name, "panic", rec)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.logger.Error("detached task failed", "task", name, "error", err)
		}
	}()
}

// Wait blocks until all spawned tasks have returned. Used on shutdown and in
// tests; request handling never calls it.
func (r *Runner) Wait() {
	r.wg.Wait()
}
