//go:build unit

package tasks_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/errs"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/tasks"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunner(t *testing.T) {
	t.Run("runs tasks to completion", func(t *testing.T) {
		r := tasks.NewRunner(discardLogger(), time.Second)
		var ran atomic.Int32
		for range 5 {
			r.Go("count", func(context.Context) error {
				ran.Add(1)
				return nil
			})
		}
		r.Wait()
		assert.Equal(t, int32(5), ran.Load())
	})

	t.Run("a failing task does not affect other tasks", func(t *testing.T) {
		r := tasks.NewRunner(discardLogger(), time.Second)
		var ran atomic.Int32
		r.Go("fails", func(context.Context) error {
			return errs.New("smtp unavailable")
		})
		r.Go("succeeds", func(context.Context) error {
			ran.Add(1)
			return nil
		})
		r.Wait()
		assert.Equal(t, int32(1), ran.Load())
	})

	t.Run("recovers from a panicking task", func(t *testing.T) {
		r := tasks.NewRunner(discardLogger(), time.Second)
		r.Go("panics", func(context.Context) error {
			panic("boom")
		})
		assert.NotPanics(t, r.Wait)
	})

	t.Run("task context is bounded by the runner timeout", func(t *testing.T) {
		r := tasks.NewRunner(discardLogger(), 10*time.Millisecond)
		done := make(chan struct{})
		r.Go("blocked", func(ctx context.Context) error {
			<-ctx.Done()
			close(done)
			return ctx.Err()
		})
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("task context never expired")
		}
		r.Wait()
	})
}
