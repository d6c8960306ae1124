package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/tasks"

	"go.uber.org/fx"
)

const detachedTaskTimeout = 30 * time.Second

var TasksModule = fx.Module("tasks",
	fx.Provide(
		NewTaskRunner,
	),
)

// NewTaskRunner builds the detached side-effect runner. Shutdown waits for
// in-flight tasks so acknowledged webhooks finish their side effects.
func NewTaskRunner(lc fx.Lifecycle, logger *slog.Logger) *tasks.Runner {
	runner := tasks.NewRunner(logger, detachedTaskTimeout)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			runner.Wait()
			return nil
		},
	})

	return runner
}
