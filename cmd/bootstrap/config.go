package bootstrap

import (
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
)
