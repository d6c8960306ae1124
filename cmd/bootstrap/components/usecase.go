package components

import (
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/clock"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/usecase/commands"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewDonationProcessor,
		commands.NewWebhookUseCase,
	),
)
