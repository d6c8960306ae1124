package components

import (
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/handler"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewWebhookHandler,
	),
	fx.Invoke(handler.NewRouter),
)
