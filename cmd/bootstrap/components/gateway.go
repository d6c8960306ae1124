package components

import (
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra/email"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra/lock"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra/notify"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra/stripe"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/config"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/usecase/commands"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(
			lock.NewKeyedProvider,
			fx.As(new(commands.LockProvider)),
		),
		fx.Annotate(
			NewStripeGateway,
			fx.As(new(commands.PaymentGateway)),
		),
		fx.Annotate(
			NewEmailSender,
			fx.As(new(commands.EmailSender)),
			fx.As(new(notify.Mailer)),
		),
		fx.Annotate(
			notify.NewFanoutNotifier,
			fx.As(new(commands.AdminNotifier)),
		),
	),
)

func NewStripeGateway(cfg config.Config) *stripe.Gateway {
	return stripe.NewGateway(cfg.Stripe)
}

func NewEmailSender(cfg config.Config) *email.ResendSender {
	return email.NewResendSender(cfg.Email)
}
