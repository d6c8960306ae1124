package commands

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/tasks"
)

// donationUseCaseImpl handles checkout sessions tagged as donations. Donations
// have no purchase row and no promo lifecycle; the event is acknowledged once
// the gift is announced and logged.
type donationUseCaseImpl struct {
	notifier AdminNotifier
	runner   *tasks.Runner
	logger   *slog.Logger
}

func NewDonationProcessor(notifier AdminNotifier, runner *tasks.Runner, logger *slog.Logger) DonationProcessor {
	return &donationUseCaseImpl{notifier: notifier, runner: runner, logger: logger}
}

func (u *donationUseCaseImpl) HandleCheckoutCompleted(_ context.Context, sess CheckoutSession) error {
	amount := sess.AmountTotal
	donor := ""
	if sess.CustomerDetails != nil {
		donor = sess.CustomerDetails.Name
	}

	u.logger.Info("donation received", "session_id", sess.ID, "amount_cents", amount, "donor", donor)

	message := "A donation of $" + strconv.FormatFloat(float64(amount)/100, 'f', 2, 64) + " was received"
	if donor != "" {
		message += " from " + donor
	}
	u.runner.Go("donation-received-notification", func(ctx context.Context) error {
		return u.notifier.Notify(ctx, Notification{
			Priority: NotifyNormal,
			Title:    "Donation received",
			Message:  message,
		})
	})
	return nil
}
