package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/purchase"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/errs"
)

// Payment-intent events are unguarded: they perform a single lookup by
// provider id and a single status-guarded write. Re-delivering the same
// terminal write is harmless, so no lock is taken.

func (u *webhookUseCaseImpl) processPaymentIntentSucceeded(ctx context.Context, ev Event, logger *slog.Logger) error {
	pi, err := decodePaymentIntent(ev)
	if err != nil {
		return err
	}

	p, found, err := u.findIntentPurchase(ctx, pi.ID, logger)
	if err != nil || !found {
		return err
	}

	if p.Status() != purchase.StatusPending {
		logger.Info("purchase not pending, ignoring intent success", "purchase_id", p.ID(), "status", string(p.Status()))
		return nil
	}

	if err := p.Complete(u.clock.Now()); err != nil {
		return errs.Wrap(err, "completion transition rejected")
	}
	if err := u.purchases.Save(ctx, p); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	logger.Info("purchase completed via payment intent", "purchase_id", p.ID())
	return nil
}

func (u *webhookUseCaseImpl) processPaymentIntentFailed(ctx context.Context, ev Event, logger *slog.Logger) error {
	pi, err := decodePaymentIntent(ev)
	if err != nil {
		return err
	}

	p, found, err := u.findIntentPurchase(ctx, pi.ID, logger)
	if err != nil || !found {
		return err
	}

	if p.Status() != purchase.StatusPending {
		// Redundant failure delivery: the seat counter was already
		// compensated by the first one.
		logger.Info("purchase not pending, ignoring intent failure", "purchase_id", p.ID(), "status", string(p.Status()))
		return nil
	}

	if err := p.Fail(); err != nil {
		return errs.Wrap(err, "failure transition rejected")
	}
	if err := u.purchases.Save(ctx, p); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// Compensate the optimistic seat reservation taken when the class-rep
	// purchase was created. The failed status is already durable at this
	// point, so a retried delivery skips this branch entirely; when the
	// decrement itself fails, operators are alerted to release the seat by
	// hand.
	if p.IsClassRep() && p.ProgramID() != nil {
		if err := u.programs.DecrementClassRepSpots(ctx, *p.ProgramID()); err != nil {
			u.alertSeatCompensationFailure(p)
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	reason := ""
	if pi.LastPaymentError != nil {
		reason = pi.LastPaymentError.Message
	}
	logger.Info("purchase failed via payment intent", "purchase_id", p.ID(), "reason", reason)
	return nil
}

func (u *webhookUseCaseImpl) alertSeatCompensationFailure(p *purchase.Purchase) {
	orderNumber := p.OrderNumber()
	programID := p.ProgramID().String()
	u.runner.Go("class-rep-seat-compensation-alert", func(ctx context.Context) error {
		return u.notifier.Notify(ctx, Notification{
			Priority: NotifyAlert,
			Title:    "Class rep seat compensation failed",
			Message:  "Order " + orderNumber + " failed but the seat counter for program " + programID + " was not released; decrement it manually",
		})
	})
}

func decodePaymentIntent(ev Event) (PaymentIntent, error) {
	var pi PaymentIntent
	if err := json.Unmarshal(ev.Data.Object, &pi); err != nil {
		return PaymentIntent{}, errs.Mark(err, ErrInvalidPayload)
	}
	return pi, nil
}

// findIntentPurchase looks up by provider payment-intent id. A missing
// purchase is not actionable for intent events and is acknowledged.
func (u *webhookUseCaseImpl) findIntentPurchase(ctx context.Context, paymentIntentID string, logger *slog.Logger) (*purchase.Purchase, bool, error) {
	if paymentIntentID == "" {
		logger.Warn("payment intent event without id")
		return nil, false, nil
	}
	p, err := u.purchases.FindByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			logger.Info("no purchase for payment intent, ignoring", "payment_intent_id", paymentIntentID)
			return nil, false, nil
		}
		return nil, false, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return p, true, nil
}
