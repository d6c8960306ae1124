package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/purchase"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/errs"

	"github.com/google/uuid"
)

func (u *webhookUseCaseImpl) processRefundUpdated(ctx context.Context, ev Event, logger *slog.Logger) error {
	var rf Refund
	if err := json.Unmarshal(ev.Data.Object, &rf); err != nil {
		return errs.Mark(err, ErrInvalidPayload)
	}

	rawID := rf.PurchaseID()
	if rawID == "" {
		// A refund the system cannot attribute is not actionable; erroring
		// here would only cause pointless provider retries.
		logger.Info("refund event without purchase id, ignoring", "refund_id", rf.ID)
		return nil
	}
	purchaseID, err := uuid.Parse(rawID)
	if err != nil {
		logger.Warn("refund event with malformed purchase id, ignoring", "refund_id", rf.ID, "purchase_id", rawID)
		return nil
	}

	// Same key as the completion path: refund and completion events for one
	// purchase must never interleave.
	return u.locks.WithLock(ctx, completionLockKey(rawID), u.stripeCfg.LockTimeout, func(ctx context.Context) error {
		return u.applyRefundUpdate(ctx, purchaseID, rf, logger)
	})
}

func (u *webhookUseCaseImpl) applyRefundUpdate(ctx context.Context, purchaseID uuid.UUID, rf Refund, logger *slog.Logger) error {
	p, err := u.purchases.FindByID(ctx, purchaseID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			logger.Info("purchase for refund event not found, ignoring", "purchase_id", purchaseID)
			return nil
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	logger = logger.With("purchase_id", p.ID(), "refund_status", rf.Status)

	switch rf.Status {
	case "succeeded":
		return u.applyRefundSucceeded(ctx, p, logger)

	case "failed":
		if p.Status() == purchase.StatusRefunded {
			logger.Info("purchase already refunded, ignoring refund failure")
			return nil
		}
		if err := p.MarkRefundFailed(rf.FailureReason); err != nil {
			logger.Warn("refund failure not applicable", "error", err)
			return nil
		}
		if err := u.purchases.Save(ctx, p); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		logger.Info("refund failure recorded")
		return nil

	case "pending":
		// In-flight on the provider side; deliberately no store write.
		logger.Debug("refund pending, deferring")
		return nil

	case "canceled":
		p.NoteRefundCanceled()
		if err := u.purchases.Save(ctx, p); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		u.dispatchRefundCanceledAlert(p)
		logger.Info("refund cancelation recorded")
		return nil

	default:
		logger.Warn("unrecognized refund status, ignoring")
		return nil
	}
}

func (u *webhookUseCaseImpl) applyRefundSucceeded(ctx context.Context, p *purchase.Purchase, logger *slog.Logger) error {
	if p.Status() == purchase.StatusRefunded {
		logger.Info("purchase already refunded, skipping")
		return nil
	}

	if err := p.MarkRefunded(u.clock.Now()); err != nil {
		logger.Warn("refund success not applicable", "error", err)
		return nil
	}
	if err := u.purchases.Save(ctx, p); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	u.compensatePromoCodes(ctx, p, logger)
	u.dispatchRefundSucceededEffects(p)

	logger.Info("purchase refunded")
	return nil
}

func (u *webhookUseCaseImpl) dispatchRefundSucceededEffects(p *purchase.Purchase) {
	orderNumber := p.OrderNumber()
	purchaseID := p.ID()
	email := p.Billing().Email

	u.runner.Go("refund-succeeded-notification", func(ctx context.Context) error {
		return u.notifier.Notify(ctx, Notification{
			Priority: NotifyHigh,
			Title:    "Refund completed",
			Message:  "Order " + orderNumber + " was refunded",
		})
	})

	if email != "" {
		u.runner.Go("refund-confirmation-email", func(ctx context.Context) error {
			return u.emails.SendRefundConfirmation(ctx, email, orderNumber)
		})
	}

	u.runner.Go("refund-succeeded-audit", func(ctx context.Context) error {
		return u.audits.Record(ctx, AuditEntry{
			Action:     "purchase_refunded",
			PurchaseID: purchaseID,
			Details:    map[string]any{"order_number": orderNumber},
		})
	})
}

func (u *webhookUseCaseImpl) dispatchRefundCanceledAlert(p *purchase.Purchase) {
	orderNumber := p.OrderNumber()
	u.runner.Go("refund-canceled-alert", func(ctx context.Context) error {
		return u.notifier.Notify(ctx, Notification{
			Priority: NotifyAlert,
			Title:    "Refund canceled by provider",
			Message:  "A requested refund for order " + orderNumber + " was canceled; manual review required",
		})
	})
}
