package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/promocode"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/purchase"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/errs"

	"github.com/google/uuid"
)

func (u *webhookUseCaseImpl) processCheckoutCompleted(ctx context.Context, ev Event, logger *slog.Logger) error {
	var sess CheckoutSession
	if err := json.Unmarshal(ev.Data.Object, &sess); err != nil {
		return errs.Mark(err, ErrInvalidPayload)
	}

	if sess.IsDonation() {
		logger.Info("delegating donation checkout", "session_id", sess.ID)
		return u.donations.HandleCheckoutCompleted(ctx, sess)
	}

	// Per-purchase mutual exclusion. Older event shapes may lack the purchase
	// id in metadata; the session key keeps duplicate deliveries serialized.
	key := sessionLockKey(sess.ID)
	if rawID := sess.PurchaseID(); rawID != "" {
		key = completionLockKey(rawID)
	}

	return u.locks.WithLock(ctx, key, u.stripeCfg.LockTimeout, func(ctx context.Context) error {
		return u.completePurchase(ctx, sess, logger)
	})
}

// completePurchase runs under the per-purchase lock. Everything that informs
// a write happens inside; best-effort side channels are dispatched after the
// authoritative transition commits.
func (u *webhookUseCaseImpl) completePurchase(ctx context.Context, sess CheckoutSession, logger *slog.Logger) error {
	p, err := u.findSessionPurchase(ctx, sess)
	if err != nil {
		return err
	}
	logger = logger.With("purchase_id", p.ID(), "order_number", p.OrderNumber())

	if p.Status() != purchase.StatusPending {
		// Redundant delivery: the first delivery already completed the
		// purchase and ran its side effects.
		logger.Info("purchase already settled, skipping completion", "status", string(p.Status()))
		return nil
	}

	p.LinkProviderIDs(sess.ID, sess.PaymentIntentID)
	p.ApplyBilling(sess.Billing())

	if piID := paymentIntentIDFor(p, sess); piID != "" {
		if pm, err := u.gateway.PaymentMethodSnapshot(ctx, piID); err != nil {
			logger.Warn("payment method fetch failed", "error", err)
		} else {
			p.CapturePaymentMethod(pm)
		}
	}

	now := u.clock.Now()
	if err := p.Complete(now); err != nil {
		return errs.Wrap(err, "completion transition rejected")
	}

	// Promo consumption precedes the purchase save: if the save fails, the
	// retried delivery finds the purchase still pending and the consumed code
	// no-ops on its isUsed guard.
	consumed, err := u.consumePromoCode(ctx, p, logger)
	if err != nil {
		return err
	}

	if err := u.purchases.Save(ctx, p); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// Bundle minting waits for the transition to be durable. A code created
	// ahead of a failed save would outlive the 500: the retried delivery
	// re-reads the purchase without it and mints a second, leaving the first
	// as a redeemable orphan.
	u.maybeGenerateBundleCode(ctx, p, logger)

	u.dispatchCompletionEffects(p, consumed)
	return nil
}

func (u *webhookUseCaseImpl) findSessionPurchase(ctx context.Context, sess CheckoutSession) (*purchase.Purchase, error) {
	if rawID := sess.PurchaseID(); rawID != "" {
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, errs.Mark(err, ErrInvalidPayload)
		}
		p, err := u.purchases.FindByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, errs.Mark(err, ErrPurchaseNotFound)
			}
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return p, nil
	}

	p, err := u.purchases.FindByPaymentIntentID(ctx, sess.PaymentIntentID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrPurchaseNotFound)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return p, nil
}

func paymentIntentIDFor(p *purchase.Purchase, sess CheckoutSession) string {
	if sess.PaymentIntentID != "" {
		return sess.PaymentIntentID
	}
	if id := p.StripePaymentIntentID(); id != nil {
		return *id
	}
	return ""
}

func (u *webhookUseCaseImpl) dispatchCompletionEffects(p *purchase.Purchase, consumed *promocode.PromoCode) {
	orderNumber := p.OrderNumber()
	purchaseID := p.ID()
	amount := p.FinalPrice()
	email := p.Billing().Email

	if email != "" {
		u.runner.Go("purchase-confirmation-email", func(ctx context.Context) error {
			return u.emails.SendPurchaseConfirmation(ctx, email, orderNumber, amount)
		})
	}

	u.runner.Go("purchase-completed-audit", func(ctx context.Context) error {
		return u.audits.Record(ctx, AuditEntry{
			Action:     "purchase_completed",
			PurchaseID: purchaseID,
			Details:    map[string]any{"order_number": orderNumber, "amount_cents": amount},
		})
	})

	if consumed != nil && consumed.IsShared() {
		code := consumed.Code()
		u.runner.Go("shared-code-consumed-notification", func(ctx context.Context) error {
			return u.notifier.Notify(ctx, Notification{
				Priority: NotifyHigh,
				Title:    "Shared promo code consumed",
				Message:  "Code " + code + " was used by order " + orderNumber,
			})
		})
	}
}
