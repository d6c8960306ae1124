package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/promocode"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/purchase"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/errs"
)

// consumePromoCode marks the purchase's referenced code used, exactly once.
// Returns the code when this delivery consumed it, nil for the silent no-op
// cases (no code, unknown code, already used). Store failures propagate: the
// consumption is part of the lock-guarded transition, not a side channel.
func (u *webhookUseCaseImpl) consumePromoCode(ctx context.Context, p *purchase.Purchase, logger *slog.Logger) (*promocode.PromoCode, error) {
	pc, err := u.findPurchasePromoCode(ctx, p)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if pc == nil {
		return nil, nil
	}

	usage := promocode.Usage{
		UserName:  p.Billing().Name,
		UserEmail: p.Billing().Email,
		Subject:   u.subjectTitleFor(ctx, p, logger),
		At:        u.clock.Now(),
	}

	if err := pc.MarkUsed(usage); err != nil {
		switch {
		case errors.Is(err, promocode.ErrAlreadyUsed):
			logger.Info("promo code already used, skipping", "code", pc.Code())
		case errors.Is(err, promocode.ErrInactive):
			logger.Warn("purchase references an inactive promo code", "code", pc.Code())
		default:
			logger.Warn("promo code consumption rejected", "code", pc.Code(), "error", err)
		}
		return nil, nil
	}

	if err := u.promoCodes.Save(ctx, pc); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return pc, nil
}

// maybeGenerateBundleCode mints the post-purchase incentive code and persists
// its attachment to the already-completed purchase. Free purchases never spawn
// bundle incentives, and every failure on this path is swallowed: the
// completion has already committed and must stand regardless.
func (u *webhookUseCaseImpl) maybeGenerateBundleCode(ctx context.Context, p *purchase.Purchase, logger *slog.Logger) {
	if p.FinalPrice() <= 0 || p.BundlePromoCode() != nil {
		return
	}

	cfg, err := u.sysConfig.BundleDiscount(ctx)
	if err != nil {
		logger.Warn("bundle discount config unavailable", "error", err)
		return
	}
	if !cfg.Enabled {
		return
	}

	expiry := u.clock.Now().AddDate(0, 0, cfg.ValidityDays)
	code, err := promocode.NewBundleCode(p.UserID(), cfg.AmountCents, p.ProgramID(), p.EventID(), expiry)
	if err != nil {
		logger.Warn("bundle code generation failed", "error", err)
		return
	}

	if err := u.promoCodes.Create(ctx, code); err != nil {
		logger.Warn("bundle code persistence failed", "code", code.Code(), "error", err)
		return
	}

	if err := p.AttachBundleCode(code.Code(), expiry); err != nil {
		logger.Warn("bundle code attachment rejected", "code", code.Code(), "error", err)
		return
	}
	if err := u.purchases.Save(ctx, p); err != nil {
		logger.Warn("bundle code attachment save failed", "code", code.Code(), "error", err)
	}
}

// compensatePromoCodes runs on a succeeded refund, inside the purchase lock.
// Both compensations are best-effort: their failure never blocks the refund
// transition, which has already been persisted.
func (u *webhookUseCaseImpl) compensatePromoCodes(ctx context.Context, p *purchase.Purchase, logger *slog.Logger) {
	pc, err := u.findPurchasePromoCode(ctx, p)
	if err != nil {
		logger.Warn("promo code lookup failed during refund compensation", "error", err)
	} else if pc != nil && pc.IsUsed() {
		if err := pc.Reverse(); err != nil {
			logger.Warn("promo code reversal rejected", "code", pc.Code(), "error", err)
		} else if err := u.promoCodes.Save(ctx, pc); err != nil {
			logger.Warn("promo code reversal save failed", "code", pc.Code(), "error", err)
		}
	}

	// A spawned bundle code is revoked outright, redeemed or not.
	if bc := p.BundlePromoCode(); bc != nil {
		if err := u.promoCodes.DeleteByCode(ctx, *bc); err != nil && !infra.IsKind(err, infra.KindNotFound) {
			logger.Warn("bundle code deletion failed", "code", *bc, "error", err)
		}
	}
}

// findPurchasePromoCode resolves by code string, falling back to the code id.
// A purchase without a code reference, or a reference to a code that no
// longer exists, yields (nil, nil).
func (u *webhookUseCaseImpl) findPurchasePromoCode(ctx context.Context, p *purchase.Purchase) (*promocode.PromoCode, error) {
	if code := p.PromoCode(); code != nil && *code != "" {
		pc, err := u.promoCodes.FindByCode(ctx, *code)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return pc, nil
	}

	if id := p.PromoCodeID(); id != nil {
		pc, err := u.promoCodes.FindByID(ctx, *id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return pc, nil
	}

	return nil, nil
}

func (u *webhookUseCaseImpl) subjectTitleFor(ctx context.Context, p *purchase.Purchase, logger *slog.Logger) string {
	title, err := u.programs.SubjectTitle(ctx, p.ProgramID(), p.EventID())
	if err != nil {
		logger.Warn("subject title lookup failed", "error", err)
		return p.OrderNumber()
	}
	return title
}
