package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/clock"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/config"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/errs"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/stripesig"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/tasks"
)

var (
	ErrInvalidSignature        = errs.New("invalid webhook signature")
	ErrInvalidPayload          = errs.New("invalid webhook payload")
	ErrPurchaseNotFound        = errs.New("purchase not found")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// WebhookCommands is the entry point for inbound provider webhook deliveries.
// A nil return means the delivery is acknowledged (processed or deliberately
// ignored); a signature/payload error means the provider must not retry; any
// other error is the provider's retry signal.
type WebhookCommands interface {
	ProcessEvent(ctx context.Context, payload []byte, signatureHeader string) error
}

type webhookUseCaseImpl struct {
	purchases  PurchaseRepository
	promoCodes PromoCodeRepository
	programs   ProgramRepository
	sysConfig  SystemConfigReader
	locks      LockProvider
	gateway    PaymentGateway
	notifier   AdminNotifier
	emails     EmailSender
	audits     AuditRecorder
	donations  DonationProcessor
	runner     *tasks.Runner
	clock      clock.Clock
	stripeCfg  config.StripeConfig
	logger     *slog.Logger
}

func NewWebhookUseCase(
	purchases PurchaseRepository,
	promoCodes PromoCodeRepository,
	programs ProgramRepository,
	sysConfig SystemConfigReader,
	locks LockProvider,
	gateway PaymentGateway,
	notifier AdminNotifier,
	emails EmailSender,
	audits AuditRecorder,
	donations DonationProcessor,
	runner *tasks.Runner,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) WebhookCommands {
	return &webhookUseCaseImpl{
		purchases:  purchases,
		promoCodes: promoCodes,
		programs:   programs,
		sysConfig:  sysConfig,
		locks:      locks,
		gateway:    gateway,
		notifier:   notifier,
		emails:     emails,
		audits:     audits,
		donations:  donations,
		runner:     runner,
		clock:      clk,
		stripeCfg:  cfg.Stripe,
		logger:     logger,
	}
}

func (u *webhookUseCaseImpl) ProcessEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	err := stripesig.Verify(payload, signatureHeader, u.stripeCfg.WebhookSecret, u.stripeCfg.SignatureTolerance, u.clock.Now())
	if err != nil {
		return errs.Mark(err, ErrInvalidSignature)
	}

	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return errs.Mark(err, ErrInvalidPayload)
	}

	logger := u.logger.With("event_id", ev.ID, "event_type", ev.Type)

	switch ClassifyEventType(ev.Type) {
	case KindCheckoutCompleted:
		return u.processCheckoutCompleted(ctx, ev, logger)
	case KindPaymentSucceeded:
		return u.processPaymentIntentSucceeded(ctx, ev, logger)
	case KindPaymentFailed:
		return u.processPaymentIntentFailed(ctx, ev, logger)
	case KindRefundUpdated:
		return u.processRefundUpdated(ctx, ev, logger)
	case KindIgnored:
		logger.Debug("ignoring webhook event")
		return nil
	}
	return nil
}
