package commands

import (
	"context"
	"time"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/promocode"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/purchase"

	"github.com/google/uuid"
)

// Collaborator ports for the webhook reconciliation core. All are injected
// into the webhook usecase so tests can substitute them without module-level
// mocking.

type PurchaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*purchase.Purchase, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*purchase.Purchase, error)
	Save(ctx context.Context, p *purchase.Purchase) error
}

type PromoCodeRepository interface {
	FindByCode(ctx context.Context, code string) (*promocode.PromoCode, error)
	FindByID(ctx context.Context, id uuid.UUID) (*promocode.PromoCode, error)
	Create(ctx context.Context, c *promocode.PromoCode) error
	Save(ctx context.Context, c *promocode.PromoCode) error
	DeleteByCode(ctx context.Context, code string) error
}

// ProgramRepository covers the program/event side effects the webhook core
// needs: the class-rep seat counter compensation and subject titles for promo
// usage audit entries.
type ProgramRepository interface {
	DecrementClassRepSpots(ctx context.Context, programID uuid.UUID) error
	SubjectTitle(ctx context.Context, programID, eventID *uuid.UUID) (string, error)
}

// BundleDiscountConfig is the tenant-level bundle incentive configuration.
type BundleDiscountConfig struct {
	Enabled      bool
	AmountCents  int64
	ValidityDays int
}

type SystemConfigReader interface {
	BundleDiscount(ctx context.Context) (BundleDiscountConfig, error)
}

// LockProvider guarantees at-most-one concurrent execution of fn per key.
// Implementations return errs.ErrLockTimeout (marked) when the lock cannot be
// acquired within timeout, and propagate fn's error after releasing the lock.
type LockProvider interface {
	WithLock(ctx context.Context, key string, timeout time.Duration, fn func(ctx context.Context) error) error
}

// PaymentGateway fetches provider-side details that are not part of the
// webhook payload. Callers treat every error as best-effort.
type PaymentGateway interface {
	PaymentMethodSnapshot(ctx context.Context, paymentIntentID string) (purchase.PaymentMethod, error)
}

type NotificationPriority string

const (
	NotifyNormal NotificationPriority = "normal"
	NotifyHigh   NotificationPriority = "high"
	NotifyAlert  NotificationPriority = "alert"
)

type Notification struct {
	Priority NotificationPriority
	Title    string
	Message  string
}

type AdminNotifier interface {
	Notify(ctx context.Context, n Notification) error
}

type EmailSender interface {
	SendPurchaseConfirmation(ctx context.Context, to, orderNumber string, amountCents int64) error
	SendRefundConfirmation(ctx context.Context, to, orderNumber string) error
}

type AuditEntry struct {
	Action     string
	PurchaseID uuid.UUID
	Details    map[string]any
}

type AuditRecorder interface {
	Record(ctx context.Context, e AuditEntry) error
}

// DonationProcessor receives checkout sessions that belong to the donation
// domain rather than program/event purchases.
type DonationProcessor interface {
	HandleCheckoutCompleted(ctx context.Context, session CheckoutSession) error
}
