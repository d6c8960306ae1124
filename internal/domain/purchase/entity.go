package purchase

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotPending       = errors.New("purchase is not pending")
	ErrNotRefundable    = errors.New("purchase is not in a refundable state")
	ErrAlreadyRefunded  = errors.New("purchase is already refunded")
	ErrBundleAlreadySet = errors.New("purchase already carries a bundle code")
)

// DefaultRefundFailureReason is stored when the provider omits a reason on a
// failed refund.
const DefaultRefundFailureReason = "Refund failed"

// RefundCanceledAdvisory is stored on the purchase when a requested refund is
// canceled by the provider; the status itself is left untouched.
const RefundCanceledAdvisory = "Refund was canceled by the payment provider; please contact support"

type Purchase struct {
	id          uuid.UUID
	orderNumber string
	userID      uuid.UUID
	programID   *uuid.UUID
	eventID     *uuid.UUID
	status      Status

	finalPrice           int64
	fullPrice            int64
	classRepDiscount     int64
	earlyBirdDiscount    int64
	bundleDiscountAmount int64
	isClassRep           bool

	promoCode   *string
	promoCodeID *uuid.UUID

	stripeSessionID       *string
	stripePaymentIntentID *string
	paymentMethod         PaymentMethod
	billing               Billing

	bundlePromoCode *string
	bundleExpiresAt *time.Time

	purchaseDate        *time.Time
	refundedAt          *time.Time
	refundFailureReason *string

	createdAt time.Time
	updatedAt time.Time
}

// Reconstruct rebuilds a Purchase from its persisted representation. The
// repository is the only intended caller.
func Reconstruct(
	id uuid.UUID,
	orderNumber string,
	userID uuid.UUID,
	programID, eventID *uuid.UUID,
	status Status,
	finalPrice, fullPrice, classRepDiscount, earlyBirdDiscount, bundleDiscountAmount int64,
	isClassRep bool,
	promoCode *string,
	promoCodeID *uuid.UUID,
	stripeSessionID, stripePaymentIntentID *string,
	paymentMethod PaymentMethod,
	billing Billing,
	bundlePromoCode *string,
	bundleExpiresAt *time.Time,
	purchaseDate, refundedAt *time.Time,
	refundFailureReason *string,
	createdAt, updatedAt time.Time,
) *Purchase {
	return &Purchase{
		id:                    id,
		orderNumber:           orderNumber,
		userID:                userID,
		programID:             programID,
		eventID:               eventID,
		status:                status,
		finalPrice:            finalPrice,
		fullPrice:             fullPrice,
		classRepDiscount:      classRepDiscount,
		earlyBirdDiscount:     earlyBirdDiscount,
		bundleDiscountAmount:  bundleDiscountAmount,
		isClassRep:            isClassRep,
		promoCode:             promoCode,
		promoCodeID:           promoCodeID,
		stripeSessionID:       stripeSessionID,
		stripePaymentIntentID: stripePaymentIntentID,
		paymentMethod:         paymentMethod,
		billing:               billing,
		bundlePromoCode:       bundlePromoCode,
		bundleExpiresAt:       bundleExpiresAt,
		purchaseDate:          purchaseDate,
		refundedAt:            refundedAt,
		refundFailureReason:   refundFailureReason,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}
}

// Complete moves a pending purchase to completed and stamps the purchase
// date. Redundant deliveries must be short-circuited by the caller via
// Status(); calling Complete on a non-pending purchase is an error.
func (p *Purchase) Complete(now time.Time) error {
	if p.status != StatusPending {
		return ErrNotPending
	}
	p.status = StatusCompleted
	p.purchaseDate = &now
	return nil
}

// Fail moves a pending purchase to failed.
func (p *Purchase) Fail() error {
	if p.status != StatusPending {
		return ErrNotPending
	}
	p.status = StatusFailed
	return nil
}

// MarkRefunded finalizes a refund. Valid from completed or refund_processing;
// an already refunded purchase is never reprocessed.
func (p *Purchase) MarkRefunded(now time.Time) error {
	if p.status == StatusRefunded {
		return ErrAlreadyRefunded
	}
	if p.status != StatusCompleted && p.status != StatusRefundProcessing {
		return ErrNotRefundable
	}
	p.status = StatusRefunded
	p.refundedAt = &now
	p.refundFailureReason = nil
	return nil
}

// MarkRefundFailed records a provider-reported refund failure.
func (p *Purchase) MarkRefundFailed(reason string) error {
	if p.status == StatusRefunded {
		return ErrAlreadyRefunded
	}
	if p.status != StatusCompleted && p.status != StatusRefundProcessing {
		return ErrNotRefundable
	}
	if reason == "" {
		reason = DefaultRefundFailureReason
	}
	p.status = StatusRefundFailed
	p.refundFailureReason = &reason
	return nil
}

// NoteRefundCanceled records the canceled-refund advisory without touching
// the status.
func (p *Purchase) NoteRefundCanceled() {
	advisory := RefundCanceledAdvisory
	p.refundFailureReason = &advisory
}

// LinkProviderIDs records provider identifiers once; existing values win.
func (p *Purchase) LinkProviderIDs(sessionID, paymentIntentID string) {
	if p.stripeSessionID == nil && sessionID != "" {
		p.stripeSessionID = &sessionID
	}
	if p.stripePaymentIntentID == nil && paymentIntentID != "" {
		p.stripePaymentIntentID = &paymentIntentID
	}
}

// CapturePaymentMethod snapshots card display data once; later fetches never
// replace an existing snapshot.
func (p *Purchase) CapturePaymentMethod(pm PaymentMethod) {
	if !p.paymentMethod.IsZero() || pm.IsZero() {
		return
	}
	p.paymentMethod = pm
}

// ApplyBilling merges incoming billing details, preserving previously
// captured non-empty fields.
func (p *Purchase) ApplyBilling(incoming Billing) {
	p.billing = MergeBilling(p.billing, incoming)
}

// AttachBundleCode records a generated bundle-discount code on the purchase.
func (p *Purchase) AttachBundleCode(code string, expiresAt time.Time) error {
	if p.bundlePromoCode != nil {
		return ErrBundleAlreadySet
	}
	p.bundlePromoCode = &code
	p.bundleExpiresAt = &expiresAt
	return nil
}

func (p *Purchase) ID() uuid.UUID                  { return p.id }
func (p *Purchase) OrderNumber() string            { return p.orderNumber }
func (p *Purchase) UserID() uuid.UUID              { return p.userID }
func (p *Purchase) ProgramID() *uuid.UUID          { return p.programID }
func (p *Purchase) EventID() *uuid.UUID            { return p.eventID }
func (p *Purchase) Status() Status                 { return p.status }
func (p *Purchase) FinalPrice() int64              { return p.finalPrice }
func (p *Purchase) FullPrice() int64               { return p.fullPrice }
func (p *Purchase) ClassRepDiscount() int64        { return p.classRepDiscount }
func (p *Purchase) EarlyBirdDiscount() int64       { return p.earlyBirdDiscount }
func (p *Purchase) BundleDiscountAmount() int64    { return p.bundleDiscountAmount }
func (p *Purchase) IsClassRep() bool               { return p.isClassRep }
func (p *Purchase) PromoCode() *string             { return p.promoCode }
func (p *Purchase) PromoCodeID() *uuid.UUID        { return p.promoCodeID }
func (p *Purchase) StripeSessionID() *string       { return p.stripeSessionID }
func (p *Purchase) StripePaymentIntentID() *string { return p.stripePaymentIntentID }
func (p *Purchase) PaymentMethod() PaymentMethod   { return p.paymentMethod }
func (p *Purchase) Billing() Billing               { return p.billing }
func (p *Purchase) BundlePromoCode() *string       { return p.bundlePromoCode }
func (p *Purchase) BundleExpiresAt() *time.Time    { return p.bundleExpiresAt }
func (p *Purchase) PurchaseDate() *time.Time       { return p.purchaseDate }
func (p *Purchase) RefundedAt() *time.Time         { return p.refundedAt }
func (p *Purchase) RefundFailureReason() *string   { return p.refundFailureReason }
func (p *Purchase) CreatedAt() time.Time           { return p.createdAt }
func (p *Purchase) UpdatedAt() time.Time           { return p.updatedAt }
