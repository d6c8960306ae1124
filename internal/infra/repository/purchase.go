package repository

import (
	"context"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/purchase"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type PurchaseRepository struct {
	db DB
}

func NewPurchaseRepository(db DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

const purchaseColumns = `
	id, order_number, user_id, program_id, event_id, status,
	final_price_cents, full_price_cents, class_rep_discount_cents,
	early_bird_discount_cents, bundle_discount_cents, is_class_rep,
	promo_code, promo_code_id,
	stripe_session_id, stripe_payment_intent_id,
	payment_method_brand, payment_method_last4,
	billing_name, billing_email,
	billing_line1, billing_line2, billing_city, billing_state,
	billing_postal_code, billing_country,
	bundle_promo_code, bundle_expires_at,
	purchase_date, refunded_at, refund_failure_reason,
	created_at, updated_at`

func (r *PurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchase.Purchase, error) {
	row := r.db.QueryRow(ctx, `SELECT`+purchaseColumns+` FROM purchases WHERE id = $1`, id)
	p, err := scanPurchase(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("purchase not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find purchase by ID", err)
	}
	return p, nil
}

func (r *PurchaseRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*purchase.Purchase, error) {
	row := r.db.QueryRow(ctx, `SELECT`+purchaseColumns+` FROM purchases WHERE stripe_payment_intent_id = $1`, paymentIntentID)
	p, err := scanPurchase(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("purchase not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find purchase by payment intent ID", err)
	}
	return p, nil
}

func (r *PurchaseRepository) Save(ctx context.Context, p *purchase.Purchase) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE purchases SET
			status = $2,
			stripe_session_id = $3,
			stripe_payment_intent_id = $4,
			payment_method_brand = $5,
			payment_method_last4 = $6,
			billing_name = $7,
			billing_email = $8,
			billing_line1 = $9,
			billing_line2 = $10,
			billing_city = $11,
			billing_state = $12,
			billing_postal_code = $13,
			billing_country = $14,
			bundle_promo_code = $15,
			bundle_expires_at = $16,
			purchase_date = $17,
			refunded_at = $18,
			refund_failure_reason = $19,
			updated_at = now()
		WHERE id = $1`,
		p.ID(),
		string(p.Status()),
		pgconv.StringPtrToPgtype(p.StripeSessionID()),
		pgconv.StringPtrToPgtype(p.StripePaymentIntentID()),
		emptyToNullText(p.PaymentMethod().Brand),
		emptyToNullText(p.PaymentMethod().Last4),
		emptyToNullText(p.Billing().Name),
		emptyToNullText(p.Billing().Email),
		emptyToNullText(p.Billing().Address.Line1),
		emptyToNullText(p.Billing().Address.Line2),
		emptyToNullText(p.Billing().Address.City),
		emptyToNullText(p.Billing().Address.State),
		emptyToNullText(p.Billing().Address.PostalCode),
		emptyToNullText(p.Billing().Address.Country),
		pgconv.StringPtrToPgtype(p.BundlePromoCode()),
		pgconv.TimePtrToPgtype(p.BundleExpiresAt()),
		pgconv.TimePtrToPgtype(p.PurchaseDate()),
		pgconv.TimePtrToPgtype(p.RefundedAt()),
		pgconv.StringPtrToPgtype(p.RefundFailureReason()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save purchase", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("purchase not found", nil, infra.KindNotFound)
	}
	return nil
}

type purchaseRow struct {
	id                    uuid.UUID
	orderNumber           string
	userID                uuid.UUID
	programID             pgtype.UUID
	eventID               pgtype.UUID
	status                string
	finalPriceCents       int64
	fullPriceCents        int64
	classRepDiscountCents int64
	earlyBirdDiscount     int64
	bundleDiscountCents   int64
	isClassRep            bool
	promoCode             pgtype.Text
	promoCodeID           pgtype.UUID
	stripeSessionID       pgtype.Text
	stripePaymentIntentID pgtype.Text
	pmBrand               pgtype.Text
	pmLast4               pgtype.Text
	billingName           pgtype.Text
	billingEmail          pgtype.Text
	billingLine1          pgtype.Text
	billingLine2          pgtype.Text
	billingCity           pgtype.Text
	billingState          pgtype.Text
	billingPostalCode     pgtype.Text
	billingCountry        pgtype.Text
	bundlePromoCode       pgtype.Text
	bundleExpiresAt       pgtype.Timestamptz
	purchaseDate          pgtype.Timestamptz
	refundedAt            pgtype.Timestamptz
	refundFailureReason   pgtype.Text
	createdAt             pgtype.Timestamptz
	updatedAt             pgtype.Timestamptz
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPurchase(row rowScanner) (*purchase.Purchase, error) {
	var r purchaseRow
	err := row.Scan(
		&r.id, &r.orderNumber, &r.userID, &r.programID, &r.eventID, &r.status,
		&r.finalPriceCents, &r.fullPriceCents, &r.classRepDiscountCents,
		&r.earlyBirdDiscount, &r.bundleDiscountCents, &r.isClassRep,
		&r.promoCode, &r.promoCodeID,
		&r.stripeSessionID, &r.stripePaymentIntentID,
		&r.pmBrand, &r.pmLast4,
		&r.billingName, &r.billingEmail,
		&r.billingLine1, &r.billingLine2, &r.billingCity, &r.billingState,
		&r.billingPostalCode, &r.billingCountry,
		&r.bundlePromoCode, &r.bundleExpiresAt,
		&r.purchaseDate, &r.refundedAt, &r.refundFailureReason,
		&r.createdAt, &r.updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return toPurchaseFromRow(r), nil
}

func toPurchaseFromRow(r purchaseRow) *purchase.Purchase {
	return purchase.Reconstruct(
		r.id,
		r.orderNumber,
		r.userID,
		pgconv.UUIDPtrFromPgtype(r.programID),
		pgconv.UUIDPtrFromPgtype(r.eventID),
		purchase.Status(r.status),
		r.finalPriceCents, r.fullPriceCents, r.classRepDiscountCents,
		r.earlyBirdDiscount, r.bundleDiscountCents,
		r.isClassRep,
		pgconv.StringPtrFromPgtype(r.promoCode),
		pgconv.UUIDPtrFromPgtype(r.promoCodeID),
		pgconv.StringPtrFromPgtype(r.stripeSessionID),
		pgconv.StringPtrFromPgtype(r.stripePaymentIntentID),
		purchase.PaymentMethod{
			Brand: r.pmBrand.String,
			Last4: r.pmLast4.String,
		},
		purchase.Billing{
			Name:  r.billingName.String,
			Email: r.billingEmail.String,
			Address: purchase.Address{
				Line1:      r.billingLine1.String,
				Line2:      r.billingLine2.String,
				City:       r.billingCity.String,
				State:      r.billingState.String,
				PostalCode: r.billingPostalCode.String,
				Country:    r.billingCountry.String,
			},
		},
		pgconv.StringPtrFromPgtype(r.bundlePromoCode),
		pgconv.TimePtrFromPgtype(r.bundleExpiresAt),
		pgconv.TimePtrFromPgtype(r.purchaseDate),
		pgconv.TimePtrFromPgtype(r.refundedAt),
		pgconv.StringPtrFromPgtype(r.refundFailureReason),
		r.createdAt.Time,
		r.updatedAt.Time,
	)
}

func emptyToNullText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}
