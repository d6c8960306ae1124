package repository

import (
	"context"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/promocode"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type PromoCodeRepository struct {
	db DB
}

func NewPromoCodeRepository(db DB) *PromoCodeRepository {
	return &PromoCodeRepository{db: db}
}

const promoCodeColumns = `
	id, code, code_type, discount_cents, is_used, is_active,
	owner_id, excluded_program_id, excluded_event_id, expires_at,
	used_by_name, used_by_email, used_for_subject, used_at,
	created_at, updated_at`

func (r *PromoCodeRepository) FindByCode(ctx context.Context, code string) (*promocode.PromoCode, error) {
	row := r.db.QueryRow(ctx, `SELECT`+promoCodeColumns+` FROM promo_codes WHERE code = $1`, code)
	c, err := scanPromoCode(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("promo code not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find promo code by code", err)
	}
	return c, nil
}

func (r *PromoCodeRepository) FindByID(ctx context.Context, id uuid.UUID) (*promocode.PromoCode, error) {
	row := r.db.QueryRow(ctx, `SELECT`+promoCodeColumns+` FROM promo_codes WHERE id = $1`, id)
	c, err := scanPromoCode(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("promo code not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find promo code by ID", err)
	}
	return c, nil
}

func (r *PromoCodeRepository) Create(ctx context.Context, c *promocode.PromoCode) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO promo_codes (
			id, code, code_type, discount_cents, is_used, is_active,
			owner_id, excluded_program_id, excluded_event_id, expires_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())`,
		c.ID(),
		c.Code(),
		string(c.Type()),
		c.DiscountCents(),
		c.IsUsed(),
		c.IsActive(),
		pgconv.UUIDPtrToPgtype(c.OwnerID()),
		pgconv.UUIDPtrToPgtype(c.ExcludedProgramID()),
		pgconv.UUIDPtrToPgtype(c.ExcludedEventID()),
		pgconv.TimePtrToPgtype(c.ExpiresAt()),
	)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr("promo code already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create promo code", err)
	}
	return nil
}

func (r *PromoCodeRepository) Save(ctx context.Context, c *promocode.PromoCode) error {
	var usedByName, usedByEmail, usedForSubject pgtype.Text
	var usedAt pgtype.Timestamptz
	if u := c.Usage(); u != nil {
		usedByName = emptyToNullText(u.UserName)
		usedByEmail = emptyToNullText(u.UserEmail)
		usedForSubject = emptyToNullText(u.Subject)
		usedAt = pgtype.Timestamptz{Time: u.At, Valid: true}
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE promo_codes SET
			is_used = $2,
			is_active = $3,
			used_by_name = $4,
			used_by_email = $5,
			used_for_subject = $6,
			used_at = $7,
			updated_at = now()
		WHERE id = $1`,
		c.ID(),
		c.IsUsed(),
		c.IsActive(),
		usedByName,
		usedByEmail,
		usedForSubject,
		usedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save promo code", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("promo code not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *PromoCodeRepository) DeleteByCode(ctx context.Context, code string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM promo_codes WHERE code = $1`, code)
	if err != nil {
		return infra.WrapRepoErr("failed to delete promo code", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("promo code not found", nil, infra.KindNotFound)
	}
	return nil
}

type promoCodeRow struct {
	id                uuid.UUID
	code              string
	codeType          string
	discountCents     int64
	isUsed            bool
	isActive          bool
	ownerID           pgtype.UUID
	excludedProgramID pgtype.UUID
	excludedEventID   pgtype.UUID
	expiresAt         pgtype.Timestamptz
	usedByName        pgtype.Text
	usedByEmail       pgtype.Text
	usedForSubject    pgtype.Text
	usedAt            pgtype.Timestamptz
	createdAt         pgtype.Timestamptz
	updatedAt         pgtype.Timestamptz
}

func scanPromoCode(row rowScanner) (*promocode.PromoCode, error) {
	var r promoCodeRow
	err := row.Scan(
		&r.id, &r.code, &r.codeType, &r.discountCents, &r.isUsed, &r.isActive,
		&r.ownerID, &r.excludedProgramID, &r.excludedEventID, &r.expiresAt,
		&r.usedByName, &r.usedByEmail, &r.usedForSubject, &r.usedAt,
		&r.createdAt, &r.updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return toPromoCodeFromRow(r), nil
}

func toPromoCodeFromRow(r promoCodeRow) *promocode.PromoCode {
	var usage *promocode.Usage
	if r.usedAt.Valid {
		usage = &promocode.Usage{
			UserName:  r.usedByName.String,
			UserEmail: r.usedByEmail.String,
			Subject:   r.usedForSubject.String,
			At:        r.usedAt.Time,
		}
	}
	return promocode.Reconstruct(
		r.id,
		r.code,
		promocode.Type(r.codeType),
		r.discountCents,
		r.isUsed,
		r.isActive,
		pgconv.UUIDPtrFromPgtype(r.ownerID),
		pgconv.UUIDPtrFromPgtype(r.excludedProgramID),
		pgconv.UUIDPtrFromPgtype(r.excludedEventID),
		pgconv.TimePtrFromPgtype(r.expiresAt),
		usage,
		r.createdAt.Time,
		r.updatedAt.Time,
	)
}
