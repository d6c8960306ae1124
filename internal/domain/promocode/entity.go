package promocode

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAlreadyUsed = errors.New("promo code is already used")
	ErrNotUsed     = errors.New("promo code is not used")
	ErrInactive    = errors.New("promo code is inactive")
)

type Type string

const (
	TypePersonal       Type = "personal"
	TypeStaffGeneral   Type = "staff_general"
	TypeBundleDiscount Type = "bundle_discount"
	TypeReward         Type = "reward"
)

// Usage records who consumed a code and for what, for the audit trail.
type Usage struct {
	UserName  string
	UserEmail string
	Subject   string
	At        time.Time
}

type PromoCode struct {
	id                uuid.UUID
	code              string
	codeType          Type
	discountCents     int64
	isUsed            bool
	isActive          bool
	ownerID           *uuid.UUID
	excludedProgramID *uuid.UUID
	excludedEventID   *uuid.UUID
	expiresAt         *time.Time
	usage             *Usage
	createdAt         time.Time
	updatedAt         time.Time
}

// NewBundleCode mints the system-generated incentive code issued after a paid
// purchase. The code excludes redemption against the subject that spawned it.
func NewBundleCode(
	ownerID uuid.UUID,
	discountCents int64,
	excludedProgramID, excludedEventID *uuid.UUID,
	expiresAt time.Time,
) (*PromoCode, error) {
	code, err := generateCode("BUNDLE")
	if err != nil {
		return nil, err
	}
	owner := ownerID
	expiry := expiresAt
	return &PromoCode{
		id:                uuid.New(),
		code:              code,
		codeType:          TypeBundleDiscount,
		discountCents:     discountCents,
		isActive:          true,
		ownerID:           &owner,
		excludedProgramID: excludedProgramID,
		excludedEventID:   excludedEventID,
		expiresAt:         &expiry,
	}, nil
}

// Reconstruct rebuilds a PromoCode from its persisted representation.
func Reconstruct(
	id uuid.UUID,
	code string,
	codeType Type,
	discountCents int64,
	isUsed, isActive bool,
	ownerID, excludedProgramID, excludedEventID *uuid.UUID,
	expiresAt *time.Time,
	usage *Usage,
	createdAt, updatedAt time.Time,
) *PromoCode {
	return &PromoCode{
		id:                id,
		code:              code,
		codeType:          codeType,
		discountCents:     discountCents,
		isUsed:            isUsed,
		isActive:          isActive,
		ownerID:           ownerID,
		excludedProgramID: excludedProgramID,
		excludedEventID:   excludedEventID,
		expiresAt:         expiresAt,
		usage:             usage,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// MarkUsed consumes the code exactly once. Callers treat ErrAlreadyUsed as a
// redundant-delivery no-op.
func (c *PromoCode) MarkUsed(u Usage) error {
	if c.isUsed {
		return ErrAlreadyUsed
	}
	if !c.isActive {
		return ErrInactive
	}
	c.isUsed = true
	c.usage = &u
	return nil
}

// Reverse undoes a consumption after the originating purchase is refunded.
// The completion/refund pairing implies at most one reversal.
func (c *PromoCode) Reverse() error {
	if !c.isUsed {
		return ErrNotUsed
	}
	c.isUsed = false
	c.isActive = true
	c.usage = nil
	return nil
}

// IsShared reports whether consumption of this code should be announced to
// administrators.
func (c *PromoCode) IsShared() bool {
	return c.codeType == TypeStaffGeneral
}

func (c *PromoCode) ID() uuid.UUID                 { return c.id }
func (c *PromoCode) Code() string                  { return c.code }
func (c *PromoCode) Type() Type                    { return c.codeType }
func (c *PromoCode) DiscountCents() int64          { return c.discountCents }
func (c *PromoCode) IsUsed() bool                  { return c.isUsed }
func (c *PromoCode) IsActive() bool                { return c.isActive }
func (c *PromoCode) OwnerID() *uuid.UUID           { return c.ownerID }
func (c *PromoCode) ExcludedProgramID() *uuid.UUID { return c.excludedProgramID }
func (c *PromoCode) ExcludedEventID() *uuid.UUID   { return c.excludedEventID }
func (c *PromoCode) ExpiresAt() *time.Time         { return c.expiresAt }
func (c *PromoCode) Usage() *Usage                 { return c.usage }
func (c *PromoCode) CreatedAt() time.Time          { return c.createdAt }
func (c *PromoCode) UpdatedAt() time.Time          { return c.updatedAt }

func generateCode(prefix string) (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
