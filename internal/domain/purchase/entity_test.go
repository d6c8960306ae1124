//go:build unit

package purchase_test

import (
	"testing"
	"time"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/purchase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPurchase(t *testing.T, status purchase.Status) *purchase.Purchase {
	t.Helper()
	programID := uuid.New()
	created := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	return purchase.Reconstruct(
		uuid.New(), "ORD-20250501-0001", uuid.New(),
		&programID, nil,
		status,
		12000, 15000, 0, 3000, 0,
		false,
		nil, nil,
		nil, nil,
		purchase.PaymentMethod{},
		purchase.Billing{},
		nil, nil,
		nil, nil,
		nil,
		created, created,
	)
}

func TestComplete(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("pending purchase completes and stamps purchase date", func(t *testing.T) {
		p := newTestPurchase(t, purchase.StatusPending)
		require.NoError(t, p.Complete(now))
		assert.Equal(t, purchase.StatusCompleted, p.Status())
		require.NotNil(t, p.PurchaseDate())
		assert.Equal(t, now, *p.PurchaseDate())
	})

	t.Run("non-pending purchases reject completion", func(t *testing.T) {
		for _, status := range []purchase.Status{
			purchase.StatusCompleted,
			purchase.StatusFailed,
			purchase.StatusRefunded,
		} {
			p := newTestPurchase(t, status)
			assert.ErrorIs(t, p.Complete(now), purchase.ErrNotPending, "status %s", status)
		}
	})
}

func TestFail(t *testing.T) {
	t.Run("pending purchase fails", func(t *testing.T) {
		p := newTestPurchase(t, purchase.StatusPending)
		require.NoError(t, p.Fail())
		assert.Equal(t, purchase.StatusFailed, p.Status())
	})

	t.Run("failed purchase rejects a second failure", func(t *testing.T) {
		p := newTestPurchase(t, purchase.StatusFailed)
		assert.ErrorIs(t, p.Fail(), purchase.ErrNotPending)
	})
}

func TestRefundTransitions(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)

	t.Run("completed purchase refunds and stamps refundedAt", func(t *testing.T) {
		p := newTestPurchase(t, purchase.StatusCompleted)
		require.NoError(t, p.MarkRefunded(now))
		assert.Equal(t, purchase.StatusRefunded, p.Status())
		require.NotNil(t, p.RefundedAt())
		assert.Equal(t, now, *p.RefundedAt())
	})

	t.Run("refund_processing purchase refunds", func(t *testing.T) {
		p := newTestPurchase(t, purchase.StatusRefundProcessing)
		require.NoError(t, p.MarkRefunded(now))
		assert.Equal(t, purchase.StatusRefunded, p.Status())
	})

	t.Run("refunded purchase is never reprocessed", func(t *testing.T) {
		p := newTestPurchase(t, purchase.StatusRefunded)
		assert.ErrorIs(t, p.MarkRefunded(now), purchase.ErrAlreadyRefunded)
		assert.ErrorIs(t, p.MarkRefundFailed("x"), purchase.ErrAlreadyRefunded)
	})

	t.Run("pending purchase is not refundable", func(t *testing.T) {
		p := newTestPurchase(t, purchase.StatusPending)
		assert.ErrorIs(t, p.MarkRefunded(now), purchase.ErrNotRefundable)
	})

	t.Run("refund failure stores the verbatim reason", func(t *testing.T) {
		p := newTestPurchase(t, purchase.StatusCompleted)
		require.NoError(t, p.MarkRefundFailed("insufficient_funds"))
		assert.Equal(t, purchase.StatusRefundFailed, p.Status())
		require.NotNil(t, p.RefundFailureReason())
		assert.Equal(t, "insufficient_funds", *p.RefundFailureReason())
	})

	t.Run("refund failure defaults the reason when omitted", func(t *testing.T) {
		p := newTestPurchase(t, purchase.StatusCompleted)
		require.NoError(t, p.MarkRefundFailed(""))
		require.NotNil(t, p.RefundFailureReason())
		assert.Equal(t, purchase.DefaultRefundFailureReason, *p.RefundFailureReason())
	})

	t.Run("canceled refund keeps status but records the advisory", func(t *testing.T) {
		p := newTestPurchase(t, purchase.StatusCompleted)
		p.NoteRefundCanceled()
		assert.Equal(t, purchase.StatusCompleted, p.Status())
		require.NotNil(t, p.RefundFailureReason())
		assert.Equal(t, purchase.RefundCanceledAdvisory, *p.RefundFailureReason())
	})
}

func TestCapturePaymentMethod(t *testing.T) {
	t.Run("captures once", func(t *testing.T) {
		p := newTestPurchase(t, purchase.StatusPending)
		p.CapturePaymentMethod(purchase.PaymentMethod{Brand: "visa", Last4: "4242"})
		p.CapturePaymentMethod(purchase.PaymentMethod{Brand: "mastercard", Last4: "5100"})
		assert.Equal(t, "visa", p.PaymentMethod().Brand)
		assert.Equal(t, "4242", p.PaymentMethod().Last4)
	})

	t.Run("ignores an empty snapshot", func(t *testing.T) {
		p := newTestPurchase(t, purchase.StatusPending)
		p.CapturePaymentMethod(purchase.PaymentMethod{})
		assert.True(t, p.PaymentMethod().IsZero())
	})
}

func TestMergeBilling(t *testing.T) {
	captured := purchase.Billing{
		Name:  "Ada Lovelace",
		Email: "ada@example.org",
		Address: purchase.Address{
			Line1: "12 Analytical Way", City: "London", Country: "GB",
		},
	}

	t.Run("empty incoming fields never mask captured values", func(t *testing.T) {
		merged := purchase.MergeBilling(captured, purchase.Billing{})
		assert.Equal(t, captured, merged)
	})

	t.Run("non-empty incoming fields win", func(t *testing.T) {
		merged := purchase.MergeBilling(captured, purchase.Billing{Name: "A. Lovelace"})
		assert.Equal(t, "A. Lovelace", merged.Name)
		assert.Equal(t, captured.Email, merged.Email)
		assert.Equal(t, captured.Address, merged.Address)
	})

	t.Run("partial payload keeps captured address", func(t *testing.T) {
		incoming := purchase.Billing{Email: "new@example.org"}
		merged := purchase.MergeBilling(captured, incoming)
		assert.Equal(t, "new@example.org", merged.Email)
		assert.Equal(t, captured.Address, merged.Address)
	})
}

func TestAttachBundleCode(t *testing.T) {
	expiry := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	p := newTestPurchase(t, purchase.StatusCompleted)
	require.NoError(t, p.AttachBundleCode("BUNDLE-AB12CD", expiry))
	require.NotNil(t, p.BundlePromoCode())
	assert.Equal(t, "BUNDLE-AB12CD", *p.BundlePromoCode())
	require.NotNil(t, p.BundleExpiresAt())
	assert.Equal(t, expiry, *p.BundleExpiresAt())

	assert.ErrorIs(t, p.AttachBundleCode("BUNDLE-XY99ZZ", expiry), purchase.ErrBundleAlreadySet)
}
