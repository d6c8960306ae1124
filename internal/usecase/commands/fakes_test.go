//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/promocode"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/purchase"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/usecase/commands"

	"github.com/google/uuid"
)

// In-memory collaborator fakes. They guard internal state with a mutex so the
// mutual-exclusion tests can hammer them from concurrent deliveries, and they
// clone entities on every read and write so a mutation only reaches the
// "store" through a successful Save, matching the repository's row-snapshot
// semantics.

func clonePurchase(p *purchase.Purchase) *purchase.Purchase {
	return purchase.Reconstruct(
		p.ID(), p.OrderNumber(), p.UserID(),
		p.ProgramID(), p.EventID(),
		p.Status(),
		p.FinalPrice(), p.FullPrice(), p.ClassRepDiscount(), p.EarlyBirdDiscount(), p.BundleDiscountAmount(),
		p.IsClassRep(),
		p.PromoCode(), p.PromoCodeID(),
		p.StripeSessionID(), p.StripePaymentIntentID(),
		p.PaymentMethod(),
		p.Billing(),
		p.BundlePromoCode(), p.BundleExpiresAt(),
		p.PurchaseDate(), p.RefundedAt(),
		p.RefundFailureReason(),
		p.CreatedAt(), p.UpdatedAt(),
	)
}

func clonePromoCode(c *promocode.PromoCode) *promocode.PromoCode {
	return promocode.Reconstruct(
		c.ID(), c.Code(), c.Type(), c.DiscountCents(),
		c.IsUsed(), c.IsActive(),
		c.OwnerID(), c.ExcludedProgramID(), c.ExcludedEventID(),
		c.ExpiresAt(), c.Usage(),
		c.CreatedAt(), c.UpdatedAt(),
	)
}

type fakePurchaseRepo struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*purchase.Purchase
	saveCount map[uuid.UUID]int
	saveErr   error
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{
		byID:      make(map[uuid.UUID]*purchase.Purchase),
		saveCount: make(map[uuid.UUID]int),
	}
}

func (r *fakePurchaseRepo) put(p *purchase.Purchase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID()] = clonePurchase(p)
}

func (r *fakePurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*purchase.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, infra.WrapRepoErr("purchase not found", nil, infra.KindNotFound)
	}
	return clonePurchase(p), nil
}

func (r *fakePurchaseRepo) FindByPaymentIntentID(_ context.Context, paymentIntentID string) (*purchase.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if id := p.StripePaymentIntentID(); id != nil && *id == paymentIntentID {
			return clonePurchase(p), nil
		}
	}
	return nil, infra.WrapRepoErr("purchase not found", nil, infra.KindNotFound)
}

func (r *fakePurchaseRepo) Save(_ context.Context, p *purchase.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.byID[p.ID()] = clonePurchase(p)
	r.saveCount[p.ID()]++
	return nil
}

func (r *fakePurchaseRepo) saves(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveCount[id]
}

type fakePromoCodeRepo struct {
	mu      sync.Mutex
	byCode  map[string]*promocode.PromoCode
	created []*promocode.PromoCode
	deleted []string
	saveErr error
}

func newFakePromoCodeRepo() *fakePromoCodeRepo {
	return &fakePromoCodeRepo{byCode: make(map[string]*promocode.PromoCode)}
}

func (r *fakePromoCodeRepo) put(c *promocode.PromoCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCode[c.Code()] = clonePromoCode(c)
}

func (r *fakePromoCodeRepo) FindByCode(_ context.Context, code string) (*promocode.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byCode[code]
	if !ok {
		return nil, infra.WrapRepoErr("promo code not found", nil, infra.KindNotFound)
	}
	return clonePromoCode(c), nil
}

func (r *fakePromoCodeRepo) FindByID(_ context.Context, id uuid.UUID) (*promocode.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byCode {
		if c.ID() == id {
			return clonePromoCode(c), nil
		}
	}
	return nil, infra.WrapRepoErr("promo code not found", nil, infra.KindNotFound)
}

func (r *fakePromoCodeRepo) Create(_ context.Context, c *promocode.PromoCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byCode[c.Code()]; exists {
		return infra.WrapRepoErr("duplicate promo code", nil, infra.KindDuplicateKey)
	}
	snapshot := clonePromoCode(c)
	r.byCode[c.Code()] = snapshot
	r.created = append(r.created, snapshot)
	return nil
}

func (r *fakePromoCodeRepo) Save(_ context.Context, c *promocode.PromoCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.byCode[c.Code()] = clonePromoCode(c)
	return nil
}

func (r *fakePromoCodeRepo) DeleteByCode(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byCode[code]; !ok {
		return infra.WrapRepoErr("promo code not found", nil, infra.KindNotFound)
	}
	delete(r.byCode, code)
	r.deleted = append(r.deleted, code)
	return nil
}

func (r *fakePromoCodeRepo) createdCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

type fakeProgramRepo struct {
	mu           sync.Mutex
	decrements   map[uuid.UUID]int
	decrementErr error
	title        string
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{decrements: make(map[uuid.UUID]int), title: "Effective Communication Workshop"}
}

func (r *fakeProgramRepo) DecrementClassRepSpots(_ context.Context, programID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.decrementErr != nil {
		return r.decrementErr
	}
	r.decrements[programID]++
	return nil
}

func (r *fakeProgramRepo) SubjectTitle(context.Context, *uuid.UUID, *uuid.UUID) (string, error) {
	return r.title, nil
}

type fakeSystemConfig struct {
	cfg commands.BundleDiscountConfig
	err error
}

func (s *fakeSystemConfig) BundleDiscount(context.Context) (commands.BundleDiscountConfig, error) {
	return s.cfg, s.err
}

// recordingLock records every key handed to the real keyed provider so tests
// can assert which key guarded a transition.
type recordingLock struct {
	inner commands.LockProvider

	mu   sync.Mutex
	keys []string
}

func (l *recordingLock) WithLock(ctx context.Context, key string, timeout time.Duration, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.mu.Unlock()
	return l.inner.WithLock(ctx, key, timeout, fn)
}

func (l *recordingLock) recordedKeys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.keys...)
}

type fakeGateway struct {
	mu    sync.Mutex
	pm    purchase.PaymentMethod
	err   error
	calls int
}

func (g *fakeGateway) PaymentMethodSnapshot(context.Context, string) (purchase.PaymentMethod, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.pm, g.err
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []commands.Notification
	err   error
}

func (n *fakeNotifier) Notify(_ context.Context, note commands.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.notes = append(n.notes, note)
	return nil
}

func (n *fakeNotifier) sent() []commands.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]commands.Notification(nil), n.notes...)
}

type fakeEmailSender struct {
	mu            sync.Mutex
	confirmations int
	refundNotices int
	err           error
}

func (e *fakeEmailSender) SendPurchaseConfirmation(context.Context, string, string, int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.confirmations++
	return nil
}

func (e *fakeEmailSender) SendRefundConfirmation(context.Context, string, string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.refundNotices++
	return nil
}

func (e *fakeEmailSender) confirmationCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.confirmations
}

type fakeAuditRecorder struct {
	mu      sync.Mutex
	entries []commands.AuditEntry
}

func (a *fakeAuditRecorder) Record(_ context.Context, e commands.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

type fakeDonationProcessor struct {
	mu       sync.Mutex
	sessions []commands.CheckoutSession
}

func (d *fakeDonationProcessor) HandleCheckoutCompleted(_ context.Context, s commands.CheckoutSession) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions = append(d.sessions, s)
	return nil
}
