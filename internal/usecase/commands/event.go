package commands

import (
	"encoding/json"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/purchase"
)

// Event is the verified provider webhook envelope.
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Created int64     `json:"created"`
	Data    EventData `json:"data"`
}

type EventData struct {
	Object json.RawMessage `json:"object"`
}

// EventKind is the closed set of event classes this subsystem handles. New
// provider event types must be added here deliberately; anything not in the
// set is KindIgnored and acknowledged without side effects.
type EventKind int

const (
	KindIgnored EventKind = iota
	KindCheckoutCompleted
	KindPaymentSucceeded
	KindPaymentFailed
	KindRefundUpdated
)

func ClassifyEventType(eventType string) EventKind {
	switch eventType {
	case "checkout.session.completed":
		return KindCheckoutCompleted
	case "payment_intent.succeeded":
		return KindPaymentSucceeded
	case "payment_intent.payment_failed":
		return KindPaymentFailed
	case "refund.updated":
		return KindRefundUpdated
	default:
		return KindIgnored
	}
}

// Metadata keys stamped onto provider objects when the checkout was created.
const (
	metadataPurchaseID = "purchaseId"
	metadataKind       = "type"
	metadataKindDonate = "donation"
)

// CheckoutSession is the data.object of checkout.session.completed.
type CheckoutSession struct {
	ID              string            `json:"id"`
	PaymentIntentID string            `json:"payment_intent"`
	AmountTotal     int64             `json:"amount_total"`
	Metadata        map[string]string `json:"metadata"`
	CustomerDetails *CustomerDetails  `json:"customer_details"`
}

type CustomerDetails struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Address *SessionAddress `json:"address"`
}

type SessionAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (s CheckoutSession) IsDonation() bool {
	return s.Metadata[metadataKind] == metadataKindDonate
}

func (s CheckoutSession) PurchaseID() string {
	return s.Metadata[metadataPurchaseID]
}

// Billing converts the session's customer details into the domain billing
// shape. Missing sub-objects yield zero values, which the merge rule treats
// as "do not overwrite".
func (s CheckoutSession) Billing() purchase.Billing {
	if s.CustomerDetails == nil {
		return purchase.Billing{}
	}
	b := purchase.Billing{
		Name:  s.CustomerDetails.Name,
		Email: s.CustomerDetails.Email,
	}
	if addr := s.CustomerDetails.Address; addr != nil {
		b.Address = purchase.Address{
			Line1:      addr.Line1,
			Line2:      addr.Line2,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
		}
	}
	return b
}

// PaymentIntent is the data.object of payment_intent.succeeded and
// payment_intent.payment_failed.
type PaymentIntent struct {
	ID               string `json:"id"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// Refund is the data.object of refund.updated.
type Refund struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	FailureReason string            `json:"failure_reason"`
	Metadata      map[string]string `json:"metadata"`
}

func (r Refund) PurchaseID() string {
	return r.Metadata[metadataPurchaseID]
}

// Lock keys. The purchase-derived key is preferred; older event shapes whose
// metadata lacks a purchase id fall back to the provider session key so that
// duplicate deliveries of the same event still serialize.
func completionLockKey(purchaseID string) string {
	return "purchase:complete:" + purchaseID
}

func sessionLockKey(sessionID string) string {
	return "webhook:session:" + sessionID
}
