package purchase

// Status is the purchase lifecycle state. Transitions are monotonic:
// pending → completed → refund_processing → refunded, with the failure
// branches pending → failed and refund_processing → refund_failed.
type Status string

const (
	StatusPending          Status = "pending"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
	StatusRefundProcessing Status = "refund_processing"
	StatusRefunded         Status = "refunded"
	StatusRefundFailed     Status = "refund_failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed,
		StatusRefundProcessing, StatusRefunded, StatusRefundFailed:
		return true
	}
	return false
}

// PaymentMethod is a display snapshot of the card used, captured once on
// completion, best-effort.
type PaymentMethod struct {
	Brand string
	Last4 string
}

func (pm PaymentMethod) IsZero() bool {
	return pm.Brand == "" && pm.Last4 == ""
}

type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Billing holds customer-entered billing details copied from the provider's
// checkout session.
type Billing struct {
	Name    string
	Email   string
	Address Address
}
