package entity

import "time"

// PaymentStatus tracks the deposit state of a reservation as last reported
// by the payment provider. The provider webhook is the only authority for
// the paid and failed states.
type PaymentStatus string

const (
	PaymentStatusNone    PaymentStatus = "none"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusNone, PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the provider has settled the deposit one way or
// the other. Terminal statuses are never regressed by intent creation.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

type Reservation struct {
	ID string

	FirstName string
	LastName  string
	Email     string
	Phone     string

	Date   string
	Time   string
	Guests string

	Occasion string
	Notes    string

	PaymentStatus   PaymentStatus
	PaymentIntentID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Reservation) GuestName() string {
	return r.FirstName + " " + r.LastName
}
