package entity

import "time"

const (
	WebhookStatusProcessed int32 = 10
	WebhookStatusIgnored   int32 = 11
	WebhookStatusRejected  int32 = 20
)

// WebhookEvent is an audit record of every webhook delivery, including the
// ones that failed signature verification. It is not a deduplication gate;
// redelivered events are idempotent by construction and produce one row each.
type WebhookEvent struct {
	ID uint64

	ReservationID *string

	Provider        string
	EventType       string
	ProviderEventID *string
	Signature       string
	PayloadJSON     string
	Status          int32
	Error           *string

	CreatedAt time.Time
}
