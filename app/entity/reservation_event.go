package entity

import "time"

type ReservationEvent struct {
	ID uint64

	ReservationID string

	EventType string

	OldStatus *PaymentStatus
	NewStatus PaymentStatus

	ProviderEventID *string
	PayloadJSON     *string

	CreatedAt time.Time
}
