// Package queue defines message payloads published to the message broker
// for downstream consumers (confirmation emails, host-stand tooling,
// analytics) that must not query the primary database.
package queue

// ReservationCreatedEvent is published when intake accepts a reservation.
type ReservationCreatedEvent struct {
	ReservationID string `json:"reservation_id"`
	GuestName     string `json:"guest_name"`
	Email         string `json:"email"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Guests        string `json:"guests"`
	CreatedAt     string `json:"created_at"`
}

// PaymentStatusChangedEvent is published when a verified provider webhook
// settles a reservation deposit.
type PaymentStatusChangedEvent struct {
	ReservationID   string `json:"reservation_id"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	NewStatus       string `json:"new_status"`
	OccurredAt      string `json:"occurred_at"`
}
