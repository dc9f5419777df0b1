package service

import "errors"

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrWebhookRejected     = errors.New("webhook rejected")
)

// ValidationError carries a message safe to show verbatim to the guest.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
