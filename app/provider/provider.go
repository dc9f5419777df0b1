package provider

import (
	"context"

	"github.com/internity/ms-go-reservations/app/entity"
)

type IntentInput struct {
	ReservationID string
	AmountCents   int64
	Currency      string

	CustomerName  string
	CustomerEmail string
	Date          string
	Time          string
	Guests        string
}

type IntentOutput struct {
	IntentID     string
	ClientSecret string
}

// WebhookEvent is a verified, parsed provider notification. NewStatus is
// empty for event kinds this service does not act on; those are acknowledged
// as no-ops for forward compatibility.
type WebhookEvent struct {
	ProviderEventID *string
	EventType       string
	IntentID        string
	ReservationID   string
	NewStatus       entity.PaymentStatus
}

type PaymentProvider interface {
	CreateIntent(ctx context.Context, input *IntentInput) (*IntentOutput, error)
	VerifyAndParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}
