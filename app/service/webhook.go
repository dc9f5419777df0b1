package service

import (
	"context"
	"strings"
	"time"

	"github.com/internity/ms-go-reservations/app/entity"
	"github.com/internity/ms-go-reservations/app/factory"
	"github.com/internity/ms-go-reservations/app/provider"
	"github.com/internity/ms-go-reservations/app/queue"
)

const webhookProviderStripe = "stripe"

// HandleStripeWebhook is the only path that may move a reservation to paid.
// The raw payload is authenticated byte-for-byte before any parsing; a
// verification failure rejects the delivery outright. Once authenticated,
// the delivery is always acknowledged, even when the referenced reservation
// cannot be found, so the provider does not retry unmatched events forever.
func (s *ReservationService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	logger := factory.NewModuleLogger("reservations-webhook")

	event, err := s.paymentProvider.VerifyAndParseWebhook(ctx, payload, signature)
	if err != nil {
		logger.WithError(err).Warn("Webhook signature verification failed")
		s.recordWebhook(ctx, nil, "", nil, payload, signature, entity.WebhookStatusRejected, err.Error())
		return ErrWebhookRejected
	}

	switch event.NewStatus {
	case entity.PaymentStatusPaid, entity.PaymentStatusFailed:
		return s.applyPaymentOutcome(ctx, event, payload, signature)
	default:
		logger.WithField("event_type", event.EventType).Info("Unhandled stripe event")
		s.recordWebhook(ctx, nil, event.EventType, event.ProviderEventID, payload, signature, entity.WebhookStatusIgnored, "")
		return nil
	}
}

func (s *ReservationService) applyPaymentOutcome(ctx context.Context, event *provider.WebhookEvent, payload []byte, signature string) error {
	logger := factory.NewModuleLogger("reservations-webhook")

	if strings.TrimSpace(event.ReservationID) == "" {
		logger.WithField("event_type", event.EventType).Warn("Webhook event carries no reservation metadata")
		s.recordWebhook(ctx, nil, event.EventType, event.ProviderEventID, payload, signature, entity.WebhookStatusIgnored, "missing reservationId metadata")
		return nil
	}

	var intentID *string
	if v := strings.TrimSpace(event.IntentID); v != "" {
		intentID = &v
	}

	updated, err := s.reservationRepo.UpdatePaymentStatus(ctx, event.ReservationID, event.NewStatus, intentID)
	if err != nil {
		return err
	}
	if updated == nil {
		// Acknowledged but unmatched; the reservation may live in another
		// environment sharing the same webhook endpoint.
		logger.WithField("reservation_id", event.ReservationID).Warn("Webhook event for unknown reservation")
		s.recordWebhook(ctx, nil, event.EventType, event.ProviderEventID, payload, signature, entity.WebhookStatusIgnored, "reservation not found")
		return nil
	}

	now := time.Now().UTC()
	payloadJSON := string(payload)
	_ = s.eventRepo.Create(ctx, &entity.ReservationEvent{
		ReservationID:   updated.ID,
		EventType:       event.EventType,
		NewStatus:       updated.PaymentStatus,
		ProviderEventID: event.ProviderEventID,
		PayloadJSON:     &payloadJSON,
		CreatedAt:       now,
	})
	s.recordWebhook(ctx, &updated.ID, event.EventType, event.ProviderEventID, payload, signature, entity.WebhookStatusProcessed, "")

	if s.publisher != nil {
		_ = s.publisher.PublishPaymentStatusChanged(ctx, queue.PaymentStatusChangedEvent{
			ReservationID:   updated.ID,
			PaymentIntentID: event.IntentID,
			NewStatus:       string(updated.PaymentStatus),
			OccurredAt:      now.Format(time.RFC3339),
		})
	}

	logger.WithField("reservation_id", updated.ID).
		WithField("status", string(updated.PaymentStatus)).
		Info("Reservation payment status updated")

	return nil
}

func (s *ReservationService) recordWebhook(
	ctx context.Context,
	reservationID *string,
	eventType string,
	providerEventID *string,
	payload []byte,
	signature string,
	status int32,
	reason string,
) {
	event := &entity.WebhookEvent{
		ReservationID:   reservationID,
		Provider:        webhookProviderStripe,
		EventType:       eventType,
		ProviderEventID: providerEventID,
		Signature:       strings.TrimSpace(signature),
		PayloadJSON:     string(payload),
		Status:          status,
		CreatedAt:       time.Now().UTC(),
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		trimmed := truncate(reason, 1024)
		event.Error = &trimmed
	}
	_ = s.webhookRepo.Create(ctx, event)
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
