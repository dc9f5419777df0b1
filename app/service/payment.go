package service

import (
	"context"
	"strings"
	"time"

	"github.com/internity/ms-go-reservations/app/entity"
	"github.com/internity/ms-go-reservations/app/provider"
	"github.com/internity/ms-go-reservations/app/types"
)

// CreatePaymentIntent opens a deposit intent with the payment provider and
// binds the provider-assigned intent id to the reservation. The returned
// client secret lets the guest complete payment directly with the provider;
// card data never passes through this service.
func (s *ReservationService) CreatePaymentIntent(ctx context.Context, req *types.CreateIntentRequest) (string, error) {
	if strings.TrimSpace(req.ReservationID) == "" || req.AmountCents <= 0 {
		return "", &ValidationError{Message: "reservationId and amount are required"}
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.reservationsCfg.DefaultCurrency
	}

	reservation, err := s.reservationRepo.FindByID(ctx, strings.TrimSpace(req.ReservationID))
	if err != nil {
		return "", err
	}
	if reservation == nil {
		return "", ErrReservationNotFound
	}

	output, err := s.paymentProvider.CreateIntent(ctx, &provider.IntentInput{
		ReservationID: reservation.ID,
		AmountCents:   req.AmountCents,
		Currency:      currency,
		CustomerName:  reservation.GuestName(),
		CustomerEmail: reservation.Email,
		Date:          reservation.Date,
		Time:          reservation.Time,
		Guests:        reservation.Guests,
	})
	if err != nil {
		return "", err
	}

	// Re-affirm pending, unless a webhook already settled the deposit; a
	// late intent-creation write must not regress a terminal status.
	status := entity.PaymentStatusPending
	if reservation.PaymentStatus.Terminal() {
		status = reservation.PaymentStatus
	}

	intentID := output.IntentID
	updated, err := s.reservationRepo.UpdatePaymentStatus(ctx, reservation.ID, status, &intentID)
	if err != nil {
		return "", err
	}
	if updated == nil {
		return "", ErrReservationNotFound
	}

	oldStatus := reservation.PaymentStatus
	_ = s.eventRepo.Create(ctx, &entity.ReservationEvent{
		ReservationID: reservation.ID,
		EventType:     "payment_intent_created",
		OldStatus:     &oldStatus,
		NewStatus:     updated.PaymentStatus,
		CreatedAt:     time.Now().UTC(),
	})

	return output.ClientSecret, nil
}
