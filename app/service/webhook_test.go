package service

import (
	"context"
	"errors"
	"testing"

	"github.com/internity/ms-go-reservations/app/entity"
	"github.com/internity/ms-go-reservations/app/provider"
	"github.com/internity/ms-go-reservations/app/types"
)

func succeededEvent(reservationID string) *provider.WebhookEvent {
	eventID := "evt_test_1"
	return &provider.WebhookEvent{
		ProviderEventID: &eventID,
		EventType:       "payment_intent.succeeded",
		IntentID:        "pi_test_123",
		ReservationID:   reservationID,
		NewStatus:       entity.PaymentStatusPaid,
	}
}

func TestHandleStripeWebhookRejectsInvalidSignature(t *testing.T) {
	repo := newServiceReservationRepo()
	seedReservation(repo, entity.PaymentStatusPending)
	webhookRepo := &serviceWebhookRepo{}
	svc := newReservationServiceForTest(repo, &serviceEventRepo{}, webhookRepo, &serviceProvider{webhookErr: errors.New("invalid stripe signature")})

	err := svc.HandleStripeWebhook(context.Background(), []byte(`{"id":"evt_test_1"}`), "t=1,v1=bad")
	if !errors.Is(err, ErrWebhookRejected) {
		t.Fatalf("expected ErrWebhookRejected, got %v", err)
	}
	if repo.reservations["res_seed_1"].PaymentStatus != entity.PaymentStatusPending {
		t.Fatal("expected reservation to stay pending after rejected delivery")
	}
	if len(webhookRepo.events) != 1 || webhookRepo.events[0].Status != entity.WebhookStatusRejected {
		t.Fatalf("expected a rejected webhook audit row, got %+v", webhookRepo.events)
	}
}

func TestHandleStripeWebhookSucceededMarksPaid(t *testing.T) {
	repo := newServiceReservationRepo()
	seedReservation(repo, entity.PaymentStatusPending)
	eventRepo := &serviceEventRepo{}
	webhookRepo := &serviceWebhookRepo{}
	svc := newReservationServiceForTest(repo, eventRepo, webhookRepo, &serviceProvider{webhookEvt: succeededEvent("res_seed_1")})

	if err := svc.HandleStripeWebhook(context.Background(), []byte(`{"id":"evt_test_1"}`), "t=1,v1=good"); err != nil {
		t.Fatalf("handle webhook failed: %v", err)
	}

	stored := repo.reservations["res_seed_1"]
	if stored.PaymentStatus != entity.PaymentStatusPaid {
		t.Fatalf("expected paid status, got %s", stored.PaymentStatus)
	}
	if stored.PaymentIntentID == nil || *stored.PaymentIntentID != "pi_test_123" {
		t.Fatalf("expected intent id to be attached, got %v", stored.PaymentIntentID)
	}
	if len(eventRepo.events) != 1 || eventRepo.events[0].EventType != "payment_intent.succeeded" {
		t.Fatalf("expected a payment_intent.succeeded event, got %+v", eventRepo.events)
	}
	if len(webhookRepo.events) != 1 || webhookRepo.events[0].Status != entity.WebhookStatusProcessed {
		t.Fatalf("expected a processed webhook audit row, got %+v", webhookRepo.events)
	}
}

func TestHandleStripeWebhookRedeliveryIsIdempotent(t *testing.T) {
	repo := newServiceReservationRepo()
	seedReservation(repo, entity.PaymentStatusPending)
	svc := newReservationServiceForTest(repo, &serviceEventRepo{}, &serviceWebhookRepo{}, &serviceProvider{webhookEvt: succeededEvent("res_seed_1")})

	for i := 0; i < 3; i++ {
		if err := svc.HandleStripeWebhook(context.Background(), []byte(`{"id":"evt_test_1"}`), "t=1,v1=good"); err != nil {
			t.Fatalf("delivery %d failed: %v", i+1, err)
		}
	}
	if repo.reservations["res_seed_1"].PaymentStatus != entity.PaymentStatusPaid {
		t.Fatal("expected reservation to stay paid across redeliveries")
	}
}

func TestHandleStripeWebhookFailedMarksFailed(t *testing.T) {
	repo := newServiceReservationRepo()
	seedReservation(repo, entity.PaymentStatusPending)
	eventID := "evt_test_2"
	svc := newReservationServiceForTest(repo, &serviceEventRepo{}, &serviceWebhookRepo{}, &serviceProvider{webhookEvt: &provider.WebhookEvent{
		ProviderEventID: &eventID,
		EventType:       "payment_intent.payment_failed",
		IntentID:        "pi_test_123",
		ReservationID:   "res_seed_1",
		NewStatus:       entity.PaymentStatusFailed,
	}})

	if err := svc.HandleStripeWebhook(context.Background(), []byte(`{"id":"evt_test_2"}`), "t=1,v1=good"); err != nil {
		t.Fatalf("handle webhook failed: %v", err)
	}
	if repo.reservations["res_seed_1"].PaymentStatus != entity.PaymentStatusFailed {
		t.Fatalf("expected failed status, got %s", repo.reservations["res_seed_1"].PaymentStatus)
	}
}

func TestHandleStripeWebhookUnhandledEventIsAcknowledged(t *testing.T) {
	repo := newServiceReservationRepo()
	seedReservation(repo, entity.PaymentStatusPending)
	webhookRepo := &serviceWebhookRepo{}
	svc := newReservationServiceForTest(repo, &serviceEventRepo{}, webhookRepo, &serviceProvider{webhookEvt: &provider.WebhookEvent{
		EventType: "charge.refunded",
	}})

	if err := svc.HandleStripeWebhook(context.Background(), []byte(`{"id":"evt_test_3"}`), "t=1,v1=good"); err != nil {
		t.Fatalf("expected unhandled event to be acknowledged, got %v", err)
	}
	if repo.reservations["res_seed_1"].PaymentStatus != entity.PaymentStatusPending {
		t.Fatal("expected reservation to stay pending for unhandled event")
	}
	if len(webhookRepo.events) != 1 || webhookRepo.events[0].Status != entity.WebhookStatusIgnored {
		t.Fatalf("expected an ignored webhook audit row, got %+v", webhookRepo.events)
	}
}

func TestHandleStripeWebhookUnknownReservationIsAcknowledged(t *testing.T) {
	repo := newServiceReservationRepo()
	webhookRepo := &serviceWebhookRepo{}
	svc := newReservationServiceForTest(repo, &serviceEventRepo{}, webhookRepo, &serviceProvider{webhookEvt: succeededEvent("res_unknown")})

	if err := svc.HandleStripeWebhook(context.Background(), []byte(`{"id":"evt_test_1"}`), "t=1,v1=good"); err != nil {
		t.Fatalf("expected unmatched delivery to be acknowledged, got %v", err)
	}
	if len(webhookRepo.events) != 1 || webhookRepo.events[0].Status != entity.WebhookStatusIgnored {
		t.Fatalf("expected an ignored webhook audit row, got %+v", webhookRepo.events)
	}
}

func TestHandleStripeWebhookMissingReservationMetadataIsAcknowledged(t *testing.T) {
	repo := newServiceReservationRepo()
	seedReservation(repo, entity.PaymentStatusPending)
	webhookRepo := &serviceWebhookRepo{}
	svc := newReservationServiceForTest(repo, &serviceEventRepo{}, webhookRepo, &serviceProvider{webhookEvt: succeededEvent("")})

	if err := svc.HandleStripeWebhook(context.Background(), []byte(`{"id":"evt_test_1"}`), "t=1,v1=good"); err != nil {
		t.Fatalf("expected delivery without metadata to be acknowledged, got %v", err)
	}
	if repo.reservations["res_seed_1"].PaymentStatus != entity.PaymentStatusPending {
		t.Fatal("expected reservation to stay pending when metadata is missing")
	}
}

func TestReservationDepositLifecycle(t *testing.T) {
	repo := newServiceReservationRepo()
	p := &serviceProvider{}
	svc := newReservationServiceForTest(repo, &serviceEventRepo{}, &serviceWebhookRepo{}, p)

	reservation, err := svc.CreateReservation(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create reservation failed: %v", err)
	}

	secret, err := svc.CreatePaymentIntent(context.Background(), &types.CreateIntentRequest{ReservationID: reservation.ID, AmountCents: 2500})
	if err != nil {
		t.Fatalf("create payment intent failed: %v", err)
	}
	if secret == "" {
		t.Fatal("expected a client secret")
	}
	if p.createInput.AmountCents != 2500 {
		t.Fatalf("expected deposit amount 2500, got %d", p.createInput.AmountCents)
	}

	p.webhookEvt = succeededEvent(reservation.ID)
	for i := 0; i < 2; i++ {
		if err := svc.HandleStripeWebhook(context.Background(), []byte(`{"id":"evt_test_1"}`), "t=1,v1=good"); err != nil {
			t.Fatalf("webhook delivery %d failed: %v", i+1, err)
		}
	}

	final, err := svc.GetReservation(context.Background(), reservation.ID)
	if err != nil {
		t.Fatalf("get reservation failed: %v", err)
	}
	if final.PaymentStatus != entity.PaymentStatusPaid {
		t.Fatalf("expected paid status at end of lifecycle, got %s", final.PaymentStatus)
	}
}
