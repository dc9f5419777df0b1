package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/internity/ms-go-reservations/app/entity"
	"github.com/internity/ms-go-reservations/app/provider"
	"github.com/internity/ms-go-reservations/app/queue"
	"github.com/internity/ms-go-reservations/app/types"
	"github.com/internity/ms-go-reservations/config"
)

// requiredFields is the fixed check order; missing-field messages list names
// in exactly this sequence.
var requiredFields = []string{"firstName", "lastName", "email", "date", "time", "guests"}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type reservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	FindByID(ctx context.Context, id string) (*entity.Reservation, error)
	UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus, intentID *string) (*entity.Reservation, error)
}

type reservationEventRepository interface {
	Create(ctx context.Context, event *entity.ReservationEvent) error
}

type webhookEventRepository interface {
	Create(ctx context.Context, event *entity.WebhookEvent) error
}

type eventPublisher interface {
	PublishReservationCreated(ctx context.Context, event queue.ReservationCreatedEvent) error
	PublishPaymentStatusChanged(ctx context.Context, event queue.PaymentStatusChangedEvent) error
}

type ReservationService struct {
	reservationRepo reservationRepository
	eventRepo       reservationEventRepository
	webhookRepo     webhookEventRepository
	paymentProvider provider.PaymentProvider
	reservationsCfg config.ReservationsConfig
	publisher       eventPublisher
}

func NewReservationService(
	reservationRepo reservationRepository,
	eventRepo reservationEventRepository,
	webhookRepo webhookEventRepository,
	paymentProvider provider.PaymentProvider,
	reservationsCfg config.ReservationsConfig,
	publisher eventPublisher,
) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		eventRepo:       eventRepo,
		webhookRepo:     webhookRepo,
		paymentProvider: paymentProvider,
		reservationsCfg: reservationsCfg,
		publisher:       publisher,
	}
}

// CreateReservation validates untrusted intake input and persists a new
// reservation with payment status pending. Validation failures never reach
// the store.
func (s *ReservationService) CreateReservation(ctx context.Context, req *types.CreateReservationRequest) (*entity.Reservation, error) {
	values := map[string]string{
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"email":     req.Email,
		"date":      req.Date,
		"time":      req.Time,
		"guests":    req.Guests,
	}

	missing := make([]string, 0, len(requiredFields))
	for _, field := range requiredFields {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Message: "Missing required fields: " + strings.Join(missing, ", ")}
	}

	if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		return nil, &ValidationError{Message: "Invalid email format"}
	}

	if max := s.reservationsCfg.MaxOnlinePartySize; max > 0 {
		if guests, err := strconv.Atoi(strings.TrimSpace(req.Guests)); err == nil && guests > max {
			return nil, &ValidationError{
				Message: fmt.Sprintf("Parties larger than %d guests cannot be booked online; please call the restaurant", max),
			}
		}
	}

	now := time.Now().UTC()
	reservation := &entity.Reservation{
		ID:            newReservationID(),
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		Date:          strings.TrimSpace(req.Date),
		Time:          strings.TrimSpace(req.Time),
		Guests:        strings.TrimSpace(req.Guests),
		Occasion:      strings.TrimSpace(req.Occasion),
		Notes:         strings.TrimSpace(req.Notes),
		PaymentStatus: entity.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		return nil, err
	}

	_ = s.eventRepo.Create(ctx, &entity.ReservationEvent{
		ReservationID: reservation.ID,
		EventType:     "reservation_created",
		NewStatus:     reservation.PaymentStatus,
		CreatedAt:     now,
	})

	if s.publisher != nil {
		_ = s.publisher.PublishReservationCreated(ctx, queue.ReservationCreatedEvent{
			ReservationID: reservation.ID,
			GuestName:     reservation.GuestName(),
			Email:         reservation.Email,
			Date:          reservation.Date,
			Time:          reservation.Time,
			Guests:        reservation.Guests,
			CreatedAt:     now.Format(time.RFC3339),
		})
	}

	return reservation, nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (*entity.Reservation, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, ErrReservationNotFound
	}
	return reservation, nil
}

func newReservationID() string {
	return "res_" + uuid.NewString()
}
