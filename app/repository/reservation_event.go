package repository

import (
	"context"

	"github.com/internity/ms-go-reservations/app/entity"
)

type ReservationEventRepository struct {
	db DBTX
}

func NewReservationEventRepository(db DBTX) *ReservationEventRepository {
	return &ReservationEventRepository{db: db}
}

func (r *ReservationEventRepository) Create(ctx context.Context, event *entity.ReservationEvent) error {
	query := `
		INSERT INTO reservation_events (
			reservation_id, event_type, old_status, new_status, provider_event_id, payload_json, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		event.ReservationID,
		event.EventType,
		nullableStatusValue(event.OldStatus),
		string(event.NewStatus),
		nullableStringValue(event.ProviderEventID),
		nullableStringValue(event.PayloadJSON),
		event.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = uint64(id)

	return nil
}

func nullableStatusValue(v *entity.PaymentStatus) interface{} {
	if v == nil {
		return nil
	}
	return string(*v)
}
