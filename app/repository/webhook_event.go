package repository

import (
	"context"

	"github.com/internity/ms-go-reservations/app/entity"
)

type WebhookEventRepository struct {
	db DBTX
}

func NewWebhookEventRepository(db DBTX) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Create(ctx context.Context, event *entity.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (
			reservation_id, provider, event_type, provider_event_id, signature, payload_json, status, error, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		nullableStringValue(event.ReservationID),
		event.Provider,
		event.EventType,
		nullableStringValue(event.ProviderEventID),
		event.Signature,
		event.PayloadJSON,
		event.Status,
		nullableStringValue(event.Error),
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
