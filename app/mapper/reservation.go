package mapper

import (
	"time"

	"github.com/internity/ms-go-reservations/app/entity"
	"github.com/internity/ms-go-reservations/app/types"
)

func ReservationToResponse(item *entity.Reservation) *types.Reservation {
	if item == nil {
		return nil
	}

	return &types.Reservation{
		ID:              item.ID,
		FirstName:       item.FirstName,
		LastName:        item.LastName,
		Email:           item.Email,
		Phone:           item.Phone,
		Date:            item.Date,
		Time:            item.Time,
		Guests:          item.Guests,
		Occasion:        item.Occasion,
		Notes:           item.Notes,
		PaymentStatus:   string(item.PaymentStatus),
		PaymentIntentID: derefString(item.PaymentIntentID),
		CreatedAt:       item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
