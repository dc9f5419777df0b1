package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/internity/ms-go-reservations/app/entity"
)

var ErrReservationAlreadyExists = errors.New("reservation already exists")

type ReservationRepository struct {
	db DBTX
}

func NewReservationRepository(db DBTX) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, reservation *entity.Reservation) error {
	query := `
		INSERT INTO reservations (
			id, first_name, last_name, email, phone,
			reservation_date, reservation_time, guests, occasion, notes,
			payment_status, payment_intent_id,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		reservation.ID,
		reservation.FirstName,
		reservation.LastName,
		reservation.Email,
		reservation.Phone,
		reservation.Date,
		reservation.Time,
		reservation.Guests,
		reservation.Occasion,
		reservation.Notes,
		string(reservation.PaymentStatus),
		nullableStringValue(reservation.PaymentIntentID),
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrReservationAlreadyExists
		}
		return err
	}

	return nil
}

// FindByID returns nil, nil when no reservation exists for the id. Absence
// is a legitimate outcome for callers, not an error.
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*entity.Reservation, error) {
	query := `
		SELECT id, first_name, last_name, email, phone,
			reservation_date, reservation_time, guests, occasion, notes,
			payment_status, payment_intent_id,
			created_at, updated_at
		FROM reservations
		WHERE id = ?
	`

	reservation := &entity.Reservation{}
	if err := scanReservation(r.db.QueryRowContext(ctx, query, id), reservation); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return reservation, nil
}

// UpdatePaymentStatus writes the given status unconditionally and, when
// intentID is non-nil, binds the payment intent to the reservation. It
// returns nil, nil when the reservation does not exist; a record is never
// created here. Rows-affected is not consulted because a redelivered webhook
// legitimately rewrites identical values.
func (r *ReservationRepository) UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus, intentID *string) (*entity.Reservation, error) {
	query := `
		UPDATE reservations SET
			payment_status = ?,
			payment_intent_id = COALESCE(?, payment_intent_id),
			updated_at = UTC_TIMESTAMP()
		WHERE id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, string(status), nullableStringValue(intentID), id); err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(scan rowScanner, reservation *entity.Reservation) error {
	var status string
	var intentID sql.NullString

	err := scan.Scan(
		&reservation.ID,
		&reservation.FirstName,
		&reservation.LastName,
		&reservation.Email,
		&reservation.Phone,
		&reservation.Date,
		&reservation.Time,
		&reservation.Guests,
		&reservation.Occasion,
		&reservation.Notes,
		&status,
		&intentID,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return err
	}

	reservation.PaymentStatus = entity.PaymentStatus(status)
	reservation.PaymentIntentID = stringPtrFromNull(intentID)

	return nil
}
