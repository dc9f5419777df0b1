package types

import (
	"github.com/labstack/echo/v4"
)

// CreateReservationRequest is the untrusted intake payload. Field-level
// validation (required fields, email shape, party size) lives in the
// service so its error messages stay deterministic.
type CreateReservationRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Guests    string `json:"guests"`
	Occasion  string `json:"occasion"`
	Notes     string `json:"notes"`
}

func NewCreateReservationRequestFromContext(ctx echo.Context) (*CreateReservationRequest, error) {
	var body CreateReservationRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

type CreateIntentRequest struct {
	ReservationID string `json:"reservationId"`
	AmountCents   int64  `json:"amount"`
	Currency      string `json:"currency"`
}

func NewCreateIntentRequestFromContext(ctx echo.Context) (*CreateIntentRequest, error) {
	var body CreateIntentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

type CreateReservationResponse struct {
	Success       bool   `json:"success"`
	ReservationID string `json:"reservationId"`
}

// ReservationErrorResponse is the intake failure shape; the error string is
// shown verbatim to the guest.
type ReservationErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type CreateIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type WebhookAckResponse struct {
	Received bool `json:"received"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type Reservation struct {
	ID              string `json:"id"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Guests          string `json:"guests"`
	Occasion        string `json:"occasion"`
	Notes           string `json:"notes"`
	PaymentStatus   string `json:"paymentStatus"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

type ReservationEnvelopeResponse struct {
	Reservation *Reservation `json:"reservation"`
}
