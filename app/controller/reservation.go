package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/internity/ms-go-reservations/app/factory"
	"github.com/internity/ms-go-reservations/app/mapper"
	"github.com/internity/ms-go-reservations/app/service"
	"github.com/internity/ms-go-reservations/app/types"
)

type ReservationController struct {
	reservationService *service.ReservationService
	logger             logrus.FieldLogger
}

func NewReservationController(reservationService *service.ReservationService) *ReservationController {
	return &ReservationController{
		reservationService: reservationService,
		logger:             factory.NewModuleLogger("reservations-controller"),
	}
}

func (c *ReservationController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *ReservationController) CreateReservation(ctx echo.Context) error {
	req, err := types.NewCreateReservationRequestFromContext(ctx)
	if err != nil {
		return c.writeIntakeError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	reservation, err := c.reservationService.CreateReservation(ctx.Request().Context(), req)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			return c.writeIntakeError(ctx, http.StatusBadRequest, validationErr.Message)
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Reservation creation failed")
		return c.writeIntakeError(ctx, http.StatusInternalServerError, "Internal server error")
	}

	return ctx.JSON(http.StatusCreated, &types.CreateReservationResponse{
		Success:       true,
		ReservationID: reservation.ID,
	})
}

// GetReservation serves the internal, store-facing accessor; it is never
// routed on the public surface.
func (c *ReservationController) GetReservation(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "reservation id is required"})
	}

	reservation, err := c.reservationService.GetReservation(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrReservationNotFound) {
			return ctx.JSON(http.StatusNotFound, &types.ErrorResponse{Error: "Reservation not found"})
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get reservation failed")
		return ctx.JSON(http.StatusInternalServerError, &types.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, &types.ReservationEnvelopeResponse{Reservation: mapper.ReservationToResponse(reservation)})
}

func (c *ReservationController) writeIntakeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ReservationErrorResponse{Success: false, Error: message})
}
