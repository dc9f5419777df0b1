package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/internity/ms-go-reservations/app/factory"
	"github.com/internity/ms-go-reservations/app/provider"
	"github.com/internity/ms-go-reservations/app/service"
	"github.com/internity/ms-go-reservations/app/types"
)

const stripeSignatureHeader = "Stripe-Signature"

type PaymentController struct {
	reservationService *service.ReservationService
	logger             logrus.FieldLogger
}

func NewPaymentController(reservationService *service.ReservationService) *PaymentController {
	return &PaymentController{
		reservationService: reservationService,
		logger:             factory.NewModuleLogger("payments-controller"),
	}
}

func (c *PaymentController) CreateIntent(ctx echo.Context) error {
	req, err := types.NewCreateIntentRequestFromContext(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "Invalid request body"})
	}

	clientSecret, err := c.reservationService.CreatePaymentIntent(ctx.Request().Context(), req)
	if err != nil {
		var validationErr *service.ValidationError
		var stripeErr *provider.StripeError
		switch {
		case errors.As(err, &validationErr):
			return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: validationErr.Message})
		case errors.Is(err, service.ErrReservationNotFound):
			return ctx.JSON(http.StatusNotFound, &types.ErrorResponse{Error: "Reservation not found"})
		case errors.As(err, &stripeErr):
			// Only provider-originated messages are displayable; anything
			// else would leak internals.
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("PaymentIntent creation failed")
			return ctx.JSON(http.StatusInternalServerError, &types.ErrorResponse{Error: stripeErr.Message})
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("PaymentIntent creation failed")
			return ctx.JSON(http.StatusInternalServerError, &types.ErrorResponse{Error: "Internal server error"})
		}
	}

	return ctx.JSON(http.StatusOK, &types.CreateIntentResponse{ClientSecret: clientSecret})
}

// HandleStripeWebhook reads the body byte-for-byte; signature verification
// depends on the exact payload, so no structured binding happens here.
func (c *PaymentController) HandleStripeWebhook(ctx echo.Context) error {
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "Invalid request body"})
	}
	signature := ctx.Request().Header.Get(stripeSignatureHeader)

	if err := c.reservationService.HandleStripeWebhook(ctx.Request().Context(), payload, signature); err != nil {
		if errors.Is(err, service.ErrWebhookRejected) {
			return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "Invalid webhook signature"})
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Webhook processing failed")
		return ctx.JSON(http.StatusInternalServerError, &types.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, &types.WebhookAckResponse{Received: true})
}
