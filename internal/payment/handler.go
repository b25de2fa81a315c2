package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ritesh99494/Cloud-GYM/internal/api"
	"github.com/Ritesh99494/Cloud-GYM/internal/auth"
	"github.com/Ritesh99494/Cloud-GYM/internal/booking"
	"github.com/Ritesh99494/Cloud-GYM/internal/subscription"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Initiate payment for a subscription
// @Description  Creates a PENDING payment for a PENDING subscription and returns the gateway redirect.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body payment.InitiateSubscriptionPaymentRequest true "Subscription to pay for"
// @Success      201 {object} payment.GatewayResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /payments/subscription [post]
func (h *Handler) InitiateSubscriptionPayment(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req InitiateSubscriptionPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.InitiateSubscriptionPayment(c.Request.Context(), userID, req.SubscriptionID)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrSubscriptionNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Subscription not found"})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Subscription belongs to another user"})
		case errors.Is(err, ErrNotPayable):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Subscription is not awaiting payment"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to initiate payment"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary      Initiate payment for a booking
// @Description  Creates a PENDING payment for a PENDING_PAYMENT booking and returns the gateway redirect.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body payment.InitiateBookingPaymentRequest true "Booking to pay for"
// @Success      201 {object} payment.GatewayResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /payments/booking [post]
func (h *Handler) InitiateBookingPayment(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req InitiateBookingPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.InitiateBookingPayment(c.Request.Context(), userID, req.BookingID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Booking belongs to another user"})
		case errors.Is(err, ErrNotPayable):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Booking is not awaiting payment"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to initiate payment"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary      Payment gateway callback
// @Description  Unauthenticated webhook the gateway calls after the user completes payment. Safe to replay.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body payment.CallbackRequest true "Gateway callback"
// @Success      200 {object} payment.Payment
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /payments/callback [post]
func (h *Handler) Callback(c *gin.Context) {
	// Keep the body verbatim; it is persisted alongside the payment for
	// dispute handling.
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unreadable request body"})
		return
	}

	var req CallbackRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if req.PaymentID == "" || req.Status == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "payment_id and status are required"})
		return
	}
	req.Raw = string(raw)

	p, err := h.service.ProcessCallback(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Payment not found"})
		case errors.Is(err, subscription.ErrInvalidTransition),
			errors.Is(err, booking.ErrInvalidTransition):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Linked record can no longer change state"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to process callback"})
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

// @Summary      List my payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} payment.Payment
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /payments/my [get]
func (h *Handler) ListMy(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	payments, err := h.service.ListMyPayments(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}

// @Summary      Get a payment by its external id
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        paymentID path string true "External payment ID (PAY_...)"
// @Success      200 {object} payment.Payment
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /payments/{paymentID} [get]
func (h *Handler) GetByPaymentID(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	p, err := h.service.GetPayment(c.Request.Context(), userID, c.Param("paymentID"))
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Payment not found"})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Payment belongs to another user"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load payment"})
		}
		return
	}

	c.JSON(http.StatusOK, p)
}
