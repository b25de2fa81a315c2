package subscription

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ritesh99494/Cloud-GYM/internal/api"
	"github.com/Ritesh99494/Cloud-GYM/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      List subscription plans
// @Tags         subscriptions
// @Produce      json
// @Success      200 {array} subscription.Plan
// @Router       /subscriptions/plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Plans())
}

// @Summary      Purchase a subscription
// @Description  Creates a PENDING subscription. Pay for it via /payments/subscription to activate.
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body subscription.CreateSubscriptionRequest true "Plan selection"
// @Success      201 {object} subscription.Subscription
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /subscriptions [post]
func (h *Handler) Purchase(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	sub, err := h.service.Purchase(c.Request.Context(), userID, req.PlanType)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownPlan):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown subscription plan"})
		case errors.Is(err, ErrAlreadyActive):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "An active or pending subscription already exists"})
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create subscription"})
		}
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// @Summary      Get current active subscription
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} subscription.Subscription
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /subscriptions/active [get]
func (h *Handler) GetActive(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	sub, err := h.service.GetActive(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No active subscription"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load subscription"})
		return
	}

	c.JSON(http.StatusOK, sub)
}

// @Summary      List my subscriptions
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} subscription.Subscription
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /subscriptions/my [get]
func (h *Handler) ListMy(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	subs, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load subscriptions"})
		return
	}

	c.JSON(http.StatusOK, subs)
}

// @Summary      Cancel a subscription
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Subscription ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /subscriptions/{id} [delete]
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid subscription ID"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, ErrSubscriptionNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Subscription not found"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Subscription can no longer be cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel subscription"})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Subscription cancelled"})
}
