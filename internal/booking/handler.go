package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ritesh99494/Cloud-GYM/internal/api"
	"github.com/Ritesh99494/Cloud-GYM/internal/auth"
	"github.com/Ritesh99494/Cloud-GYM/internal/gym"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Create a booking
// @Description  Reserves a spot in a time slot on a date. Users with an active subscription get a CONFIRMED booking; others get PENDING_PAYMENT and must pay via /payments/booking.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body booking.CreateBookingRequest true "Booking request"
// @Success      201 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDate):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking date, use YYYY-MM-DD and a date not in the past"})
		case errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Time slot not found"})
		case errors.Is(err, ErrSlotFull):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Time slot is full"})
		case errors.Is(err, ErrDuplicateBooking):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "You already have a booking for this slot"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// @Summary      Cancel a booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), userID, bookingID); err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only cancel your own bookings"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Booking can no longer be cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Booking cancelled successfully"})
}

// @Summary      Check in to a booking
// @Description  Validates the QR credential and records the check-in time.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Param        request body booking.CheckInRequest true "QR credential"
// @Success      200 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/checkin [post]
func (h *Handler) CheckIn(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	booking, err := h.service.CheckIn(c.Request.Context(), userID, bookingID, req.QRCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only check in to your own bookings"})
		case errors.Is(err, ErrInvalidCredential):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Invalid QR code"})
		case errors.Is(err, ErrAlreadyCheckedIn):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Already checked in"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Booking is not confirmed"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to check in"})
		}
		return
	}

	c.JSON(http.StatusOK, booking)
}

// @Summary      Check out of a booking
// @Description  Completes a checked-in booking.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/checkout [post]
func (h *Handler) CheckOut(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	booking, err := h.service.CheckOut(c.Request.Context(), userID, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only check out of your own bookings"})
		case errors.Is(err, ErrNotCheckedIn):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Check in before checking out"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Booking is not confirmed"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to check out"})
		}
		return
	}

	c.JSON(http.StatusOK, booking)
}

// @Summary      Slot availability for a gym on a date
// @Description  Remaining spots per slot, derived from confirmed bookings.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        gymID path  int    true "Gym ID"
// @Param        date  query string true "Date (YYYY-MM-DD)"
// @Success      200 {array} booking.SlotAvailability
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /gyms/{gymID}/availability [get]
func (h *Handler) GetAvailability(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date query param is required"})
		return
	}

	slots, err := h.service.GetAvailableSlots(c.Request.Context(), gymID, date)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDate):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid date, use YYYY-MM-DD"})
		case errors.Is(err, gym.ErrGymNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch availability"})
		}
		return
	}

	c.JSON(http.StatusOK, slots)
}

// @Summary      List my bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} booking.BookingWithDetails
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookings, err := h.service.GetUserBookings(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// @Summary      List bookings by slot
// @Description  Admin only.
// @Tags         admin,bookings
// @Produce      json
// @Security     BearerAuth
// @Param        slotID path int true "Time slot ID"
// @Success      200 {array} booking.BookingWithDetails
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/slots/{slotID}/bookings [get]
func (h *Handler) ListBookingsBySlot(c *gin.Context) {
	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	bookings, err := h.service.GetBookingsByTimeSlot(c.Request.Context(), slotID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// @Summary      List bookings by gym
// @Description  Admin only.
// @Tags         admin,bookings
// @Produce      json
// @Security     BearerAuth
// @Param        gymID path int true "Gym ID"
// @Success      200 {array} booking.BookingWithDetails
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/gyms/{gymID}/bookings [get]
func (h *Handler) ListBookingsByGym(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	bookings, err := h.service.GetBookingsByGym(c.Request.Context(), gymID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// @Summary      Booking stats for a gym
// @Description  Admin only: booking counts per status.
// @Tags         admin,bookings
// @Produce      json
// @Security     BearerAuth
// @Param        gymID path int true "Gym ID"
// @Success      200 {object} booking.GymBookingStats
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/gyms/{gymID}/stats [get]
func (h *Handler) GetGymStats(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	stats, err := h.service.GetGymStats(c.Request.Context(), gymID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
