package gym

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Ritesh99494/Cloud-GYM/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Create a gym
// @Description  Admin-only: create a new gym
// @Tags         admin,gyms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body gym.CreateGymRequest true "Gym payload"
// @Success      201 {object} gym.Gym
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/gyms [post]
func (h *Handler) CreateGym(c *gin.Context) {
	var req CreateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	gym, err := h.service.CreateGym(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create gym"})
		return
	}

	c.JSON(http.StatusCreated, gym)
}

// @Summary      List gyms
// @Tags         gyms,admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} gym.Gym
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /gyms [get]
// @Router       /admin/gyms [get]
func (h *Handler) ListGyms(c *gin.Context) {
	gyms, err := h.service.GetAllGyms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch gyms"})
		return
	}

	c.JSON(http.StatusOK, gyms)
}

// @Summary      Find nearby gyms
// @Description  Returns gyms within the given radius, ordered by distance.
// @Tags         gyms
// @Produce      json
// @Security     BearerAuth
// @Param        lat     query number true  "Latitude"
// @Param        lng     query number true  "Longitude"
// @Param        radius  query number false "Radius in kilometers (default 10)"
// @Success      200 {array} gym.GymWithDistance
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /gyms/nearby [get]
func (h *Handler) NearbyGyms(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "lat query param is required"})
		return
	}

	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "lng query param is required"})
		return
	}

	radius, _ := strconv.ParseFloat(c.DefaultQuery("radius", "10"), 64)

	gyms, err := h.service.GetNearbyGyms(c.Request.Context(), lat, lng, radius)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch nearby gyms"})
		return
	}

	c.JSON(http.StatusOK, gyms)
}

// @Summary      Create a time slot
// @Description  Admin-only: create a time slot for a gym
// @Tags         admin,gyms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        gymID path int true "Gym ID"
// @Param        request body gym.CreateTimeSlotRequest true "Time slot payload"
// @Success      201 {object} gym.TimeSlot
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/gyms/{gymID}/slots [post]
func (h *Handler) CreateTimeSlot(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	var req CreateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	slot, err := h.service.CreateTimeSlot(c.Request.Context(), gymID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrGymNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
		case errors.Is(err, ErrTimeSlotInvalid):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid time slot data"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create time slot"})
		}
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// @Summary      List time slots for a gym
// @Tags         gyms,admin
// @Produce      json
// @Security     BearerAuth
// @Param        gymID path int true "Gym ID"
// @Success      200 {array} gym.TimeSlot
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /gyms/{gymID}/slots [get]
// @Router       /admin/gyms/{gymID}/slots [get]
func (h *Handler) ListTimeSlots(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	slots, err := h.service.GetTimeSlots(c.Request.Context(), gymID)
	if err != nil {
		if errors.Is(err, ErrGymNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch time slots"})
		return
	}

	c.JSON(http.StatusOK, slots)
}
