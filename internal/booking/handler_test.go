package booking

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Ritesh99494/Cloud-GYM/internal/gym"
)

func setupBookingRouter(repo Repository, gymRepo gym.Repository, ent EntitlementChecker, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(newTestService(repo, gymRepo, ent))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set("user_id", userID)
		}
		c.Next()
	})
	router.POST("/bookings", handler.CreateBooking)
	router.POST("/bookings/:bookingID/cancel", handler.CancelBooking)
	router.POST("/bookings/:bookingID/checkin", handler.CheckIn)
	router.POST("/bookings/:bookingID/checkout", handler.CheckOut)
	router.GET("/gyms/:gymID/availability", handler.GetAvailability)
	router.GET("/bookings", handler.ListMyBookings)
	return router
}

func TestHandler_CreateBooking_SlotFull(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGym := new(MockGymRepository)
	mockEnt := new(MockEntitlements)

	mockGym.On("GetTimeSlotByID", mock.Anything, 3).
		Return(&gym.TimeSlot{ID: 3, GymID: 2, TotalSpots: 1, Price: 15}, nil)
	mockEnt.On("HasActive", mock.Anything, 1).Return(false, nil)
	mockRepo.On("CreateBooking", mock.Anything, 1, 3, mock.Anything, StatusPendingPayment, 15.0, mock.Anything).
		Return(nil, ErrSlotFull)

	router := setupBookingRouter(mockRepo, mockGym, mockEnt, 1)

	body := fmt.Sprintf(`{"time_slot_id":3,"booking_date":%q}`, futureDate())
	req, _ := http.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "full")
}

func TestHandler_CreateBooking_Confirmed(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGym := new(MockGymRepository)
	mockEnt := new(MockEntitlements)

	mockGym.On("GetTimeSlotByID", mock.Anything, 3).
		Return(&gym.TimeSlot{ID: 3, GymID: 2, TotalSpots: 10, Price: 15}, nil)
	mockEnt.On("HasActive", mock.Anything, 1).Return(true, nil)
	mockRepo.On("CreateBooking", mock.Anything, 1, 3, mock.Anything, StatusConfirmed, 0.0, mock.Anything).
		Return(&Booking{ID: 9, UserID: 1, Status: StatusConfirmed, QRCode: "qr"}, nil)

	router := setupBookingRouter(mockRepo, mockGym, mockEnt, 1)

	body := fmt.Sprintf(`{"time_slot_id":3,"booking_date":%q}`, futureDate())
	req, _ := http.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var booking Booking
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
	assert.Equal(t, StatusConfirmed, booking.Status)
	assert.NotEmpty(t, booking.QRCode)
}

func TestHandler_CheckIn_WrongQR(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("GetBookingByID", mock.Anything, 9).
		Return(&Booking{ID: 9, UserID: 1, Status: StatusConfirmed, QRCode: "real-token"}, nil)

	router := setupBookingRouter(mockRepo, new(MockGymRepository), new(MockEntitlements), 1)

	req, _ := http.NewRequest(http.MethodPost, "/bookings/9/checkin", strings.NewReader(`{"qr_code":"fake"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "QR")
}

func TestHandler_CancelBooking_Forbidden(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("GetBookingByID", mock.Anything, 9).
		Return(&Booking{ID: 9, UserID: 2, Status: StatusConfirmed}, nil)

	router := setupBookingRouter(mockRepo, new(MockGymRepository), new(MockEntitlements), 1)

	req, _ := http.NewRequest(http.MethodPost, "/bookings/9/cancel", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_GetAvailability_RequiresDate(t *testing.T) {
	router := setupBookingRouter(new(MockRepository), new(MockGymRepository), new(MockEntitlements), 1)

	req, _ := http.NewRequest(http.MethodGet, "/gyms/2/availability", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
