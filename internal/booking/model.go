package booking

import "time"

type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusConfirmed      Status = "CONFIRMED"
	StatusCancelled      Status = "CANCELLED"
	StatusCompleted      Status = "COMPLETED"
)

// Booking is a reservation of one spot in a time slot on a concrete date.
// QRCode is the opaque check-in credential generated at creation; it never
// changes afterwards.
type Booking struct {
	ID           int        `db:"id" json:"id"`
	UserID       int        `db:"user_id" json:"user_id"`
	GymID        int        `db:"gym_id" json:"gym_id"`
	TimeSlotID   int        `db:"time_slot_id" json:"time_slot_id"`
	BookingDate  time.Time  `db:"booking_date" json:"booking_date"`
	Status       Status     `db:"status" json:"status"`
	QRCode       string     `db:"qr_code" json:"qr_code"`
	Price        float64    `db:"price" json:"price"`
	CheckInTime  *time.Time `db:"check_in_time" json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `db:"check_out_time" json:"check_out_time,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type BookingWithDetails struct {
	Booking
	SlotStart  string `db:"slot_start" json:"slot_start"`
	SlotEnd    string `db:"slot_end" json:"slot_end"`
	GymName    string `db:"gym_name" json:"gym_name"`
	GymAddress string `db:"gym_address" json:"gym_address"`
}

// SlotAvailability reports remaining capacity for a slot on a date.
// ConfirmedCount is always computed from booking rows at query time.
type SlotAvailability struct {
	TimeSlotID     int     `db:"time_slot_id" json:"time_slot_id"`
	GymID          int     `db:"gym_id" json:"gym_id"`
	StartTime      string  `db:"start_time" json:"start_time"`
	EndTime        string  `db:"end_time" json:"end_time"`
	TotalSpots     int     `db:"total_spots" json:"total_spots"`
	Price          float64 `db:"price" json:"price"`
	ConfirmedCount int     `db:"confirmed_count" json:"confirmed_count"`
	AvailableSpots int     `json:"available_spots"`
}

// GymBookingStats aggregates booking counts for one gym.
type GymBookingStats struct {
	GymID     int `db:"gym_id" json:"gym_id"`
	Confirmed int `db:"confirmed" json:"confirmed"`
	Pending   int `db:"pending" json:"pending"`
	Cancelled int `db:"cancelled" json:"cancelled"`
	Completed int `db:"completed" json:"completed"`
}

type CreateBookingRequest struct {
	TimeSlotID  int    `json:"time_slot_id" binding:"required"`
	BookingDate string `json:"booking_date" binding:"required"`
}

type CheckInRequest struct {
	QRCode string `json:"qr_code" binding:"required"`
}
