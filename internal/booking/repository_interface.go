package booking

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// CreateBooking inserts a booking after re-checking capacity under a
	// lock on the time slot row. CONFIRMED and PENDING_PAYMENT bookings
	// both occupy a spot for admission purposes, so a later payment
	// confirmation can never push the confirmed count past totalSpots.
	CreateBooking(ctx context.Context, userID, timeSlotID int, date time.Time, status Status, price float64, qrCode string) (*Booking, error)

	GetBookingByID(ctx context.Context, id int) (*Booking, error)

	// CountConfirmedForSlotOnDate is the ground truth behind remaining
	// capacity. Never cached.
	CountConfirmedForSlotOnDate(ctx context.Context, timeSlotID int, date time.Time) (int, error)

	GetSlotAvailability(ctx context.Context, gymID int, date time.Time) ([]SlotAvailability, error)
	UserHasBookingForSlot(ctx context.Context, userID, timeSlotID int, date time.Time) (bool, error)

	// CancelBooking transitions PENDING_PAYMENT or CONFIRMED to CANCELLED.
	CancelBooking(ctx context.Context, id int) error

	// ConfirmTx transitions PENDING_PAYMENT to CONFIRMED inside a
	// caller-owned transaction, so confirmation commits atomically with the
	// payment row that triggered it.
	ConfirmTx(ctx context.Context, tx *sqlx.Tx, id int) (*Booking, error)

	// CheckIn stamps check_in_time on a CONFIRMED booking that has not been
	// checked in yet.
	CheckIn(ctx context.Context, id int) error

	// Complete transitions a checked-in CONFIRMED booking to COMPLETED and
	// stamps check_out_time.
	Complete(ctx context.Context, id int) error

	// CancelStalePending cancels PENDING_PAYMENT bookings older than the
	// cutoff, freeing the spots they held. Returns the number cancelled.
	CancelStalePending(ctx context.Context, olderThan time.Duration) (int64, error)

	GetUserBookings(ctx context.Context, userID int) ([]BookingWithDetails, error)
	GetBookingsByTimeSlot(ctx context.Context, timeSlotID int) ([]BookingWithDetails, error)
	GetBookingsByGym(ctx context.Context, gymID int) ([]BookingWithDetails, error)
	GetGymStats(ctx context.Context, gymID int) (*GymBookingStats, error)
}
