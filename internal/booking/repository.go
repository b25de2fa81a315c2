package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Ritesh99494/Cloud-GYM/internal/db"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrSlotNotFound      = errors.New("time slot not found")
	ErrSlotFull          = errors.New("time slot is full")
	ErrDuplicateBooking  = errors.New("user already has a booking for this slot and date")
	ErrInvalidTransition = errors.New("invalid booking state transition")
	ErrAlreadyCheckedIn  = errors.New("booking already checked in")
	ErrNotCheckedIn      = errors.New("booking has not been checked in")
)

const bookingColumns = "id, user_id, gym_id, time_slot_id, booking_date, status, qr_code, price, check_in_time, check_out_time, created_at, updated_at"

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) CreateBooking(ctx context.Context, userID, timeSlotID int, date time.Time, status Status, price float64, qrCode string) (*Booking, error) {
	var booking Booking
	err := db.Transact(ctx, r.db, func(tx *sqlx.Tx) error {
		// Serialize concurrent bookings against the same slot.
		var slot struct {
			GymID      int `db:"gym_id"`
			TotalSpots int `db:"total_spots"`
		}
		err := tx.GetContext(ctx, &slot,
			`SELECT gym_id, total_spots FROM time_slots WHERE id = $1 FOR UPDATE`, timeSlotID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSlotNotFound
		}
		if err != nil {
			return err
		}

		var exists bool
		err = tx.GetContext(ctx, &exists, `
			SELECT EXISTS (
				SELECT 1 FROM bookings
				WHERE user_id = $1 AND time_slot_id = $2 AND booking_date = $3
				  AND status IN ('CONFIRMED', 'PENDING_PAYMENT')
			)
		`, userID, timeSlotID, date)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateBooking
		}

		var occupied int
		err = tx.GetContext(ctx, &occupied, `
			SELECT COUNT(*) FROM bookings
			WHERE time_slot_id = $1 AND booking_date = $2
			  AND status IN ('CONFIRMED', 'PENDING_PAYMENT')
		`, timeSlotID, date)
		if err != nil {
			return err
		}
		if occupied >= slot.TotalSpots {
			return ErrSlotFull
		}

		return tx.GetContext(ctx, &booking, `
			INSERT INTO bookings (user_id, gym_id, time_slot_id, booking_date, status, qr_code, price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+bookingColumns,
			userID, slot.GymID, timeSlotID, date, status, qrCode, price)
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetBookingByID(ctx context.Context, id int) (*Booking, error) {
	var booking Booking
	err := r.db.GetContext(ctx, &booking,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) CountConfirmedForSlotOnDate(ctx context.Context, timeSlotID int, date time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM bookings
		WHERE time_slot_id = $1 AND booking_date = $2 AND status = 'CONFIRMED'
	`, timeSlotID, date)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) GetSlotAvailability(ctx context.Context, gymID int, date time.Time) ([]SlotAvailability, error) {
	query := `
		SELECT
			ts.id AS time_slot_id,
			ts.gym_id,
			ts.start_time,
			ts.end_time,
			ts.total_spots,
			ts.price,
			COUNT(b.id) FILTER (WHERE b.status = 'CONFIRMED') AS confirmed_count
		FROM time_slots ts
		LEFT JOIN bookings b
			ON b.time_slot_id = ts.id AND b.booking_date = $2
		WHERE ts.gym_id = $1
		GROUP BY ts.id, ts.gym_id, ts.start_time, ts.end_time, ts.total_spots, ts.price
		ORDER BY ts.start_time ASC
	`

	var slots []SlotAvailability
	if err := r.db.SelectContext(ctx, &slots, query, gymID, date); err != nil {
		return nil, err
	}

	for i := range slots {
		remaining := slots[i].TotalSpots - slots[i].ConfirmedCount
		if remaining < 0 {
			remaining = 0
		}
		slots[i].AvailableSpots = remaining
	}
	return slots, nil
}

func (r *repository) UserHasBookingForSlot(ctx context.Context, userID, timeSlotID int, date time.Time) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND time_slot_id = $2 AND booking_date = $3
			  AND status IN ('CONFIRMED', 'PENDING_PAYMENT')
		)
	`, userID, timeSlotID, date)
	return exists, err
}

func (r *repository) CancelBooking(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'CANCELLED', updated_at = NOW()
		WHERE id = $1 AND status IN ('PENDING_PAYMENT', 'CONFIRMED')
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *repository) ConfirmTx(ctx context.Context, tx *sqlx.Tx, id int) (*Booking, error) {
	var booking Booking
	err := tx.GetContext(ctx, &booking, `
		UPDATE bookings
		SET status = 'CONFIRMED', updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING_PAYMENT'
		RETURNING `+bookingColumns, id)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the booking does not exist or it already left
		// PENDING_PAYMENT; look again to report which.
		var current Booking
		lookupErr := tx.GetContext(ctx, &current,
			`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
		if errors.Is(lookupErr, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		if lookupErr != nil {
			return nil, lookupErr
		}
		if current.Status == StatusConfirmed {
			return &current, nil
		}
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) CheckIn(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET check_in_time = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'CONFIRMED' AND check_in_time IS NULL
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAlreadyCheckedIn
	}
	return nil
}

func (r *repository) Complete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'COMPLETED', check_out_time = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'CONFIRMED' AND check_in_time IS NOT NULL
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotCheckedIn
	}
	return nil
}

func (r *repository) CancelStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'CANCELLED', updated_at = NOW()
		WHERE status = 'PENDING_PAYMENT' AND created_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const bookingDetailsQuery = `
	SELECT
		b.id, b.user_id, b.gym_id, b.time_slot_id, b.booking_date, b.status,
		b.qr_code, b.price, b.check_in_time, b.check_out_time, b.created_at, b.updated_at,
		ts.start_time AS slot_start,
		ts.end_time AS slot_end,
		g.name AS gym_name,
		g.address AS gym_address
	FROM bookings b
	JOIN time_slots ts ON b.time_slot_id = ts.id
	JOIN gyms g ON b.gym_id = g.id
`

func (r *repository) GetUserBookings(ctx context.Context, userID int) ([]BookingWithDetails, error) {
	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings,
		bookingDetailsQuery+` WHERE b.user_id = $1 ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) GetBookingsByTimeSlot(ctx context.Context, timeSlotID int) ([]BookingWithDetails, error) {
	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings,
		bookingDetailsQuery+` WHERE b.time_slot_id = $1 ORDER BY b.booking_date DESC, b.created_at DESC`, timeSlotID)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) GetBookingsByGym(ctx context.Context, gymID int) ([]BookingWithDetails, error) {
	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings,
		bookingDetailsQuery+` WHERE b.gym_id = $1 ORDER BY b.booking_date DESC, b.created_at DESC`, gymID)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) GetGymStats(ctx context.Context, gymID int) (*GymBookingStats, error) {
	var stats GymBookingStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			$1::int AS gym_id,
			COUNT(*) FILTER (WHERE status = 'CONFIRMED') AS confirmed,
			COUNT(*) FILTER (WHERE status = 'PENDING_PAYMENT') AS pending,
			COUNT(*) FILTER (WHERE status = 'CANCELLED') AS cancelled,
			COUNT(*) FILTER (WHERE status = 'COMPLETED') AS completed
		FROM bookings
		WHERE gym_id = $1
	`, gymID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
