package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ritesh99494/Cloud-GYM/internal/email"
	"github.com/Ritesh99494/Cloud-GYM/internal/gym"
	"github.com/Ritesh99494/Cloud-GYM/internal/logger"
	"github.com/Ritesh99494/Cloud-GYM/internal/metrics"
	"github.com/Ritesh99494/Cloud-GYM/internal/user"
)

var (
	ErrInvalidDate       = errors.New("invalid booking date")
	ErrInvalidCredential = errors.New("invalid check-in credential")
	ErrNotOwner          = errors.New("booking belongs to another user")
)

const dateLayout = "2006-01-02"

// EntitlementChecker reports whether a user currently holds an active
// subscription. Satisfied by subscription.Repository.
type EntitlementChecker interface {
	HasActive(ctx context.Context, userID int) (bool, error)
}

type Service interface {
	// CreateBooking decides the outcome of a reservation request: SlotFull
	// rejections create no record, users with an active subscription get a
	// CONFIRMED booking at no charge, everyone else gets PENDING_PAYMENT at
	// the slot price.
	CreateBooking(ctx context.Context, userID int, req CreateBookingRequest) (*Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID int) error
	CheckIn(ctx context.Context, userID, bookingID int, qrCode string) (*Booking, error)
	CheckOut(ctx context.Context, userID, bookingID int) (*Booking, error)
	GetAvailableSlots(ctx context.Context, gymID int, date string) ([]SlotAvailability, error)
	RemainingCapacity(ctx context.Context, timeSlotID int, date string) (int, error)
	GetUserBookings(ctx context.Context, userID int) ([]BookingWithDetails, error)
	GetBookingsByTimeSlot(ctx context.Context, slotID int) ([]BookingWithDetails, error)
	GetBookingsByGym(ctx context.Context, gymID int) ([]BookingWithDetails, error)
	GetGymStats(ctx context.Context, gymID int) (*GymBookingStats, error)
	// CleanupStalePending cancels PENDING_PAYMENT bookings whose payment
	// never arrived, run periodically by the background sweeper.
	CleanupStalePending(ctx context.Context) (int64, error)
}

type service struct {
	bookingRepo    Repository
	gymRepo        gym.Repository
	entitlements   EntitlementChecker
	userRepo       user.Repository
	emailService   *email.Service
	pendingTimeout time.Duration
}

func NewService(
	bookingRepo Repository,
	gymRepo gym.Repository,
	entitlements EntitlementChecker,
	userRepo user.Repository,
	emailService *email.Service,
	pendingTimeout time.Duration,
) Service {
	return &service{
		bookingRepo:    bookingRepo,
		gymRepo:        gymRepo,
		entitlements:   entitlements,
		userRepo:       userRepo,
		emailService:   emailService,
		pendingTimeout: pendingTimeout,
	}
}

func parseBookingDate(raw string) (time.Time, error) {
	date, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if date.Before(today) {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

func (s *service) CreateBooking(ctx context.Context, userID int, req CreateBookingRequest) (*Booking, error) {
	date, err := parseBookingDate(req.BookingDate)
	if err != nil {
		return nil, err
	}

	slot, err := s.gymRepo.GetTimeSlotByID(ctx, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, gym.ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	hasActive, err := s.entitlements.HasActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := StatusPendingPayment
	price := slot.Price
	switch {
	case hasActive:
		// Subscription entitles free bookings.
		status = StatusConfirmed
		price = 0
	case slot.Price == 0:
		// Nothing to collect, so there is no payment to wait for.
		status = StatusConfirmed
	}

	booking, err := s.bookingRepo.CreateBooking(ctx, userID, slot.ID, date, status, price, uuid.NewString())
	if err != nil {
		return nil, err
	}

	logger.Infof("Booking %d created: user=%d slot=%d date=%s status=%s",
		booking.ID, userID, slot.ID, req.BookingDate, booking.Status)
	metrics.RecordBookingCreated(string(booking.Status))

	if booking.Status == StatusConfirmed {
		s.sendConfirmation(ctx, booking, slot)
	}
	return booking, nil
}

func (s *service) sendConfirmation(ctx context.Context, booking *Booking, slot *gym.TimeSlot) {
	if s.emailService == nil {
		return
	}

	u, err := s.userRepo.FindByID(ctx, booking.UserID)
	if err != nil {
		return
	}

	details := fmt.Sprintf("%s - %s on %s", slot.StartTime, slot.EndTime, booking.BookingDate.Format(dateLayout))
	s.emailService.SendBookingConfirmation(ctx, u.Email, u.Username, "Gym Slot", details, booking.BookingDate)
}

func (s *service) CancelBooking(ctx context.Context, userID, bookingID int) error {
	booking, err := s.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != userID {
		return ErrNotOwner
	}

	if err := s.bookingRepo.CancelBooking(ctx, bookingID); err != nil {
		return err
	}

	logger.Infof("Booking %d cancelled by user %d", bookingID, userID)
	metrics.RecordBookingCancelled()
	return nil
}

func (s *service) CheckIn(ctx context.Context, userID, bookingID int, qrCode string) (*Booking, error) {
	booking, err := s.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrNotOwner
	}
	if booking.QRCode != qrCode {
		return nil, ErrInvalidCredential
	}
	if booking.Status != StatusConfirmed {
		return nil, fmt.Errorf("%w: booking not confirmed", ErrInvalidTransition)
	}
	if booking.CheckInTime != nil {
		return nil, ErrAlreadyCheckedIn
	}

	if err := s.bookingRepo.CheckIn(ctx, bookingID); err != nil {
		return nil, err
	}

	metrics.RecordCheckIn()
	return s.bookingRepo.GetBookingByID(ctx, bookingID)
}

func (s *service) CheckOut(ctx context.Context, userID, bookingID int) (*Booking, error) {
	booking, err := s.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrNotOwner
	}
	if booking.Status != StatusConfirmed {
		return nil, fmt.Errorf("%w: booking not confirmed", ErrInvalidTransition)
	}
	if booking.CheckInTime == nil {
		return nil, ErrNotCheckedIn
	}

	if err := s.bookingRepo.Complete(ctx, bookingID); err != nil {
		return nil, err
	}

	logger.Infof("Booking %d completed by user %d", bookingID, userID)
	return s.bookingRepo.GetBookingByID(ctx, bookingID)
}

func (s *service) GetAvailableSlots(ctx context.Context, gymID int, rawDate string) ([]SlotAvailability, error) {
	date, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	if _, err := s.gymRepo.GetGymByID(ctx, gymID); err != nil {
		return nil, err
	}

	return s.bookingRepo.GetSlotAvailability(ctx, gymID, date)
}

// RemainingCapacity derives free spots for a slot on a date from the live
// count of CONFIRMED bookings, floored at zero.
func (s *service) RemainingCapacity(ctx context.Context, timeSlotID int, rawDate string) (int, error) {
	date, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return 0, ErrInvalidDate
	}

	slot, err := s.gymRepo.GetTimeSlotByID(ctx, timeSlotID)
	if err != nil {
		if errors.Is(err, gym.ErrSlotNotFound) {
			return 0, ErrSlotNotFound
		}
		return 0, err
	}

	confirmed, err := s.bookingRepo.CountConfirmedForSlotOnDate(ctx, timeSlotID, date)
	if err != nil {
		return 0, err
	}

	remaining := slot.TotalSpots - confirmed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID int) ([]BookingWithDetails, error) {
	return s.bookingRepo.GetUserBookings(ctx, userID)
}

func (s *service) GetBookingsByTimeSlot(ctx context.Context, slotID int) ([]BookingWithDetails, error) {
	return s.bookingRepo.GetBookingsByTimeSlot(ctx, slotID)
}

func (s *service) GetBookingsByGym(ctx context.Context, gymID int) ([]BookingWithDetails, error) {
	return s.bookingRepo.GetBookingsByGym(ctx, gymID)
}

func (s *service) GetGymStats(ctx context.Context, gymID int) (*GymBookingStats, error) {
	return s.bookingRepo.GetGymStats(ctx, gymID)
}

func (s *service) CleanupStalePending(ctx context.Context) (int64, error) {
	cancelled, err := s.bookingRepo.CancelStalePending(ctx, s.pendingTimeout)
	if err != nil {
		return 0, err
	}
	if cancelled > 0 {
		logger.Infof("Cancelled %d stale pending bookings", cancelled)
		metrics.RecordStaleBookingsCancelled(cancelled)
	}
	return cancelled, nil
}
