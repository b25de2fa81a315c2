package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ritesh99494/Cloud-GYM/internal/booking"
	"github.com/Ritesh99494/Cloud-GYM/internal/db"
	"github.com/Ritesh99494/Cloud-GYM/internal/email"
	"github.com/Ritesh99494/Cloud-GYM/internal/logger"
	"github.com/Ritesh99494/Cloud-GYM/internal/metrics"
	"github.com/Ritesh99494/Cloud-GYM/internal/subscription"
	"github.com/Ritesh99494/Cloud-GYM/internal/user"
)

var (
	ErrNotOwner   = errors.New("payment target belongs to another user")
	ErrNotPayable = errors.New("entity is not awaiting payment")
)

type Config struct {
	Currency        string
	RedirectBaseURL string
	PendingTimeout  time.Duration
}

type Service interface {
	// InitiateSubscriptionPayment creates a PENDING payment for a PENDING
	// subscription and returns the simulated gateway handoff.
	InitiateSubscriptionPayment(ctx context.Context, userID, subscriptionID int) (*GatewayResponse, error)
	InitiateBookingPayment(ctx context.Context, userID, bookingID int) (*GatewayResponse, error)

	// ProcessCallback reconciles an asynchronous gateway callback. The
	// payment row, its status change and the downstream activation or
	// confirmation commit in one transaction; replayed callbacks update
	// metadata only.
	ProcessCallback(ctx context.Context, req CallbackRequest) (*Payment, error)

	// CleanupPendingPayments fails PENDING payments whose callback never
	// arrived, run periodically by the background sweeper.
	CleanupPendingPayments(ctx context.Context) (int64, error)

	ListMyPayments(ctx context.Context, userID int) ([]Payment, error)
	GetPayment(ctx context.Context, userID int, paymentID string) (*Payment, error)
}

type service struct {
	db               *sqlx.DB
	repo             Repository
	subscriptionRepo subscription.Repository
	bookingRepo      booking.Repository
	userRepo         user.Repository
	emailService     *email.Service
	cfg              Config
}

func NewService(
	database *sqlx.DB,
	repo Repository,
	subscriptionRepo subscription.Repository,
	bookingRepo booking.Repository,
	userRepo user.Repository,
	emailService *email.Service,
	cfg Config,
) Service {
	return &service{
		db:               database,
		repo:             repo,
		subscriptionRepo: subscriptionRepo,
		bookingRepo:      bookingRepo,
		userRepo:         userRepo,
		emailService:     emailService,
		cfg:              cfg,
	}
}

// newPaymentID builds the externally-visible payment token, e.g.
// PAY_1A2B3C4D5E6F7A8B.
func newPaymentID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "PAY_" + raw[:16]
}

func (s *service) InitiateSubscriptionPayment(ctx context.Context, userID, subscriptionID int) (*GatewayResponse, error) {
	sub, err := s.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, ErrNotOwner
	}
	if sub.Status != subscription.StatusPending {
		return nil, ErrNotPayable
	}

	subID := sub.ID
	created, err := s.repo.Create(ctx, &Payment{
		PaymentID:      newPaymentID(),
		UserID:         userID,
		Type:           TypeSubscription,
		SubscriptionID: &subID,
		Amount:         sub.Price,
		Currency:       s.cfg.Currency,
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("Payment %s initiated: subscription=%d user=%d amount=%.2f",
		created.PaymentID, subscriptionID, userID, created.Amount)
	metrics.RecordPaymentInitiated(string(TypeSubscription))

	return s.gatewayHandoff(created), nil
}

func (s *service) InitiateBookingPayment(ctx context.Context, userID, bookingID int) (*GatewayResponse, error) {
	b, err := s.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrNotOwner
	}
	if b.Status != booking.StatusPendingPayment {
		return nil, ErrNotPayable
	}

	bID := b.ID
	created, err := s.repo.Create(ctx, &Payment{
		PaymentID: newPaymentID(),
		UserID:    userID,
		Type:      TypeBooking,
		BookingID: &bID,
		Amount:    b.Price,
		Currency:  s.cfg.Currency,
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("Payment %s initiated: booking=%d user=%d amount=%.2f",
		created.PaymentID, bookingID, userID, created.Amount)
	metrics.RecordPaymentInitiated(string(TypeBooking))

	return s.gatewayHandoff(created), nil
}

func (s *service) gatewayHandoff(p *Payment) *GatewayResponse {
	return &GatewayResponse{
		PaymentID:   p.PaymentID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		RedirectURL: fmt.Sprintf("%s/pay/%s", s.cfg.RedirectBaseURL, p.PaymentID),
		Status:      p.Status,
	}
}

func (s *service) ProcessCallback(ctx context.Context, req CallbackRequest) (*Payment, error) {
	var result *Payment
	var activated *subscription.Subscription
	var confirmed *booking.Booking
	duplicate := false

	err := db.Transact(ctx, s.db, func(tx *sqlx.Tx) error {
		p, err := s.repo.GetByPaymentIDForUpdate(ctx, tx, req.PaymentID)
		if err != nil {
			return err
		}

		// Gateway metadata and the raw payload are recorded for every
		// delivery, replays too.
		if err := s.repo.RecordCallbackTx(ctx, tx, p.ID, req.TransactionID, req.PaymentMethod, req.Raw); err != nil {
			return err
		}

		if p.Status.IsTerminal() {
			duplicate = true
			result = p
			return nil
		}

		if req.Status != string(StatusSuccess) {
			if err := s.repo.SetStatusTx(ctx, tx, p.ID, StatusFailed); err != nil {
				return err
			}
			p.Status = StatusFailed
			result = p
			return nil
		}

		if err := s.repo.SetStatusTx(ctx, tx, p.ID, StatusSuccess); err != nil {
			return err
		}

		switch p.Type {
		case TypeSubscription:
			activated, err = s.subscriptionRepo.ActivateTx(ctx, tx, *p.SubscriptionID, p.PaymentID)
		case TypeBooking:
			confirmed, err = s.bookingRepo.ConfirmTx(ctx, tx, *p.BookingID)
		}
		if err != nil {
			return err
		}

		p.Status = StatusSuccess
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if duplicate {
		logger.Infof("Duplicate payment callback ignored: %s status=%s", req.PaymentID, result.Status)
		metrics.RecordDuplicateCallback()
		return result, nil
	}

	logger.Infof("Payment %s reconciled: status=%s", result.PaymentID, result.Status)
	metrics.RecordPaymentProcessed(string(result.Status))

	if activated != nil {
		metrics.RecordSubscriptionActivated(string(activated.PlanType))
		s.notifySubscriptionActivated(ctx, activated)
	}
	if confirmed != nil {
		metrics.RecordBookingConfirmed()
		s.notifyBookingConfirmed(ctx, confirmed)
	}

	return result, nil
}

func (s *service) notifySubscriptionActivated(ctx context.Context, sub *subscription.Subscription) {
	if s.emailService == nil {
		return
	}
	u, err := s.userRepo.FindByID(ctx, sub.UserID)
	if err != nil {
		return
	}
	s.emailService.SendSubscriptionActivated(ctx, u.Email, u.Username, string(sub.PlanType), sub.EndDate)
}

func (s *service) notifyBookingConfirmed(ctx context.Context, b *booking.Booking) {
	if s.emailService == nil {
		return
	}
	u, err := s.userRepo.FindByID(ctx, b.UserID)
	if err != nil {
		return
	}
	details := fmt.Sprintf("Booking #%d on %s", b.ID, b.BookingDate.Format("2006-01-02"))
	s.emailService.SendBookingConfirmation(ctx, u.Email, u.Username, "Gym Slot", details, b.BookingDate)
}

func (s *service) CleanupPendingPayments(ctx context.Context) (int64, error) {
	failed, err := s.repo.MarkStalePendingFailed(ctx, s.cfg.PendingTimeout)
	if err != nil {
		return 0, err
	}
	if failed > 0 {
		logger.Infof("Marked %d stale pending payments as failed", failed)
		metrics.RecordStalePaymentsFailed(failed)
	}
	return failed, nil
}

func (s *service) ListMyPayments(ctx context.Context, userID int) ([]Payment, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetPayment(ctx context.Context, userID int, paymentID string) (*Payment, error) {
	p, err := s.repo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrNotOwner
	}
	return p, nil
}
