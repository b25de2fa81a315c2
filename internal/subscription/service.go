package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/Ritesh99494/Cloud-GYM/internal/logger"
	"github.com/Ritesh99494/Cloud-GYM/internal/metrics"
)

var ErrUnknownPlan = errors.New("unknown subscription plan")

type Service interface {
	Plans() []Plan
	// Purchase creates a PENDING subscription for the user; it becomes
	// ACTIVE only once its payment callback succeeds.
	Purchase(ctx context.Context, userID int, planType string) (*Subscription, error)
	GetActive(ctx context.Context, userID int) (*Subscription, error)
	List(ctx context.Context, userID int) ([]Subscription, error)
	Cancel(ctx context.Context, id, userID int) error
	// ExpireSweep is run periodically by the background sweeper.
	ExpireSweep(ctx context.Context) (int64, error)
	// CleanupStalePending cancels unpaid PENDING subscriptions so the
	// single-active guard does not block the user forever.
	CleanupStalePending(ctx context.Context) (int64, error)
}

type service struct {
	repo           Repository
	pendingTimeout time.Duration
}

func NewService(repo Repository, pendingTimeout time.Duration) Service {
	return &service{repo: repo, pendingTimeout: pendingTimeout}
}

func (s *service) Plans() []Plan {
	return Plans()
}

func (s *service) Purchase(ctx context.Context, userID int, planType string) (*Subscription, error) {
	plan, ok := PlanFor(PlanType(planType))
	if !ok {
		return nil, ErrUnknownPlan
	}

	sub, err := s.repo.Create(ctx, userID, plan)
	if err != nil {
		return nil, err
	}

	logger.Infof("Subscription %d created: plan=%s user=%d", sub.ID, plan.Type, userID)
	metrics.RecordSubscriptionCreated(string(plan.Type))
	return sub, nil
}

func (s *service) GetActive(ctx context.Context, userID int) (*Subscription, error) {
	return s.repo.GetActiveByUser(ctx, userID)
}

func (s *service) List(ctx context.Context, userID int) ([]Subscription, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Cancel(ctx context.Context, id, userID int) error {
	if err := s.repo.Cancel(ctx, id, userID); err != nil {
		return err
	}
	logger.Infof("Subscription %d cancelled by user %d", id, userID)
	metrics.RecordSubscriptionCancelled()
	return nil
}

func (s *service) ExpireSweep(ctx context.Context) (int64, error) {
	expired, err := s.repo.ExpireSweep(ctx)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		logger.Infof("Expired %d subscriptions", expired)
		metrics.RecordSubscriptionsExpired(expired)
	}
	return expired, nil
}

func (s *service) CleanupStalePending(ctx context.Context) (int64, error) {
	cancelled, err := s.repo.CancelStalePending(ctx, s.pendingTimeout)
	if err != nil {
		return 0, err
	}
	if cancelled > 0 {
		logger.Infof("Cancelled %d stale pending subscriptions", cancelled)
		metrics.RecordStaleSubscriptionsCancelled(cancelled)
	}
	return cancelled, nil
}
