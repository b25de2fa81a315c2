package subscription

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Ritesh99494/Cloud-GYM/internal/db"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrAlreadyActive        = errors.New("user already has an active or pending subscription")
	ErrInvalidTransition    = errors.New("invalid subscription state transition")
)

const subscriptionColumns = "id, user_id, plan_type, status, price, start_date, end_date, payment_id, payment_status, created_at, updated_at"

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, userID int, plan Plan) (*Subscription, error) {
	var sub Subscription
	err := db.Transact(ctx, r.db, func(tx *sqlx.Tx) error {
		// Lock the user row so two concurrent purchases serialize here.
		var id int
		err := tx.GetContext(ctx, &id, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		var exists bool
		err = tx.GetContext(ctx, &exists, `
			SELECT EXISTS (
				SELECT 1 FROM subscriptions
				WHERE user_id = $1 AND status IN ('ACTIVE', 'PENDING')
			)
		`, userID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyActive
		}

		// The subscription window is fixed at purchase; activation only
		// flips the status.
		now := time.Now()
		return tx.GetContext(ctx, &sub, `
			INSERT INTO subscriptions (user_id, plan_type, status, price, start_date, end_date)
			VALUES ($1, $2, 'PENDING', $3, $4, $5)
			RETURNING `+subscriptionColumns,
			userID, plan.Type, plan.Price, now, plan.EndDate(now))
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Subscription, error) {
	var sub Subscription
	err := r.db.GetContext(ctx, &sub,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) GetActiveByUser(ctx context.Context, userID int) (*Subscription, error) {
	var sub Subscription
	err := r.db.GetContext(ctx, &sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1 AND status = 'ACTIVE'
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) HasActive(ctx context.Context, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND status = 'ACTIVE' AND end_date > NOW()
		)
	`, userID)
	return exists, err
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Subscription, error) {
	var subs []Subscription
	err := r.db.SelectContext(ctx, &subs, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) Activate(ctx context.Context, id int, paymentID string) (*Subscription, error) {
	var sub *Subscription
	err := db.Transact(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		sub, err = r.ActivateTx(ctx, tx, id, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *repository) ActivateTx(ctx context.Context, tx *sqlx.Tx, id int, paymentID string) (*Subscription, error) {
	var sub Subscription
	err := tx.GetContext(ctx, &sub,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}

	// Replayed payment callbacks land here; activation already happened.
	if sub.Status == StatusActive {
		return &sub, nil
	}
	if sub.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	plan, ok := PlanFor(sub.PlanType)
	if !ok {
		return nil, ErrInvalidTransition
	}

	err = tx.GetContext(ctx, &sub, `
		UPDATE subscriptions
		SET status = 'ACTIVE', payment_id = $2, payment_status = 'SUCCESS', updated_at = NOW()
		WHERE id = $1
		RETURNING `+subscriptionColumns,
		id, paymentID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET subscription_status = 'ACTIVE', subscription_plan = $2
		WHERE id = $1
	`, sub.UserID, plan.Tier)
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *repository) CancelStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'CANCELLED', updated_at = NOW()
		WHERE status = 'PENDING' AND created_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) Cancel(ctx context.Context, id, userID int) error {
	return db.Transact(ctx, r.db, func(tx *sqlx.Tx) error {
		var sub Subscription
		err := tx.GetContext(ctx, &sub, `
			SELECT `+subscriptionColumns+`
			FROM subscriptions
			WHERE id = $1 AND user_id = $2
			FOR UPDATE
		`, id, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSubscriptionNotFound
		}
		if err != nil {
			return err
		}

		if sub.Status != StatusActive && sub.Status != StatusPending {
			return ErrInvalidTransition
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE subscriptions
			SET status = 'CANCELLED', updated_at = NOW()
			WHERE id = $1
		`, id)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET subscription_status = 'INACTIVE', subscription_plan = 'BASIC'
			WHERE id = $1
		`, userID)
		return err
	})
}

func (r *repository) ExpireSweep(ctx context.Context) (int64, error) {
	var userIDs []int
	err := db.Transact(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.SelectContext(ctx, &userIDs, `
			UPDATE subscriptions
			SET status = 'EXPIRED', updated_at = NOW()
			WHERE status = 'ACTIVE' AND end_date < NOW()
			RETURNING user_id
		`)
		if err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}

		query, args, err := sqlx.In(`
			UPDATE users
			SET subscription_status = 'EXPIRED'
			WHERE id IN (?)
		`, userIDs)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
		return err
	})
	if err != nil {
		return 0, err
	}
	return int64(len(userIDs)), nil
}
