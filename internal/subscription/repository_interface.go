package subscription

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Create inserts a PENDING subscription after verifying, under a lock on
	// the user row, that the user has no ACTIVE or PENDING subscription.
	Create(ctx context.Context, userID int, plan Plan) (*Subscription, error)

	GetByID(ctx context.Context, id int) (*Subscription, error)
	GetActiveByUser(ctx context.Context, userID int) (*Subscription, error)
	HasActive(ctx context.Context, userID int) (bool, error)
	ListByUser(ctx context.Context, userID int) ([]Subscription, error)

	// Activate transitions a PENDING subscription to ACTIVE, stamps its
	// start/end dates and the payment reference, and updates the user's
	// subscription projection in the same transaction. Activating an
	// already ACTIVE subscription is a no-op that returns the current row.
	Activate(ctx context.Context, id int, paymentID string) (*Subscription, error)

	// ActivateTx is Activate running inside a caller-owned transaction, used
	// by payment processing so activation commits atomically with the
	// payment row.
	ActivateTx(ctx context.Context, tx *sqlx.Tx, id int, paymentID string) (*Subscription, error)

	// Cancel transitions an ACTIVE or PENDING subscription owned by userID
	// to CANCELLED and clears the user's subscription projection.
	Cancel(ctx context.Context, id, userID int) error

	// ExpireSweep marks every ACTIVE subscription past its end date as
	// EXPIRED and downgrades the affected users' projections. Returns the
	// number of subscriptions expired.
	ExpireSweep(ctx context.Context) (int64, error)

	// CancelStalePending cancels PENDING subscriptions older than the
	// cutoff, releasing the single-active guard for users who abandoned
	// an unpaid purchase. The user projection was never set for PENDING
	// rows, so only the subscription row changes.
	CancelStalePending(ctx context.Context, olderThan time.Duration) (int64, error)
}
