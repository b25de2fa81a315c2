package payment

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) (*Payment, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error)

	// GetByPaymentIDForUpdate locks the payment row inside the caller's
	// transaction; callback processing serializes on this lock.
	GetByPaymentIDForUpdate(ctx context.Context, tx *sqlx.Tx, paymentID string) (*Payment, error)

	// RecordCallbackTx stores gateway metadata and the raw payload on the
	// row; applied for every callback, replays included.
	RecordCallbackTx(ctx context.Context, tx *sqlx.Tx, id int, transactionID, paymentMethod, rawPayload string) error

	SetStatusTx(ctx context.Context, tx *sqlx.Tx, id int, status Status) error

	// MarkStalePendingFailed fails PENDING payments older than the cutoff.
	// The linked booking/subscription is left untouched.
	MarkStalePendingFailed(ctx context.Context, olderThan time.Duration) (int64, error)

	ListByUser(ctx context.Context, userID int) ([]Payment, error)
}
