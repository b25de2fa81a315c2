package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrPaymentNotFound = errors.New("payment not found")

const paymentColumns = "id, payment_id, user_id, type, subscription_id, booking_id, amount, currency, status, transaction_id, payment_method, gateway_response, created_at, updated_at"

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	var created Payment
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO payments (payment_id, user_id, type, subscription_id, booking_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING')
		RETURNING `+paymentColumns,
		p.PaymentID, p.UserID, p.Type, p.SubscriptionID, p.BookingID, p.Amount, p.Currency)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p,
		`SELECT `+paymentColumns+` FROM payments WHERE payment_id = $1`, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByPaymentIDForUpdate(ctx context.Context, tx *sqlx.Tx, paymentID string) (*Payment, error) {
	var p Payment
	err := tx.GetContext(ctx, &p,
		`SELECT `+paymentColumns+` FROM payments WHERE payment_id = $1 FOR UPDATE`, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) RecordCallbackTx(ctx context.Context, tx *sqlx.Tx, id int, transactionID, paymentMethod, rawPayload string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET transaction_id = $2, payment_method = $3, gateway_response = $4, updated_at = NOW()
		WHERE id = $1
	`, id, transactionID, paymentMethod, rawPayload)
	return err
}

func (r *repository) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id int, status Status) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)
	return err
}

func (r *repository) MarkStalePendingFailed(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = 'FAILED', updated_at = NOW()
		WHERE status = 'PENDING' AND created_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Payment, error) {
	var payments []Payment
	err := r.db.SelectContext(ctx, &payments, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return payments, nil
}
