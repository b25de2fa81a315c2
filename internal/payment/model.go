package payment

import "time"

type Type string

const (
	TypeSubscription Type = "SUBSCRIPTION"
	TypeBooking      Type = "BOOKING"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSuccess  Status = "SUCCESS"
	StatusFailed   Status = "FAILED"
	StatusRefunded Status = "REFUNDED"
)

// IsTerminal reports whether a payment can still change state. Callbacks
// for terminal payments are replays and must not re-trigger side effects.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusRefunded
}

// Payment links an externally-visible payment token (PaymentID) to either a
// subscription or a booking, never both.
type Payment struct {
	ID              int       `db:"id" json:"id"`
	PaymentID       string    `db:"payment_id" json:"payment_id"`
	UserID          int       `db:"user_id" json:"user_id"`
	Type            Type      `db:"type" json:"type"`
	SubscriptionID  *int      `db:"subscription_id" json:"subscription_id,omitempty"`
	BookingID       *int      `db:"booking_id" json:"booking_id,omitempty"`
	Amount          float64   `db:"amount" json:"amount"`
	Currency        string    `db:"currency" json:"currency"`
	Status          Status    `db:"status" json:"status"`
	TransactionID   *string   `db:"transaction_id" json:"transaction_id,omitempty"`
	PaymentMethod   *string   `db:"payment_method" json:"payment_method,omitempty"`
	GatewayResponse *string   `db:"gateway_response" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type InitiateSubscriptionPaymentRequest struct {
	SubscriptionID int `json:"subscription_id" binding:"required"`
}

type InitiateBookingPaymentRequest struct {
	BookingID int `json:"booking_id" binding:"required"`
}

// GatewayResponse is what the simulated gateway hands back on initiation;
// the client follows RedirectURL to complete the payment.
type GatewayResponse struct {
	PaymentID   string  `json:"payment_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	RedirectURL string  `json:"redirect_url"`
	Status      Status  `json:"status"`
}

// CallbackRequest is the asynchronous gateway notification. Delivery is
// at-least-once, so processing must tolerate replays. Raw carries the
// gateway payload exactly as it arrived; it is stored on every delivery.
type CallbackRequest struct {
	PaymentID     string `json:"payment_id" binding:"required"`
	Status        string `json:"status" binding:"required"`
	TransactionID string `json:"transaction_id"`
	PaymentMethod string `json:"payment_method"`
	Raw           string `json:"-"`
}
