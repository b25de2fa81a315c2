package user

import "time"

type SubscriptionStatus string
type SubscriptionPlan string

const (
	SubscriptionInactive SubscriptionStatus = "INACTIVE"
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionExpired  SubscriptionStatus = "EXPIRED"

	PlanBasic   SubscriptionPlan = "BASIC"
	PlanPremium SubscriptionPlan = "PREMIUM"
	PlanElite   SubscriptionPlan = "ELITE"
)

// User carries a denormalized snapshot of the latest subscription in
// SubscriptionStatus/SubscriptionPlan. Only the subscription repository
// writes those two columns, always in the same transaction as the
// subscription row itself.
type User struct {
	ID                 int                `db:"id" json:"id"`
	Username           string             `db:"username" json:"username"`
	Email              string             `db:"email" json:"email"`
	PasswordHash       string             `db:"password_hash" json:"-"`
	ContactNumber      string             `db:"contact_number" json:"contact_number,omitempty"`
	Role               string             `db:"role" json:"role"`
	SubscriptionStatus SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	SubscriptionPlan   SubscriptionPlan   `db:"subscription_plan" json:"subscription_plan"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Username      string `json:"username" binding:"required,min=3,max=50"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	ContactNumber string `json:"contact_number"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
