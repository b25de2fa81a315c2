package subscription

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

type PlanType string

const (
	PlanOneMonth  PlanType = "ONE_MONTH"
	PlanSixMonths PlanType = "SIX_MONTHS"
	PlanOneYear   PlanType = "ONE_YEAR"
)

// Plan is the static catalog entry for a subscription type. Months drives
// the end-date computed at purchase, Tier is the value written into the
// user's subscription_plan projection.
type Plan struct {
	Type        PlanType `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Months      int      `json:"months"`
	Tier        string   `json:"tier"`
}

var plans = []Plan{
	{
		Type:        PlanOneMonth,
		Name:        "One Month",
		Description: "Full gym access for one month",
		Price:       29.99,
		Months:      1,
		Tier:        "BASIC",
	},
	{
		Type:        PlanSixMonths,
		Name:        "Six Months",
		Description: "Full gym access for six months",
		Price:       149.99,
		Months:      6,
		Tier:        "PREMIUM",
	},
	{
		Type:        PlanOneYear,
		Name:        "One Year",
		Description: "Full gym access for a year",
		Price:       249.99,
		Months:      12,
		Tier:        "ELITE",
	},
}

func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

func PlanFor(t PlanType) (Plan, bool) {
	for _, p := range plans {
		if p.Type == t {
			return p, true
		}
	}
	return Plan{}, false
}

// EndDate returns the expiry for a subscription of this plan created at
// the given instant.
func (p Plan) EndDate(createdAt time.Time) time.Time {
	return createdAt.AddDate(0, p.Months, 0)
}

type Subscription struct {
	ID            int        `db:"id" json:"id"`
	UserID        int        `db:"user_id" json:"user_id"`
	PlanType      PlanType   `db:"plan_type" json:"plan_type"`
	Status        Status     `db:"status" json:"status"`
	Price         float64    `db:"price" json:"price"`
	StartDate     *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate       *time.Time `db:"end_date" json:"end_date,omitempty"`
	PaymentID     *string    `db:"payment_id" json:"payment_id,omitempty"`
	PaymentStatus *string    `db:"payment_status" json:"payment_status,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateSubscriptionRequest struct {
	PlanType string `json:"plan_type" binding:"required"`
}
