package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses. The profile mirror additionally uses StatusFree.
const (
	StatusFree     = "free"
	StatusActive   = "active"
	StatusExpired  = "expired"
	StatusCanceled = "canceled"
)

// Subscription is the source of truth for premium entitlement. One row per
// user is intended but not constrained; StripeSubscriptionID is unique and
// set only on first insert (manual approvals write a synthetic
// "manual_easypaisa_<payment id>" value).
type Subscription struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	StripeSubscriptionID string    `gorm:"size:255;uniqueIndex" json:"stripe_subscription_id"`
	PlanID               string    `gorm:"size:100" json:"plan_id"`
	Status               string    `gorm:"not null;default:'active';size:20;index" json:"status"`
	CurrentPeriodEnd     time.Time `json:"current_period_end"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Live reports whether the subscription grants premium right now.
func (s *Subscription) Live(now time.Time) bool {
	return s.Status == StatusActive && s.CurrentPeriodEnd.After(now)
}
