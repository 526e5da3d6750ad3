package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the denormalized entitlement mirror keyed by the auth user
// id. It is created lazily on first reconciliation and is never
// authoritative alone: the resolver always re-derives premium from
// subscriptions and payment_requests.
type UserProfile struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email              string    `gorm:"size:255" json:"email"`
	SubscriptionStatus string    `gorm:"size:20;default:'free'" json:"subscription_status"`
	SubscriptionID     string    `gorm:"size:255" json:"subscription_id"`
	StripeCustomerID   string    `gorm:"size:255;index" json:"stripe_customer_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
