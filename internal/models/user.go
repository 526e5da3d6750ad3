package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Metadata keys set by the subscription flows.
const (
	MetaShowPremiumWelcome = "show_premium_welcome"
	MetaStripeCustomerID   = "stripe_customer_id"
)

// User is the auth identity record. Entitlement state lives in
// UserProfile/Subscription; this row only carries credentials and
// free-form metadata flags.
type User struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string            `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password  string            `gorm:"not null" json:"-"`
	FullName  string            `gorm:"size:255" json:"full_name"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`
}

// StripeCustomerID returns the customer id stored in metadata, if any.
func (u *User) StripeCustomerID() string {
	if u.Metadata == nil {
		return ""
	}
	if v, ok := u.Metadata[MetaStripeCustomerID].(string); ok {
		return v
	}
	return ""
}
