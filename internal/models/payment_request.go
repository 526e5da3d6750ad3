package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment request states. Transitions are forward-only:
// pending -> approved | rejected, approved -> revoked.
const (
	PaymentPending  = "pending"
	PaymentApproved = "approved"
	PaymentRejected = "rejected"
	PaymentRevoked  = "revoked"
)

// PaymentWindow is how long an approved manual payment grants premium.
const PaymentWindow = 30 * 24 * time.Hour

// PaymentRequest is a manual Easypaisa payment claim. Users submit the
// transaction id; an admin verifies it out of band and approves or rejects.
type PaymentRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TrxID         string    `gorm:"size:100;not null" json:"trx_id"`
	Amount        int64     `gorm:"not null" json:"amount"`
	PaymentMethod string    `gorm:"size:50;default:'easypaisa_manual'" json:"payment_method"`
	Status        string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WithinWindow reports whether the request still grants fallback premium.
func (p *PaymentRequest) WithinWindow(now time.Time) bool {
	return p.Status == PaymentApproved && p.CreatedAt.Add(PaymentWindow).After(now)
}
