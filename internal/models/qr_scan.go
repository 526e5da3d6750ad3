package models

import (
	"time"

	"github.com/google/uuid"
)

// QRScan records a visit to a published page that arrived through its QR
// code. Feeds the admin analytics counters.
type QRScan struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PageID    uuid.UUID `gorm:"type:uuid;not null;index" json:"page_id"`
	Source    string    `gorm:"size:50;default:'qr'" json:"source"`
	IP        string    `gorm:"size:64" json:"-"`
	UserAgent string    `gorm:"size:512" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
