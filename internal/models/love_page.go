package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LovePage is a user-built declaration page, published behind a unique slug.
type LovePage struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Slug          string         `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	RecipientName string         `gorm:"size:255;not null" json:"recipient_name"`
	SenderName    string         `gorm:"size:255" json:"sender_name"`
	Message       string         `gorm:"type:text" json:"message"`
	Images        datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"images"`
	MusicURL      string         `gorm:"type:text" json:"music_url"`
	ThemeConfig   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"theme_config"`
	Published     bool           `gorm:"default:false;index" json:"published"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
