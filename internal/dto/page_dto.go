package dto

import (
	"time"

	"gorm.io/datatypes"
)

type CreatePageRequest struct {
	Title         string         `json:"title"`
	RecipientName string         `json:"recipient_name"`
	SenderName    string         `json:"sender_name"`
	Message       string         `json:"message"`
	Images        []string       `json:"images"`
	MusicURL      string         `json:"music_url"`
	ThemeConfig   map[string]any `json:"theme_config"`
	Published     bool           `json:"published"`
}

type PageResponse struct {
	ID            string         `json:"id"`
	Slug          string         `json:"slug"`
	Title         string         `json:"title"`
	RecipientName string         `json:"recipient_name"`
	SenderName    string         `json:"sender_name"`
	Message       string         `json:"message"`
	Images        datatypes.JSON `json:"images"`
	MusicURL      string         `json:"music_url"`
	ThemeConfig   datatypes.JSON `json:"theme_config"`
	Published     bool           `json:"published"`
	PublicURL     string         `json:"public_url,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

type PagesListResponse struct {
	Pages []PageResponse `json:"pages"`
	Total int64          `json:"total"`
}
