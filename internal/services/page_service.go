package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/moizkiani/loveylink-backend/internal/dto"
	"github.com/moizkiani/loveylink-backend/internal/models"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound    = errors.New("page not found")
	ErrNotPageOwner    = errors.New("you can only manage your own pages")
	ErrPremiumRequired = errors.New("premium subscription required")
	ErrTitleRequired   = errors.New("title and recipient name are required")
)

var spotifyTrackRe = regexp.MustCompile(`track/([a-zA-Z0-9]+)`)
var slugStripRe = regexp.MustCompile(`[^a-z0-9-]+`)

const qrImageSize = 512

// PageService owns love page CRUD, the public slug lookup, QR rendering
// and scan tracking. Publishing and QR codes are premium features.
type PageService struct {
	db      *gorm.DB
	subs    *SubscriptionService
	siteURL string
}

func NewPageService(db *gorm.DB, subs *SubscriptionService, siteURL string) *PageService {
	return &PageService{db: db, subs: subs, siteURL: strings.TrimRight(siteURL, "/")}
}

func (s *PageService) Create(userID uuid.UUID, req *dto.CreatePageRequest) (*models.LovePage, error) {
	if req.Title == "" || req.RecipientName == "" {
		return nil, ErrTitleRequired
	}

	if req.Published && !s.subs.ResolveAndExpire(userID).Premium {
		return nil, ErrPremiumRequired
	}

	images := datatypes.JSON([]byte("[]"))
	if len(req.Images) > 0 {
		if b, err := json.Marshal(req.Images); err == nil {
			images = datatypes.JSON(b)
		}
	}

	theme := datatypes.JSON([]byte("{}"))
	if len(req.ThemeConfig) > 0 {
		if b, err := json.Marshal(req.ThemeConfig); err == nil {
			theme = datatypes.JSON(b)
		}
	}

	page := models.LovePage{
		ID:            uuid.New(),
		UserID:        userID,
		Slug:          makeSlug(req.RecipientName),
		Title:         req.Title,
		RecipientName: req.RecipientName,
		SenderName:    req.SenderName,
		Message:       req.Message,
		Images:        images,
		MusicURL:      NormalizeMusicURL(req.MusicURL),
		ThemeConfig:   theme,
		Published:     req.Published,
	}

	if err := s.db.Create(&page).Error; err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &page, nil
}

// Publish flips an existing draft live, gated on premium.
func (s *PageService) Publish(userID, pageID uuid.UUID) (*models.LovePage, error) {
	page, err := s.Get(userID, pageID)
	if err != nil {
		return nil, err
	}
	if !s.subs.ResolveAndExpire(userID).Premium {
		return nil, ErrPremiumRequired
	}
	if err := s.db.Model(page).Update("published", true).Error; err != nil {
		return nil, fmt.Errorf("failed to publish page: %w", err)
	}
	page.Published = true
	return page, nil
}

func (s *PageService) List(userID uuid.UUID) ([]models.LovePage, int64, error) {
	var pages []models.LovePage
	var total int64

	s.db.Model(&models.LovePage{}).Where("user_id = ?", userID).Count(&total)
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&pages).Error
	return pages, total, err
}

func (s *PageService) Get(userID, pageID uuid.UUID) (*models.LovePage, error) {
	var page models.LovePage
	if err := s.db.First(&page, "id = ?", pageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	if page.UserID != userID {
		return nil, ErrNotPageOwner
	}
	return &page, nil
}

// Delete is owner-scoped: the where clause carries user_id so one user
// cannot delete another's page by id.
func (s *PageService) Delete(userID, pageID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", pageID, userID).Delete(&models.LovePage{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete page: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPageNotFound
	}
	return nil
}

// GetBySlug serves the public page route. Unpublished pages are invisible.
func (s *PageService) GetBySlug(slug string) (*models.LovePage, error) {
	var page models.LovePage
	if err := s.db.First(&page, "slug = ? AND published = ?", slug, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// RecordScan tracks a QR-sourced visit. Best effort.
func (s *PageService) RecordScan(pageID uuid.UUID, source, ip, userAgent string) error {
	if source == "" {
		source = "qr"
	}
	scan := models.QRScan{
		ID:        uuid.New(),
		PageID:    pageID,
		Source:    source,
		IP:        ip,
		UserAgent: userAgent,
	}
	return s.db.Create(&scan).Error
}

// QRCode renders the page's public URL as a PNG. Owner and premium gated.
func (s *PageService) QRCode(userID, pageID uuid.UUID) ([]byte, error) {
	page, err := s.Get(userID, pageID)
	if err != nil {
		return nil, err
	}
	if !s.subs.ResolveAndExpire(userID).Premium {
		return nil, ErrPremiumRequired
	}

	png, err := qrcode.Encode(s.PublicURL(page), qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

func (s *PageService) PublicURL(page *models.LovePage) string {
	return s.siteURL + "/lp/" + page.Slug
}

// NormalizeMusicURL rewrites Spotify track links to their embeddable form.
// Anything else passes through untouched.
func NormalizeMusicURL(raw string) string {
	if raw == "" || strings.Contains(raw, "/embed/") {
		return raw
	}
	if m := spotifyTrackRe.FindStringSubmatch(raw); m != nil {
		return "https://open.spotify.com/embed/track/" + m[1]
	}
	return raw
}

// makeSlug builds "recipient-name-x7f3a": lowercased, non-url characters
// stripped, with a short random suffix for uniqueness.
func makeSlug(recipient string) string {
	base := strings.ToLower(strings.TrimSpace(recipient))
	base = strings.ReplaceAll(base, " ", "-")
	base = slugStripRe.ReplaceAllString(base, "")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "love-page"
	}
	return base + "-" + uuid.New().String()[:5]
}
