package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/moizkiani/loveylink-backend/internal/dto"
	"github.com/moizkiani/loveylink-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminService backs the admin panel: aggregate stats, the user list, and
// the seed path that bootstraps the owner account.
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) Stats() (*dto.AdminStatsResponse, error) {
	var stats dto.AdminStatsResponse

	if err := s.db.Model(&models.User{}).Count(&stats.UserCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := s.db.Model(&models.LovePage{}).Count(&stats.PageCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	if err := s.db.Model(&models.Subscription{}).
		Where("status = ?", models.StatusActive).Count(&stats.ActiveSubs).Error; err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	if err := s.db.Model(&models.QRScan{}).Count(&stats.QRScanCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count scans: %w", err)
	}
	return &stats, nil
}

// ListUsers returns the most recent users joined with their profile mirror.
func (s *AdminService) ListUsers(limit int) ([]dto.AdminUserResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var users []models.User
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	var profiles []models.UserProfile
	if len(ids) > 0 {
		if err := s.db.Where("id IN ?", ids).Find(&profiles).Error; err != nil {
			slog.Error("profile lookup for user list failed", "error", err)
		}
	}
	statusByID := make(map[uuid.UUID]string, len(profiles))
	for _, p := range profiles {
		statusByID[p.ID] = p.SubscriptionStatus
	}

	out := make([]dto.AdminUserResponse, 0, len(users))
	for _, u := range users {
		status, ok := statusByID[u.ID]
		if !ok {
			status = models.StatusFree
		}
		out = append(out, dto.AdminUserResponse{
			ID:                 u.ID.String(),
			Email:              u.Email,
			FullName:           u.FullName,
			SubscriptionStatus: status,
			CreatedAt:          u.CreatedAt,
		})
	}
	return out, nil
}

// Seed creates or updates the owner account and grants super_admin.
func (s *AdminService) Seed(email, password string) error {
	if email == "" || password == "" {
		return errors.New("seed email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var user models.User
	err = s.db.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			ID:       uuid.New(),
			Email:    email,
			Password: string(hash),
			FullName: "Owner",
			Metadata: map[string]interface{}{},
		}
		if cerr := s.db.Create(&user).Error; cerr != nil {
			return fmt.Errorf("failed to create owner user: %w", cerr)
		}
	case err != nil:
		return fmt.Errorf("failed to look up owner user: %w", err)
	default:
		if uerr := s.db.Model(&user).Update("password", string(hash)).Error; uerr != nil {
			return fmt.Errorf("failed to update owner password: %w", uerr)
		}
	}

	role := models.AdminRole{UserID: user.ID, Role: models.RoleSuperAdmin}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(&role).Error; err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	slog.Info("owner account seeded", "email", email)
	return nil
}
