package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/moizkiani/loveylink-backend/internal/dto"
	"github.com/moizkiani/loveylink-backend/internal/models"
	"github.com/moizkiani/loveylink-backend/internal/plans"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound  = errors.New("payment request not found")
	ErrPaymentFinalized = errors.New("payment request already finalized")
	ErrTrxIDRequired    = errors.New("transaction id is required")
)

// PaymentService handles the manual Easypaisa flow: user submissions and
// the admin approve/reject/revoke actions.
type PaymentService struct {
	db       *gorm.DB
	subs     *SubscriptionService
	registry *plans.Registry
}

func NewPaymentService(db *gorm.DB, subs *SubscriptionService, registry *plans.Registry) *PaymentService {
	return &PaymentService{db: db, subs: subs, registry: registry}
}

// Submit records a pending payment claim for out-of-band verification.
func (s *PaymentService) Submit(userID uuid.UUID, trxID string, amount int64) (*models.PaymentRequest, error) {
	if trxID == "" {
		return nil, ErrTrxIDRequired
	}
	if amount <= 0 {
		if plan := s.registry.Get(plans.DefaultPlanID); plan != nil {
			amount = plan.Amount / 100
		}
	}

	payment := models.PaymentRequest{
		ID:            uuid.New(),
		UserID:        userID,
		TrxID:         trxID,
		Amount:        amount,
		PaymentMethod: "easypaisa_manual",
		Status:        models.PaymentPending,
	}
	if err := s.db.Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment request: %w", err)
	}
	return &payment, nil
}

// Approve marks a pending payment approved and grants premium. An
// already-approved payment is a no-op on the row, but reconciliation still
// runs so a half-finished approval can be repaired by re-approving.
// Rejected and revoked payments are terminal.
func (s *PaymentService) Approve(paymentID uuid.UUID) error {
	var payment models.PaymentRequest
	if err := s.db.First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("failed to fetch payment: %w", err)
	}

	switch payment.Status {
	case models.PaymentPending:
		if err := s.db.Model(&payment).Update("status", models.PaymentApproved).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
	case models.PaymentApproved:
		slog.Info("payment already approved, re-running reconciliation", "payment_id", paymentID)
	default:
		return fmt.Errorf("%w: %s", ErrPaymentFinalized, payment.Status)
	}

	return s.subs.GrantFromPayment(&payment, true)
}

// Reject declines a pending payment. No entitlement changes.
func (s *PaymentService) Reject(paymentID uuid.UUID) error {
	var payment models.PaymentRequest
	if err := s.db.First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("failed to fetch payment: %w", err)
	}
	if payment.Status != models.PaymentPending {
		return fmt.Errorf("%w: %s", ErrPaymentFinalized, payment.Status)
	}
	return s.db.Model(&payment).Update("status", models.PaymentRejected).Error
}

// ListForUser returns the caller's own payment requests, newest first.
func (s *PaymentService) ListForUser(userID uuid.UUID) ([]models.PaymentRequest, error) {
	var payments []models.PaymentRequest
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

// ListAll returns every payment request joined in memory with its
// submitter, for the admin panel.
func (s *PaymentService) ListAll() ([]dto.AdminPaymentResponse, error) {
	var payments []models.PaymentRequest
	if err := s.db.Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	if len(payments) == 0 {
		return []dto.AdminPaymentResponse{}, nil
	}

	ids := make([]uuid.UUID, 0, len(payments))
	seen := make(map[uuid.UUID]struct{}, len(payments))
	for _, p := range payments {
		if _, ok := seen[p.UserID]; !ok {
			seen[p.UserID] = struct{}{}
			ids = append(ids, p.UserID)
		}
	}

	var users []models.User
	if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		slog.Error("payment list user lookup failed", "error", err)
	}
	byID := make(map[uuid.UUID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	out := make([]dto.AdminPaymentResponse, 0, len(payments))
	for _, p := range payments {
		item := dto.AdminPaymentResponse{
			PaymentResponse: dto.PaymentResponse{
				ID:            p.ID.String(),
				TrxID:         p.TrxID,
				Amount:        p.Amount,
				PaymentMethod: p.PaymentMethod,
				Status:        p.Status,
				CreatedAt:     p.CreatedAt,
			},
			UserID:    p.UserID.String(),
			UserEmail: "Unknown",
			UserName:  "Unknown",
		}
		if u, ok := byID[p.UserID]; ok {
			item.UserEmail = u.Email
			if u.FullName != "" {
				item.UserName = u.FullName
			}
		}
		out = append(out, item)
	}
	return out, nil
}
