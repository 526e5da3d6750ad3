package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/moizkiani/loveylink-backend/internal/models"
	"github.com/moizkiani/loveylink-backend/internal/plans"
	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNoApprovedPayment = errors.New("no approved payment record found")

// Sources a premium verdict can be derived from.
const (
	SourceSubscriptions   = "subscriptions"
	SourcePaymentRequests = "payment_requests"
)

// Status is the resolver verdict for a single user.
type Status struct {
	Premium   bool
	Status    string
	Source    string
	PlanID    string
	ExpiresAt *time.Time
}

// SubscriptionService owns entitlement state: resolving the premium flag
// from the three overlapping stores, granting premium from approved manual
// payments, revoking it, and applying Stripe subscription events.
//
// The subscriptions table is the source of truth. user_profiles is a
// denormalized mirror: writes to it are best effort and never fail the
// operation that triggered them.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Resolve derives the premium flag for a user without side effects.
// Priority: an active subscription with a future period end, then the most
// recent approved payment request within the trailing 30-day window.
// Lookup errors are logged and resolve to not premium.
func (s *SubscriptionService) Resolve(userID uuid.UUID) *Status {
	return s.resolve(userID, false)
}

// ResolveAndExpire behaves like Resolve but first demotes an active
// subscription whose period has elapsed to expired. A failed demotion is
// logged and the row still treated as expired.
func (s *SubscriptionService) ResolveAndExpire(userID uuid.UUID) *Status {
	return s.resolve(userID, true)
}

func (s *SubscriptionService) resolve(userID uuid.UUID, expire bool) *Status {
	now := time.Now()
	verdict := &Status{Status: models.StatusFree}

	var sub models.Subscription
	err := s.db.Where("user_id = ?", userID).Order("updated_at DESC").First(&sub).Error
	switch {
	case err == nil:
		if sub.Live(now) {
			end := sub.CurrentPeriodEnd
			return &Status{
				Premium:   true,
				Status:    models.StatusActive,
				Source:    SourceSubscriptions,
				PlanID:    sub.PlanID,
				ExpiresAt: &end,
			}
		}
		if sub.Status == models.StatusActive {
			// Active row past its period end. Not premium either way;
			// the expire variant also writes that fact back.
			if expire {
				if uerr := s.db.Model(&models.Subscription{}).
					Where("id = ? AND status = ?", sub.ID, models.StatusActive).
					Updates(map[string]interface{}{
						"status":             models.StatusExpired,
						"current_period_end": now,
					}).Error; uerr != nil {
					slog.Error("failed to expire subscription", "user_id", userID, "error", uerr)
				}
			}
			verdict.Status = models.StatusExpired
		} else {
			verdict.Status = sub.Status
		}
		verdict.Source = SourceSubscriptions
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to the payment fallback
	default:
		slog.Error("subscription lookup failed", "user_id", userID, "error", err)
		return verdict
	}

	var payment models.PaymentRequest
	err = s.db.Where("user_id = ? AND status = ?", userID, models.PaymentApproved).
		Order("created_at DESC").First(&payment).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("payment fallback lookup failed", "user_id", userID, "error", err)
		}
		return verdict
	}

	expiry := payment.CreatedAt.Add(models.PaymentWindow)
	if expiry.After(now) {
		return &Status{
			Premium:   true,
			Status:    models.StatusActive,
			Source:    SourcePaymentRequests,
			ExpiresAt: &expiry,
		}
	}
	if verdict.Status == models.StatusFree {
		verdict.Status = models.StatusExpired
		verdict.Source = SourcePaymentRequests
		verdict.ExpiresAt = &expiry
	}
	return verdict
}

// GrantFromPayment upserts the user's subscription off an approved manual
// payment: a 30-day period from now, with a synthetic provider id set only
// on first insert. The profile mirror and the one-time welcome flag are
// best effort.
func (s *SubscriptionService) GrantFromPayment(payment *models.PaymentRequest, welcome bool) error {
	now := time.Now()
	periodEnd := now.Add(models.PaymentWindow)
	syntheticID := "manual_easypaisa_" + payment.ID.String()

	var sub models.Subscription
	err := s.db.Where("user_id = ?", payment.UserID).First(&sub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = models.Subscription{
			ID:                   uuid.New(),
			UserID:               payment.UserID,
			StripeSubscriptionID: syntheticID,
			PlanID:               plans.DefaultPlanID,
			Status:               models.StatusActive,
			CurrentPeriodEnd:     periodEnd,
		}
		if cerr := s.db.Create(&sub).Error; cerr != nil {
			return fmt.Errorf("failed to create subscription: %w", cerr)
		}
	case err != nil:
		return fmt.Errorf("failed to look up subscription: %w", err)
	default:
		// Never touch stripe_subscription_id on update; it is unique and
		// set once on insert.
		if uerr := s.db.Model(&sub).Updates(map[string]interface{}{
			"status":             models.StatusActive,
			"plan_id":            plans.DefaultPlanID,
			"current_period_end": periodEnd,
		}).Error; uerr != nil {
			return fmt.Errorf("failed to update subscription: %w", uerr)
		}
	}

	s.mirrorProfile(payment.UserID, models.StatusActive, sub.ID.String())
	if welcome {
		s.setWelcomeFlag(payment.UserID)
	}
	return nil
}

// Revoke removes premium: active subscriptions become expired, the profile
// mirror goes free, and approved payment requests are marked revoked so the
// fallback resolver cannot re-grant access. Steps are independent and best
// effort; a failure in one does not roll back the others.
func (s *SubscriptionService) Revoke(userID uuid.UUID) error {
	now := time.Now()
	var errs []error

	if err := s.db.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, models.StatusActive).
		Updates(map[string]interface{}{
			"status":             models.StatusExpired,
			"current_period_end": now,
		}).Error; err != nil {
		slog.Error("revoke: subscription update failed", "user_id", userID, "error", err)
		errs = append(errs, fmt.Errorf("subscription update: %w", err))
	}

	s.mirrorProfile(userID, models.StatusFree, "")

	if err := s.db.Model(&models.PaymentRequest{}).
		Where("user_id = ? AND status = ?", userID, models.PaymentApproved).
		Update("status", models.PaymentRevoked).Error; err != nil {
		slog.Error("revoke: payment revocation failed", "user_id", userID, "error", err)
		errs = append(errs, fmt.Errorf("payment revocation: %w", err))
	}

	return errors.Join(errs...)
}

// Refresh is the self-service reconciliation path behind the dashboard's
// refresh button: re-grant premium from the most recent approved payment.
func (s *SubscriptionService) Refresh(userID uuid.UUID) error {
	var payment models.PaymentRequest
	err := s.db.Where("user_id = ? AND status = ?", userID, models.PaymentApproved).
		Order("created_at DESC").First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoApprovedPayment
		}
		return fmt.Errorf("failed to look up payments: %w", err)
	}
	return s.GrantFromPayment(&payment, false)
}

// HandleStripeEvent applies a verified Stripe webhook event. Events for
// customers with no local profile are silently ignored.
func (s *SubscriptionService) HandleStripeEvent(event stripe.Event) error {
	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		return s.applyStripeSubscription(event)
	case "customer.subscription.deleted":
		return s.applyStripeDeletion(event)
	default:
		return nil
	}
}

func (s *SubscriptionService) applyStripeSubscription(event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription event: %w", err)
	}
	if sub.Customer == nil {
		return nil
	}

	profile, ok := s.profileForCustomer(sub.Customer.ID, event.Type)
	if !ok {
		return nil
	}

	planID := ""
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		planID = sub.Items.Data[0].Price.ID
	}

	record := models.Subscription{
		ID:                   uuid.New(),
		UserID:               profile.ID,
		StripeSubscriptionID: sub.ID,
		PlanID:               planID,
		Status:               string(sub.Status),
		CurrentPeriodEnd:     time.Unix(sub.CurrentPeriodEnd, 0),
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "plan_id", "current_period_end", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	status := models.StatusFree
	if sub.Status == stripe.SubscriptionStatusActive {
		status = models.StatusActive
	}
	s.mirrorProfile(profile.ID, status, sub.ID)
	return nil
}

func (s *SubscriptionService) applyStripeDeletion(event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription event: %w", err)
	}
	if sub.Customer == nil {
		return nil
	}

	profile, ok := s.profileForCustomer(sub.Customer.ID, event.Type)
	if !ok {
		return nil
	}

	if err := s.db.Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", sub.ID).
		Update("status", models.StatusCanceled).Error; err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	s.mirrorProfile(profile.ID, models.StatusFree, "")
	return nil
}

func (s *SubscriptionService) profileForCustomer(customerID string, eventType stripe.EventType) (*models.UserProfile, bool) {
	var profile models.UserProfile
	err := s.db.First(&profile, "stripe_customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Info("stripe event for unmapped customer", "customer_id", customerID, "event_type", eventType)
		return nil, false
	}
	if err != nil {
		slog.Error("profile lookup by customer failed", "customer_id", customerID, "error", err)
		return nil, false
	}
	return &profile, true
}

// mirrorProfile upserts the denormalized user_profiles row. Failures are
// logged and swallowed: the resolver never trusts this mirror alone.
func (s *SubscriptionService) mirrorProfile(userID uuid.UUID, status, subID string) {
	var profile models.UserProfile
	err := s.db.First(&profile, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		email := ""
		var user models.User
		if uerr := s.db.First(&user, "id = ?", userID).Error; uerr == nil {
			email = user.Email
		}
		profile = models.UserProfile{
			ID:                 userID,
			Email:              email,
			SubscriptionStatus: status,
			SubscriptionID:     subID,
		}
		if cerr := s.db.Create(&profile).Error; cerr != nil {
			slog.Error("profile mirror insert failed", "user_id", userID, "error", cerr)
		}
		return
	}
	if err != nil {
		slog.Error("profile mirror lookup failed", "user_id", userID, "error", err)
		return
	}

	updates := map[string]interface{}{"subscription_status": status}
	if subID != "" {
		updates["subscription_id"] = subID
	}
	if uerr := s.db.Model(&profile).Updates(updates).Error; uerr != nil {
		slog.Error("profile mirror update failed", "user_id", userID, "error", uerr)
	}
}

// SetStripeCustomer records the Stripe customer id on both the auth
// metadata and the profile mirror, creating the profile when absent.
func (s *SubscriptionService) SetStripeCustomer(userID uuid.UUID, customerID string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	if user.Metadata == nil {
		user.Metadata = map[string]interface{}{}
	}
	user.Metadata[models.MetaStripeCustomerID] = customerID
	if err := s.db.Model(&user).Update("metadata", user.Metadata).Error; err != nil {
		return fmt.Errorf("failed to update user metadata: %w", err)
	}

	var profile models.UserProfile
	err := s.db.First(&profile, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.UserProfile{
			ID:                 userID,
			Email:              user.Email,
			SubscriptionStatus: models.StatusFree,
			StripeCustomerID:   customerID,
		}
		return s.db.Create(&profile).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&profile).Update("stripe_customer_id", customerID).Error
}

// ConsumeWelcomeFlag reports and clears the one-time premium welcome flag.
func (s *SubscriptionService) ConsumeWelcomeFlag(userID uuid.UUID) bool {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return false
	}
	show, _ := user.Metadata[models.MetaShowPremiumWelcome].(bool)
	if !show {
		return false
	}
	delete(user.Metadata, models.MetaShowPremiumWelcome)
	if err := s.db.Model(&user).Update("metadata", user.Metadata).Error; err != nil {
		slog.Error("failed to clear welcome flag", "user_id", userID, "error", err)
	}
	return true
}

func (s *SubscriptionService) setWelcomeFlag(userID uuid.UUID) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		slog.Error("welcome flag: user lookup failed", "user_id", userID, "error", err)
		return
	}
	if user.Metadata == nil {
		user.Metadata = map[string]interface{}{}
	}
	user.Metadata[models.MetaShowPremiumWelcome] = true
	if err := s.db.Model(&user).Update("metadata", user.Metadata).Error; err != nil {
		slog.Error("welcome flag update failed", "user_id", userID, "error", err)
	}
}
