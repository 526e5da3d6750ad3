package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/moizkiani/loveylink-backend/internal/config"
	"github.com/moizkiani/loveylink-backend/internal/dto"
	"github.com/moizkiani/loveylink-backend/internal/models"
	"github.com/moizkiani/loveylink-backend/internal/plans"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"gorm.io/gorm"
)

var ErrStripeNotConfigured = errors.New("stripe is not configured")

// CheckoutService creates Stripe checkout sessions for the premium
// subscription, managing the customer mapping along the way.
type CheckoutService struct {
	db       *gorm.DB
	cfg      *config.Config
	subs     *SubscriptionService
	registry *plans.Registry
}

func NewCheckoutService(db *gorm.DB, cfg *config.Config, subs *SubscriptionService, registry *plans.Registry) *CheckoutService {
	return &CheckoutService{db: db, cfg: cfg, subs: subs, registry: registry}
}

// CreateSession returns a hosted checkout URL for the default plan. The
// Stripe customer id is looked up in auth metadata first, then the profile
// mirror; a new customer is created and persisted to both when missing.
func (s *CheckoutService) CreateSession(userID uuid.UUID) (*dto.CheckoutResponse, error) {
	if s.cfg.StripeSecretKey == "" {
		return nil, ErrStripeNotConfigured
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	customerID := user.StripeCustomerID()
	if customerID == "" {
		var profile models.UserProfile
		if err := s.db.First(&profile, "id = ?", userID).Error; err == nil {
			customerID = profile.StripeCustomerID
		}
	}

	if customerID == "" {
		params := &stripe.CustomerParams{Email: stripe.String(user.Email)}
		params.AddMetadata("user_id", userID.String())
		cust, err := customer.New(params)
		if err != nil {
			return nil, fmt.Errorf("failed to create stripe customer: %w", err)
		}
		customerID = cust.ID

		if err := s.subs.SetStripeCustomer(userID, customerID); err != nil {
			// The session can still proceed; the webhook will just not
			// find this user until the mapping lands.
			slog.Error("failed to persist stripe customer id", "user_id", userID, "error", err)
		}
	}

	plan := s.registry.Get(plans.DefaultPlanID)
	if plan == nil {
		return nil, fmt.Errorf("default plan not registered")
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(plan.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(plan.Name),
						Description: stripe.String(plan.Description),
					},
					UnitAmount: stripe.Int64(plan.Amount),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(plan.Interval),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.SiteURL + "/dashboard?success=true"),
		CancelURL:  stripe.String(s.cfg.SiteURL + "/pricing?canceled=true"),
	}
	params.AddMetadata("user_id", userID.String())

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &dto.CheckoutResponse{SessionID: sess.ID, URL: sess.URL}, nil
}
