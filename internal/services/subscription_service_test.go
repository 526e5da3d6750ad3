package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/moizkiani/loveylink-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func TestResolveActiveSubscription(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "active@example.com")

	end := time.Now().Add(10 * 24 * time.Hour)
	createActiveSubscription(t, db, user.ID, end)

	status := svc.Resolve(user.ID)
	assert.True(t, status.Premium)
	assert.Equal(t, models.StatusActive, status.Status)
	assert.Equal(t, SourceSubscriptions, status.Source)
	assert.Equal(t, "monthly_pkr_1000", status.PlanID)
	require.NotNil(t, status.ExpiresAt)
	assert.WithinDuration(t, end, *status.ExpiresAt, time.Second)
}

func TestResolveElapsedPeriodReadOnly(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "elapsed@example.com")

	sub := createActiveSubscription(t, db, user.ID, time.Now().Add(-time.Hour))

	status := svc.Resolve(user.ID)
	assert.False(t, status.Premium)
	assert.Equal(t, models.StatusExpired, status.Status)

	// Resolve must not write the demotion back.
	var stored models.Subscription
	require.NoError(t, db.First(&stored, "id = ?", sub.ID).Error)
	assert.Equal(t, models.StatusActive, stored.Status)
}

func TestResolveAndExpireDemotesElapsedPeriod(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "demote@example.com")

	sub := createActiveSubscription(t, db, user.ID, time.Now().Add(-time.Hour))

	status := svc.ResolveAndExpire(user.ID)
	assert.False(t, status.Premium)
	assert.Equal(t, models.StatusExpired, status.Status)

	var stored models.Subscription
	require.NoError(t, db.First(&stored, "id = ?", sub.ID).Error)
	assert.Equal(t, models.StatusExpired, stored.Status)
}

func TestResolvePaymentFallbackWithinWindow(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "fallback@example.com")

	createPayment(t, db, user.ID, models.PaymentApproved, time.Now().Add(-5*24*time.Hour))

	status := svc.Resolve(user.ID)
	assert.True(t, status.Premium)
	assert.Equal(t, SourcePaymentRequests, status.Source)
	require.NotNil(t, status.ExpiresAt)
	assert.True(t, status.ExpiresAt.After(time.Now()))
}

func TestResolvePaymentFallbackExpired(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "stale@example.com")

	createPayment(t, db, user.ID, models.PaymentApproved, time.Now().Add(-31*24*time.Hour))

	status := svc.Resolve(user.ID)
	assert.False(t, status.Premium)
	assert.Equal(t, models.StatusExpired, status.Status)
}

func TestResolveIgnoresRevokedPayments(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "revoked@example.com")

	createPayment(t, db, user.ID, models.PaymentRevoked, time.Now())

	status := svc.Resolve(user.ID)
	assert.False(t, status.Premium)
	assert.Equal(t, models.StatusFree, status.Status)
}

func TestResolvePrefersSubscriptionOverPayment(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "both@example.com")

	createActiveSubscription(t, db, user.ID, time.Now().Add(24*time.Hour))
	createPayment(t, db, user.ID, models.PaymentApproved, time.Now())

	status := svc.Resolve(user.ID)
	assert.True(t, status.Premium)
	assert.Equal(t, SourceSubscriptions, status.Source)
}

func TestGrantFromPaymentCreatesAndUpdates(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "grant@example.com")
	payment := createPayment(t, db, user.ID, models.PaymentApproved, time.Now())

	require.NoError(t, svc.GrantFromPayment(payment, true))

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "user_id = ?", user.ID).Error)
	assert.Equal(t, "manual_easypaisa_"+payment.ID.String(), sub.StripeSubscriptionID)
	assert.Equal(t, models.StatusActive, sub.Status)

	// A second grant updates the row and keeps the original provider id.
	second := createPayment(t, db, user.ID, models.PaymentApproved, time.Now())
	require.NoError(t, svc.GrantFromPayment(second, false))

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, db.First(&sub, "user_id = ?", user.ID).Error)
	assert.Equal(t, "manual_easypaisa_"+payment.ID.String(), sub.StripeSubscriptionID)

	// Welcome flag was set by the first grant only.
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	show, _ := stored.Metadata[models.MetaShowPremiumWelcome].(bool)
	assert.True(t, show)
}

func TestRevokeWithoutSubscription(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "norow@example.com")

	require.NoError(t, svc.Revoke(user.ID))

	var profile models.UserProfile
	require.NoError(t, db.First(&profile, "id = ?", user.ID).Error)
	assert.Equal(t, models.StatusFree, profile.SubscriptionStatus)
}

func TestRevokeExpiresSubscriptionAndPayments(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "revokeall@example.com")

	sub := createActiveSubscription(t, db, user.ID, time.Now().Add(24*time.Hour))
	payment := createPayment(t, db, user.ID, models.PaymentApproved, time.Now())

	require.NoError(t, svc.Revoke(user.ID))

	var storedSub models.Subscription
	require.NoError(t, db.First(&storedSub, "id = ?", sub.ID).Error)
	assert.Equal(t, models.StatusExpired, storedSub.Status)

	var storedPayment models.PaymentRequest
	require.NoError(t, db.First(&storedPayment, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentRevoked, storedPayment.Status)

	assert.False(t, svc.Resolve(user.ID).Premium)
}

func TestRefreshNoApprovedPayment(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "refresh@example.com")

	assert.ErrorIs(t, svc.Refresh(user.ID), ErrNoApprovedPayment)
}

func TestConsumeWelcomeFlag(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "welcome@example.com")
	payment := createPayment(t, db, user.ID, models.PaymentApproved, time.Now())

	require.NoError(t, svc.GrantFromPayment(payment, true))

	assert.True(t, svc.ConsumeWelcomeFlag(user.ID))
	assert.False(t, svc.ConsumeWelcomeFlag(user.ID))
}

func stripeSubscriptionEvent(t *testing.T, eventType, subID, customerID, status string, periodEnd time.Time) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"id":                 subID,
		"customer":           map[string]interface{}{"id": customerID},
		"status":             status,
		"current_period_end": periodEnd.Unix(),
		"items": map[string]interface{}{
			"data": []map[string]interface{}{
				{"price": map[string]interface{}{"id": "price_monthly"}},
			},
		},
	})
	require.NoError(t, err)
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleStripeEventUpsertsSubscription(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "stripe@example.com")
	require.NoError(t, svc.SetStripeCustomer(user.ID, "cus_123"))

	end := time.Now().Add(30 * 24 * time.Hour)
	event := stripeSubscriptionEvent(t, "customer.subscription.created", "sub_abc", "cus_123", "active", end)
	require.NoError(t, svc.HandleStripeEvent(event))

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "stripe_subscription_id = ?", "sub_abc").Error)
	assert.Equal(t, user.ID, sub.UserID)
	assert.Equal(t, models.StatusActive, sub.Status)
	assert.Equal(t, "price_monthly", sub.PlanID)

	// The same subscription id updates in place.
	update := stripeSubscriptionEvent(t, "customer.subscription.updated", "sub_abc", "cus_123", "past_due", end)
	require.NoError(t, svc.HandleStripeEvent(update))

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, db.First(&sub, "stripe_subscription_id = ?", "sub_abc").Error)
	assert.Equal(t, "past_due", sub.Status)

	var profile models.UserProfile
	require.NoError(t, db.First(&profile, "id = ?", user.ID).Error)
	assert.Equal(t, models.StatusFree, profile.SubscriptionStatus)
}

func TestHandleStripeEventUnmappedCustomer(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)

	event := stripeSubscriptionEvent(t, "customer.subscription.created", "sub_none", "cus_missing", "active", time.Now().Add(time.Hour))
	require.NoError(t, svc.HandleStripeEvent(event))

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestHandleStripeDeletion(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "cancel@example.com")
	require.NoError(t, svc.SetStripeCustomer(user.ID, "cus_del"))

	end := time.Now().Add(30 * 24 * time.Hour)
	created := stripeSubscriptionEvent(t, "customer.subscription.created", "sub_del", "cus_del", "active", end)
	require.NoError(t, svc.HandleStripeEvent(created))
	require.True(t, svc.Resolve(user.ID).Premium)

	deleted := stripeSubscriptionEvent(t, "customer.subscription.deleted", "sub_del", "cus_del", "canceled", end)
	require.NoError(t, svc.HandleStripeEvent(deleted))

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "stripe_subscription_id = ?", "sub_del").Error)
	assert.Equal(t, models.StatusCanceled, sub.Status)

	var profile models.UserProfile
	require.NoError(t, db.First(&profile, "id = ?", user.ID).Error)
	assert.Equal(t, models.StatusFree, profile.SubscriptionStatus)

	assert.False(t, svc.Resolve(user.ID).Premium)
}
