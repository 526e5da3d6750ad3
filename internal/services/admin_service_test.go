package services

import (
	"testing"
	"time"

	"github.com/moizkiani/loveylink-backend/internal/dto"
	"github.com/moizkiani/loveylink-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminStats(t *testing.T) {
	db := openTestDB(t)
	svc := NewAdminService(db)
	pages := NewPageService(db, NewSubscriptionService(db), "https://loveylink.test")

	user := createTestUser(t, db, "stats@example.com")
	createActiveSubscription(t, db, user.ID, time.Now().Add(time.Hour))
	page, err := pages.Create(user.ID, &dto.CreatePageRequest{Title: "For You", RecipientName: "Sana"})
	require.NoError(t, err)
	require.NoError(t, pages.RecordScan(page.ID, "qr", "", ""))

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.UserCount)
	assert.Equal(t, int64(1), stats.PageCount)
	assert.Equal(t, int64(1), stats.ActiveSubs)
	assert.Equal(t, int64(1), stats.QRScanCount)
}

func TestAdminListUsersDefaultsToFree(t *testing.T) {
	db := openTestDB(t)
	svc := NewAdminService(db)
	subs := NewSubscriptionService(db)

	free := createTestUser(t, db, "plainuser@example.com")
	paid := createTestUser(t, db, "paiduser@example.com")
	payment := createPayment(t, db, paid.ID, models.PaymentApproved, time.Now())
	require.NoError(t, subs.GrantFromPayment(payment, false))

	users, err := svc.ListUsers(50)
	require.NoError(t, err)
	require.Len(t, users, 2)

	byEmail := make(map[string]dto.AdminUserResponse, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}
	assert.Equal(t, models.StatusFree, byEmail[free.Email].SubscriptionStatus)
	assert.Equal(t, models.StatusActive, byEmail[paid.Email].SubscriptionStatus)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	svc := NewAdminService(db)

	require.NoError(t, svc.Seed("owner@loveylink.test", "ownerpass123"))
	require.NoError(t, svc.Seed("owner@loveylink.test", "rotatedpass456"))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "owner@loveylink.test").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "owner@loveylink.test").Error)

	var role models.AdminRole
	require.NoError(t, db.First(&role, "user_id = ?", user.ID).Error)
	assert.Equal(t, models.RoleSuperAdmin, role.Role)
}

func TestSeedRequiresCredentials(t *testing.T) {
	db := openTestDB(t)
	svc := NewAdminService(db)

	assert.Error(t, svc.Seed("", "pass"))
	assert.Error(t, svc.Seed("a@b.c", ""))
}
