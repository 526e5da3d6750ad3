package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/moizkiani/loveylink-backend/internal/config"
	"github.com/moizkiani/loveylink-backend/internal/database"
	"github.com/moizkiani/loveylink-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A pooled :memory: connection per conn would mean a DB per conn.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,
		SiteURL:          "https://loveylink.test",
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "x",
		FullName: "Test User",
		Metadata: map[string]interface{}{},
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createActiveSubscription(t *testing.T, db *gorm.DB, userID uuid.UUID, periodEnd time.Time) *models.Subscription {
	t.Helper()
	sub := models.Subscription{
		ID:                   uuid.New(),
		UserID:               userID,
		StripeSubscriptionID: "sub_" + uuid.New().String()[:8],
		PlanID:               "monthly_pkr_1000",
		Status:               models.StatusActive,
		CurrentPeriodEnd:     periodEnd,
	}
	require.NoError(t, db.Create(&sub).Error)
	return &sub
}

func createPayment(t *testing.T, db *gorm.DB, userID uuid.UUID, status string, createdAt time.Time) *models.PaymentRequest {
	t.Helper()
	payment := models.PaymentRequest{
		ID:            uuid.New(),
		UserID:        userID,
		TrxID:         "TRX" + uuid.New().String()[:8],
		Amount:        1000,
		PaymentMethod: "easypaisa_manual",
		Status:        status,
		CreatedAt:     createdAt,
	}
	require.NoError(t, db.Create(&payment).Error)
	return &payment
}
