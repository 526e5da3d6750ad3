package services

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/moizkiani/loveylink-backend/internal/dto"
	"github.com/moizkiani/loveylink-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func TestCreateDraftPage(t *testing.T) {
	db := openTestDB(t)
	subs := NewSubscriptionService(db)
	svc := NewPageService(db, subs, "https://loveylink.test")
	user := createTestUser(t, db, "pages@example.com")

	page, err := svc.Create(user.ID, &dto.CreatePageRequest{
		Title:         "For You",
		RecipientName: "Sana Khan",
		Message:       "hello",
	})
	require.NoError(t, err)
	assert.False(t, page.Published)
	assert.Regexp(t, regexp.MustCompile(`^sana-khan-[0-9a-f-]{5}$`), page.Slug)
	assert.Equal(t, "https://loveylink.test/lp/"+page.Slug, svc.PublicURL(page))
}

func TestCreateRequiresTitleAndRecipient(t *testing.T) {
	db := openTestDB(t)
	subs := NewSubscriptionService(db)
	svc := NewPageService(db, subs, "https://loveylink.test")
	user := createTestUser(t, db, "notitle@example.com")

	_, err := svc.Create(user.ID, &dto.CreatePageRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestCreatePublishedRequiresPremium(t *testing.T) {
	db := openTestDB(t)
	subs := NewSubscriptionService(db)
	svc := NewPageService(db, subs, "https://loveylink.test")
	user := createTestUser(t, db, "freepub@example.com")

	_, err := svc.Create(user.ID, &dto.CreatePageRequest{
		Title:         "For You",
		RecipientName: "Sana",
		Published:     true,
	})
	assert.ErrorIs(t, err, ErrPremiumRequired)
}

func TestPublishPremiumGate(t *testing.T) {
	db := openTestDB(t)
	subs := NewSubscriptionService(db)
	svc := NewPageService(db, subs, "https://loveylink.test")
	user := createTestUser(t, db, "publish@example.com")

	page, err := svc.Create(user.ID, &dto.CreatePageRequest{Title: "For You", RecipientName: "Sana"})
	require.NoError(t, err)

	_, err = svc.Publish(user.ID, page.ID)
	assert.ErrorIs(t, err, ErrPremiumRequired)

	createActiveSubscription(t, db, user.ID, time.Now().Add(24*time.Hour))

	published, err := svc.Publish(user.ID, page.ID)
	require.NoError(t, err)
	assert.True(t, published.Published)

	found, err := svc.GetBySlug(page.Slug)
	require.NoError(t, err)
	assert.Equal(t, page.ID, found.ID)
}

func TestGetBySlugHidesDrafts(t *testing.T) {
	db := openTestDB(t)
	subs := NewSubscriptionService(db)
	svc := NewPageService(db, subs, "https://loveylink.test")
	user := createTestUser(t, db, "draft@example.com")

	page, err := svc.Create(user.ID, &dto.CreatePageRequest{Title: "For You", RecipientName: "Sana"})
	require.NoError(t, err)

	_, err = svc.GetBySlug(page.Slug)
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestGetRejectsOtherOwners(t *testing.T) {
	db := openTestDB(t)
	subs := NewSubscriptionService(db)
	svc := NewPageService(db, subs, "https://loveylink.test")
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")

	page, err := svc.Create(owner.ID, &dto.CreatePageRequest{Title: "For You", RecipientName: "Sana"})
	require.NoError(t, err)

	_, err = svc.Get(other.ID, page.ID)
	assert.ErrorIs(t, err, ErrNotPageOwner)
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	db := openTestDB(t)
	subs := NewSubscriptionService(db)
	svc := NewPageService(db, subs, "https://loveylink.test")
	owner := createTestUser(t, db, "delowner@example.com")
	other := createTestUser(t, db, "delother@example.com")

	page, err := svc.Create(owner.ID, &dto.CreatePageRequest{Title: "For You", RecipientName: "Sana"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(other.ID, page.ID), ErrPageNotFound)
	require.NoError(t, svc.Delete(owner.ID, page.ID))
	assert.ErrorIs(t, svc.Delete(owner.ID, page.ID), ErrPageNotFound)
}

func TestRecordScan(t *testing.T) {
	db := openTestDB(t)
	subs := NewSubscriptionService(db)
	svc := NewPageService(db, subs, "https://loveylink.test")
	user := createTestUser(t, db, "scan@example.com")

	page, err := svc.Create(user.ID, &dto.CreatePageRequest{Title: "For You", RecipientName: "Sana"})
	require.NoError(t, err)

	require.NoError(t, svc.RecordScan(page.ID, "", "1.2.3.4", "test-agent"))

	var scan models.QRScan
	require.NoError(t, db.First(&scan, "page_id = ?", page.ID).Error)
	assert.Equal(t, "qr", scan.Source)
	assert.Equal(t, "1.2.3.4", scan.IP)
}

func TestQRCodePremiumGate(t *testing.T) {
	db := openTestDB(t)
	subs := NewSubscriptionService(db)
	svc := NewPageService(db, subs, "https://loveylink.test")
	user := createTestUser(t, db, "qr@example.com")

	page, err := svc.Create(user.ID, &dto.CreatePageRequest{Title: "For You", RecipientName: "Sana"})
	require.NoError(t, err)

	_, err = svc.QRCode(user.ID, page.ID)
	assert.ErrorIs(t, err, ErrPremiumRequired)

	createActiveSubscription(t, db, user.ID, time.Now().Add(24*time.Hour))

	png, err := svc.QRCode(user.ID, page.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestNormalizeMusicURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"spotify track", "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=x", "https://open.spotify.com/embed/track/4uLU6hMCjMI75M1A2tKUQC"},
		{"already embedded", "https://open.spotify.com/embed/track/4uLU6hMCjMI75M1A2tKUQC", "https://open.spotify.com/embed/track/4uLU6hMCjMI75M1A2tKUQC"},
		{"non spotify", "https://soundcloud.com/artist/song", "https://soundcloud.com/artist/song"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeMusicURL(tc.in))
		})
	}
}

func TestMakeSlugSanitizes(t *testing.T) {
	slug := makeSlug(" Sana Khan!! ")
	assert.Regexp(t, regexp.MustCompile(`^sana-khan-[0-9a-f-]{5}$`), slug)

	fallback := makeSlug("!!!")
	assert.Regexp(t, regexp.MustCompile(`^love-page-[0-9a-f-]{5}$`), fallback)
}
