package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LinkMeOrg/LinkMe-api/database"
	"github.com/LinkMeOrg/LinkMe-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProfileGeneratesSlug(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "owner@example.com")

	profile := &models.Profile{UserID: user.ID, Name: "Jane Doe", IsActive: true}
	require.NoError(t, CreateProfile(profile))

	assert.True(t, strings.HasPrefix(profile.Slug, "jane-doe-"), "slug %q", profile.Slug)
	assert.Len(t, profile.Slug, len("jane-doe-")+slugSuffixLength)

	second := &models.Profile{UserID: user.ID, Name: "Jane Doe", IsActive: true}
	require.NoError(t, CreateProfile(second))
	assert.NotEqual(t, profile.Slug, second.Slug)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "jane-doe", slugify("Jane Doe"))
	assert.Equal(t, "acme-corp", slugify("  ACME  Corp!  "))
	assert.Equal(t, "", slugify("***"))
}

func TestFindActiveProfileBySlug(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "owner@example.com")
	active := createTestProfile(t, user.ID, "active-abc123", true)
	createTestProfile(t, user.ID, "inactive-abc123", false)

	found, err := FindActiveProfileBySlug("active-abc123")
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)

	_, err = FindActiveProfileBySlug("inactive-abc123")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = FindActiveProfileBySlug("missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestFindPublicProfileBySlug(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "owner@example.com")
	profile := createTestProfile(t, user.ID, "jane-doe-abc123", true)
	createTestProfile(t, user.ID, "inactive-abc123", false)

	second := models.SocialLink{ProfileID: profile.ID, Platform: "x", URL: "https://x.com/jane", IsVisible: true, Position: 2}
	require.NoError(t, database.DB.Create(&second).Error)
	first := models.SocialLink{ProfileID: profile.ID, Platform: "github", URL: "https://github.com/jane", IsVisible: true, Position: 1}
	require.NoError(t, database.DB.Create(&first).Error)
	hidden := models.SocialLink{ProfileID: profile.ID, Platform: "web", URL: "https://jane.example", IsVisible: false, Position: 0}
	require.NoError(t, database.DB.Create(&hidden).Error)

	found, err := FindPublicProfileBySlug("jane-doe-abc123")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, found.ID)

	// Only visible links, in display order.
	require.Len(t, found.SocialLinks, 2)
	assert.Equal(t, first.ID, found.SocialLinks[0].ID)
	assert.Equal(t, second.ID, found.SocialLinks[1].ID)

	_, err = FindPublicProfileBySlug("inactive-abc123")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = FindPublicProfileBySlug("missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGenerateQRCode(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "owner@example.com")
	profile := createTestProfile(t, user.ID, "jane-doe-abc123", true)

	uploadDir := t.TempDir()
	require.NoError(t, GenerateQRCode(profile, "http://localhost:5173", uploadDir))

	require.NotNil(t, profile.QRCode)
	assert.Equal(t, filepath.Join(uploadDir, "qr", fmt.Sprintf("profile-%d.png", profile.ID)), *profile.QRCode)

	info, err := os.Stat(*profile.QRCode)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	var fresh models.Profile
	require.NoError(t, database.DB.First(&fresh, profile.ID).Error)
	require.NotNil(t, fresh.QRCode)
	assert.Equal(t, *profile.QRCode, *fresh.QRCode)
}

func TestDeleteProfileCascades(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "owner@example.com")
	profile := createTestProfile(t, user.ID, "jane-doe-abc123", true)

	link := models.SocialLink{ProfileID: profile.ID, Platform: "github", URL: "https://github.com/jane", IsVisible: true}
	require.NoError(t, database.DB.Create(&link).Error)
	view := models.ProfileView{ProfileID: profile.ID, ViewSource: models.SourceDirect, ViewedAt: time.Now()}
	require.NoError(t, database.DB.Create(&view).Error)

	require.NoError(t, DeleteProfile(profile.ID, user.ID))

	var profiles, links, views int64
	database.DB.Model(&models.Profile{}).Where("id = ?", profile.ID).Count(&profiles)
	database.DB.Model(&models.SocialLink{}).Where("profile_id = ?", profile.ID).Count(&links)
	database.DB.Model(&models.ProfileView{}).Where("profile_id = ?", profile.ID).Count(&views)
	assert.Zero(t, profiles)
	assert.Zero(t, links)
	assert.Zero(t, views)
}

func TestDeleteProfileRequiresOwnership(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	intruder := createTestUser(t, "intruder@example.com")
	profile := createTestProfile(t, owner.ID, "jane-doe-abc123", true)

	err := DeleteProfile(profile.ID, intruder.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	var count int64
	database.DB.Model(&models.Profile{}).Where("id = ?", profile.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestToggleProfileStatus(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "owner@example.com")
	profile := createTestProfile(t, user.ID, "jane-doe-abc123", true)

	toggled, err := ToggleProfileStatus(profile.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	toggled, err = ToggleProfileStatus(profile.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
}

func TestListProfilesFiltersInactive(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "owner@example.com")
	createTestProfile(t, user.ID, "active-abc123", true)
	createTestProfile(t, user.ID, "inactive-abc123", false)

	profiles, err := ListProfiles(user.ID, false)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	profiles, err = ListProfiles(user.ID, true)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}
