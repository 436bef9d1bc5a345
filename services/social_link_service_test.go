package services

import (
	"testing"

	"github.com/LinkMeOrg/LinkMe-api/database"
	"github.com/LinkMeOrg/LinkMe-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLink(t *testing.T, profileID uint, platform string, visible bool, clicks int) *models.SocialLink {
	t.Helper()

	link := &models.SocialLink{
		ProfileID:  profileID,
		Platform:   platform,
		URL:        "https://example.com/" + platform,
		IsVisible:  visible,
		ClickCount: clicks,
	}
	require.NoError(t, database.DB.Create(link).Error)
	return link
}

func TestCreateSocialLinkChecksOwnership(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	intruder := createTestUser(t, "intruder@example.com")
	profile := createTestProfile(t, owner.ID, "jane-doe-abc123", true)

	link := models.SocialLink{ProfileID: profile.ID, Platform: "github", URL: "https://github.com/jane", IsVisible: true}
	assert.ErrorIs(t, CreateSocialLink(&link, intruder.ID), ErrProfileNotFound)
	require.NoError(t, CreateSocialLink(&link, owner.ID))
}

func TestFindOwnedSocialLink(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	intruder := createTestUser(t, "intruder@example.com")
	profile := createTestProfile(t, owner.ID, "jane-doe-abc123", true)
	link := createTestLink(t, profile.ID, "github", true, 0)

	found, err := FindOwnedSocialLink(link.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, link.ID, found.ID)

	_, err = FindOwnedSocialLink(link.ID, intruder.ID)
	assert.ErrorIs(t, err, ErrSocialLinkNotFound)
}

func TestIncrementLinkClick(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	profile := createTestProfile(t, owner.ID, "jane-doe-abc123", true)
	link := createTestLink(t, profile.ID, "github", true, 0)
	hidden := createTestLink(t, profile.ID, "x", false, 0)

	updated, err := IncrementLinkClick(link.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ClickCount)

	var fresh models.SocialLink
	require.NoError(t, database.DB.First(&fresh, link.ID).Error)
	assert.Equal(t, 1, fresh.ClickCount)

	// Hidden links are not publicly clickable.
	_, err = IncrementLinkClick(hidden.ID)
	assert.ErrorIs(t, err, ErrSocialLinkNotFound)
}

func TestReorderSocialLinks(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	profile := createTestProfile(t, owner.ID, "jane-doe-abc123", true)
	other := createTestProfile(t, owner.ID, "other-abc123", true)
	a := createTestLink(t, profile.ID, "github", true, 0)
	b := createTestLink(t, profile.ID, "x", true, 0)
	foreign := createTestLink(t, other.ID, "web", true, 0)

	err := ReorderSocialLinks(profile.ID, owner.ID, map[uint]int{
		a.ID:       2,
		b.ID:       1,
		foreign.ID: 9, // belongs to another profile, must be ignored
	})
	require.NoError(t, err)

	var freshA, freshB, freshForeign models.SocialLink
	require.NoError(t, database.DB.First(&freshA, a.ID).Error)
	require.NoError(t, database.DB.First(&freshB, b.ID).Error)
	require.NoError(t, database.DB.First(&freshForeign, foreign.ID).Error)
	assert.Equal(t, 2, freshA.Position)
	assert.Equal(t, 1, freshB.Position)
	assert.Equal(t, 0, freshForeign.Position)
}

func TestGetLinkStatistics(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	profile := createTestProfile(t, owner.ID, "jane-doe-abc123", true)
	createTestLink(t, profile.ID, "github", true, 5)
	top := createTestLink(t, profile.ID, "x", true, 12)
	createTestLink(t, profile.ID, "web", false, 3)

	stats, err := GetLinkStatistics(profile.ID, owner.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalLinks)
	assert.Equal(t, 2, stats.VisibleLinks)
	assert.Equal(t, 20, stats.TotalClicks)
	require.NotNil(t, stats.TopLink)
	assert.Equal(t, top.ID, stats.TopLink.ID)
}

func TestBulkDeleteSocialLinks(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	profile := createTestProfile(t, owner.ID, "jane-doe-abc123", true)
	other := createTestProfile(t, owner.ID, "other-abc123", true)
	a := createTestLink(t, profile.ID, "github", true, 0)
	b := createTestLink(t, profile.ID, "x", true, 0)
	foreign := createTestLink(t, other.ID, "web", true, 0)

	deleted, err := DeleteSocialLinks(profile.ID, owner.ID, []uint{a.ID, b.ID, foreign.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	var count int64
	database.DB.Model(&models.SocialLink{}).Where("id = ?", foreign.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}
