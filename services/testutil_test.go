package services

import (
	"fmt"
	"testing"

	"github.com/LinkMeOrg/LinkMe-api/database"
	"github.com/LinkMeOrg/LinkMe-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the package-global handle at a fresh in-memory
// SQLite database. The name is derived from the test so shared-cache
// memory databases never bleed between tests.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	database.DB = db
}

func createTestUser(t *testing.T, email string) *models.User {
	t.Helper()

	user := &models.User{Name: "Test User", Email: email, IsEmailVerified: true}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, database.DB.Create(user).Error)
	return user
}

func createTestProfile(t *testing.T, userID uint, slug string, active bool) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		UserID:      userID,
		ProfileType: "personal",
		Name:        "Test Profile",
		Slug:        slug,
		IsActive:    active,
	}
	require.NoError(t, database.DB.Create(profile).Error)
	return profile
}
