package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LinkMeOrg/LinkMe-api/database"
	"github.com/LinkMeOrg/LinkMe-api/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupProfileRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	log := logrus.New()
	log.SetOutput(bytes.NewBuffer(nil))

	handler := NewProfileHandler("http://localhost:5173", t.TempDir(), log)

	router := gin.New()
	router.GET("/api/profiles/public/:slug", handler.GetPublic)
	return router
}

func TestGetPublicProfile(t *testing.T) {
	router := setupProfileRouter(t)
	_, profile := seedUserAndProfile(t, "owner@example.com", "jane-abc123", true)

	visible := models.SocialLink{ProfileID: profile.ID, Platform: "github", URL: "https://github.com/jane", IsVisible: true, Position: 1}
	require.NoError(t, database.DB.Create(&visible).Error)
	hidden := models.SocialLink{ProfileID: profile.ID, Platform: "web", URL: "https://secret.example", IsVisible: false, Position: 2}
	require.NoError(t, database.DB.Create(&hidden).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/public/jane-abc123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ID          uint   `json:"id"`
		Slug        string `json:"slug"`
		SocialLinks []struct {
			Platform string `json:"platform"`
		} `json:"social_links"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, profile.ID, resp.ID)
	assert.Equal(t, "jane-abc123", resp.Slug)
	require.Len(t, resp.SocialLinks, 1)
	assert.Equal(t, "github", resp.SocialLinks[0].Platform)
	assert.NotContains(t, w.Body.String(), "secret.example")
}

func TestGetPublicProfileHidesInactive(t *testing.T) {
	router := setupProfileRouter(t)
	seedUserAndProfile(t, "owner@example.com", "inactive-abc123", false)

	for _, slug := range []string{"inactive-abc123", "missing"} {
		req := httptest.NewRequest(http.MethodGet, "/api/profiles/public/"+slug, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}
