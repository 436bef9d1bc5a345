package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/LinkMeOrg/LinkMe-api/auth"
	"github.com/LinkMeOrg/LinkMe-api/database"
	"github.com/LinkMeOrg/LinkMe-api/models"
	"github.com/LinkMeOrg/LinkMe-api/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProfileHandler serves profile CRUD. It needs the frontend URL for QR
// payloads and the upload directory for avatars.
type ProfileHandler struct {
	FrontendURL string
	UploadDir   string
	Log         *logrus.Logger
}

func NewProfileHandler(frontendURL, uploadDir string, log *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{FrontendURL: frontendURL, UploadDir: uploadDir, Log: log}
}

type ProfileForm struct {
	ProfileType string `form:"profile_type"`
	Name        string `form:"name"`
	Title       string `form:"title"`
	Bio         string `form:"bio"`
	Color       string `form:"color"`
	DesignMode  string `form:"design_mode"`
	Template    string `form:"template"`
	IsActive    *bool  `form:"is_active"`
}

func (h *ProfileHandler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var form ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if form.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Profile name is required"})
		return
	}

	profileType := form.ProfileType
	if profileType != "business" {
		profileType = "personal"
	}

	profile := models.Profile{
		UserID:      userID,
		ProfileType: profileType,
		Name:        form.Name,
		Title:       form.Title,
		Bio:         form.Bio,
		Color:       form.Color,
		DesignMode:  form.DesignMode,
		Template:    form.Template,
		IsActive:    true,
	}

	if avatar := h.saveAvatar(c); avatar != nil {
		profile.Avatar = avatar
	}

	if err := services.CreateProfile(&profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := services.GenerateQRCode(&profile, h.FrontendURL, h.UploadDir); err != nil {
		h.Log.WithError(err).Warn("Failed to generate profile QR code")
	}

	c.JSON(http.StatusCreated, profile)
}

func (h *ProfileHandler) List(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	includeInactive := c.DefaultQuery("includeInactive", "false") == "true"

	profiles, err := services.ListProfiles(userID, includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles, "total": len(profiles)})
}

func (h *ProfileHandler) Get(c *gin.Context) {
	profile, ok := ownedProfileRequest(c)
	if !ok {
		return
	}

	var links []models.SocialLink
	database.DB.Where("profile_id = ?", profile.ID).Order("position asc, id asc").Find(&links)
	profile.SocialLinks = links

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	profile, ok := ownedProfileRequest(c)
	if !ok {
		return
	}

	var form ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if form.Name != "" {
		profile.Name = form.Name
	}
	if form.Title != "" {
		profile.Title = form.Title
	}
	if form.Bio != "" {
		profile.Bio = form.Bio
	}
	if form.Color != "" {
		profile.Color = form.Color
	}
	if form.DesignMode != "" {
		profile.DesignMode = form.DesignMode
	}
	if form.Template != "" {
		profile.Template = form.Template
	}
	if form.IsActive != nil {
		profile.IsActive = *form.IsActive
	}
	if avatar := h.saveAvatar(c); avatar != nil {
		profile.Avatar = avatar
	}

	if err := database.DB.Save(profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Delete(c *gin.Context) {
	userID, profileID, ok := profileRequest(c)
	if !ok {
		return
	}

	if err := services.DeleteProfile(profileID, userID); err != nil {
		respondProfileErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted successfully"})
}

func (h *ProfileHandler) ToggleStatus(c *gin.Context) {
	userID, profileID, ok := profileRequest(c)
	if !ok {
		return
	}

	profile, err := services.ToggleProfileStatus(profileID, userID)
	if err != nil {
		respondProfileErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": profile.ID, "is_active": profile.IsActive})
}

func (h *ProfileHandler) RegenerateQR(c *gin.Context) {
	profile, ok := ownedProfileRequest(c)
	if !ok {
		return
	}

	if err := services.GenerateQRCode(profile, h.FrontendURL, h.UploadDir); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": profile.ID, "qr_code": profile.QRCode})
}

// GetPublic is the visitor-facing card fetch behind the QR code. No
// authentication; inactive profiles and hidden links stay invisible.
func (h *ProfileHandler) GetPublic(c *gin.Context) {
	profile, err := services.FindPublicProfileBySlug(c.Param("slug"))
	if err != nil {
		respondProfileErr(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// saveAvatar stores an optional uploaded avatar under a random name and
// returns its path, or nil when no file was sent.
func (h *ProfileHandler) saveAvatar(c *gin.Context) *string {
	file, err := c.FormFile("avatar")
	if err != nil {
		return nil
	}

	name := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(file.Filename))
	path := filepath.Join(h.UploadDir, "avatars", name)
	if err := c.SaveUploadedFile(file, path); err != nil {
		h.Log.WithError(err).Warn("Failed to save avatar upload")
		return nil
	}
	return &path
}

// profileRequest pulls the caller and the :profileId (or :id) path param.
func profileRequest(c *gin.Context) (userID, profileID uint, ok bool) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, 0, false
	}

	param := c.Param("profileId")
	if param == "" {
		param = c.Param("id")
	}
	id, err := strconv.ParseUint(param, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return 0, 0, false
	}

	return userID, uint(id), true
}

// ownedProfileRequest is the common guard for profile-scoped handlers:
// resolve the path param and fail the request unless the caller owns the
// profile.
func ownedProfileRequest(c *gin.Context) (*models.Profile, bool) {
	userID, profileID, ok := profileRequest(c)
	if !ok {
		return nil, false
	}

	profile, err := services.FindOwnedProfile(profileID, userID)
	if err != nil {
		respondProfileErr(c, err)
		return nil, false
	}
	return profile, true
}

func respondProfileErr(c *gin.Context, err error) {
	if errors.Is(err, services.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found or you don't have permission"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
