package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/LinkMeOrg/LinkMe-api/auth"
	"github.com/LinkMeOrg/LinkMe-api/database"
	"github.com/LinkMeOrg/LinkMe-api/models"
	"github.com/LinkMeOrg/LinkMe-api/services"
	"github.com/gin-gonic/gin"
)

type SocialLinkRequest struct {
	ProfileID uint   `json:"profile_id" binding:"required"`
	Platform  string `json:"platform" binding:"required"`
	URL       string `json:"url" binding:"required,url"`
	Label     string `json:"label"`
	IsVisible *bool  `json:"is_visible"`
	Position  int    `json:"position"`
}

type BulkSocialLinkRequest struct {
	ProfileID uint `json:"profile_id" binding:"required"`
	Links     []struct {
		Platform  string `json:"platform" binding:"required"`
		URL       string `json:"url" binding:"required,url"`
		Label     string `json:"label"`
		IsVisible *bool  `json:"is_visible"`
		Position  int    `json:"position"`
	} `json:"links" binding:"required,min=1"`
}

type UpdateSocialLinkRequest struct {
	URL       string `json:"url" binding:"omitempty,url"`
	Label     string `json:"label"`
	IsVisible *bool  `json:"is_visible"`
	Position  *int   `json:"position"`
}

type ReorderRequest struct {
	Links []struct {
		ID       uint `json:"id" binding:"required"`
		Position int  `json:"position"`
	} `json:"links" binding:"required,min=1"`
}

type BulkDeleteRequest struct {
	LinkIDs []uint `json:"link_ids" binding:"required,min=1"`
}

func CreateSocialLink(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SocialLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}

	link := models.SocialLink{
		ProfileID: req.ProfileID,
		Platform:  req.Platform,
		URL:       req.URL,
		Label:     req.Label,
		IsVisible: visible,
		Position:  req.Position,
	}

	if err := services.CreateSocialLink(&link, userID); err != nil {
		respondLinkErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

func CreateSocialLinksBulk(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req BulkSocialLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	links := make([]models.SocialLink, 0, len(req.Links))
	for _, l := range req.Links {
		visible := true
		if l.IsVisible != nil {
			visible = *l.IsVisible
		}
		links = append(links, models.SocialLink{
			Platform:  l.Platform,
			URL:       l.URL,
			Label:     l.Label,
			IsVisible: visible,
			Position:  l.Position,
		})
	}

	created, err := services.CreateSocialLinks(req.ProfileID, userID, links)
	if err != nil {
		respondLinkErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"links": created, "total": len(created)})
}

func ListSocialLinks(c *gin.Context) {
	userID, profileID, ok := profileRequest(c)
	if !ok {
		return
	}

	includeHidden := c.DefaultQuery("includeHidden", "false") == "true"

	links, err := services.ListSocialLinks(profileID, userID, includeHidden)
	if err != nil {
		respondLinkErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"links": links, "total": len(links)})
}

func GetLinkStatistics(c *gin.Context) {
	userID, profileID, ok := profileRequest(c)
	if !ok {
		return
	}

	stats, err := services.GetLinkStatistics(profileID, userID)
	if err != nil {
		respondLinkErr(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func ReorderSocialLinks(c *gin.Context) {
	userID, profileID, ok := profileRequest(c)
	if !ok {
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	positions := make(map[uint]int, len(req.Links))
	for _, l := range req.Links {
		positions[l.ID] = l.Position
	}

	if err := services.ReorderSocialLinks(profileID, userID, positions); err != nil {
		respondLinkErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Links reordered successfully"})
}

func BulkDeleteSocialLinks(c *gin.Context) {
	userID, profileID, ok := profileRequest(c)
	if !ok {
		return
	}

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := services.DeleteSocialLinks(profileID, userID, req.LinkIDs)
	if err != nil {
		respondLinkErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted_count": deleted})
}

func GetSocialLink(c *gin.Context) {
	userID, linkID, ok := linkRequest(c)
	if !ok {
		return
	}

	link, err := services.FindOwnedSocialLink(linkID, userID)
	if err != nil {
		respondLinkErr(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

func UpdateSocialLink(c *gin.Context) {
	userID, linkID, ok := linkRequest(c)
	if !ok {
		return
	}

	link, err := services.FindOwnedSocialLink(linkID, userID)
	if err != nil {
		respondLinkErr(c, err)
		return
	}

	var req UpdateSocialLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.URL != "" {
		link.URL = req.URL
	}
	if req.Label != "" {
		link.Label = req.Label
	}
	if req.IsVisible != nil {
		link.IsVisible = *req.IsVisible
	}
	if req.Position != nil {
		link.Position = *req.Position
	}

	if err := database.DB.Save(link).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update social link"})
		return
	}

	c.JSON(http.StatusOK, link)
}

func DeleteSocialLink(c *gin.Context) {
	userID, linkID, ok := linkRequest(c)
	if !ok {
		return
	}

	link, err := services.FindOwnedSocialLink(linkID, userID)
	if err != nil {
		respondLinkErr(c, err)
		return
	}

	if err := database.DB.Delete(link).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete social link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Social link deleted successfully"})
}

func ToggleLinkVisibility(c *gin.Context) {
	userID, linkID, ok := linkRequest(c)
	if !ok {
		return
	}

	link, err := services.FindOwnedSocialLink(linkID, userID)
	if err != nil {
		respondLinkErr(c, err)
		return
	}

	link.IsVisible = !link.IsVisible
	if err := database.DB.Model(link).Update("is_visible", link.IsVisible).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle visibility"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": link.ID, "is_visible": link.IsVisible})
}

// TrackLinkClick is public: anyone viewing a card can click a link.
func TrackLinkClick(c *gin.Context) {
	linkID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link ID"})
		return
	}

	link, err := services.IncrementLinkClick(uint(linkID))
	if err != nil {
		respondLinkErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": link.ID, "click_count": link.ClickCount})
}

func linkRequest(c *gin.Context) (userID, linkID uint, ok bool) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, 0, false
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link ID"})
		return 0, 0, false
	}

	return userID, uint(id), true
}

func respondLinkErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found or you don't have permission"})
	case errors.Is(err, services.ErrSocialLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Social link not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
