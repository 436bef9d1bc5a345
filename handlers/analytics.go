package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/LinkMeOrg/LinkMe-api/auth"
	"github.com/LinkMeOrg/LinkMe-api/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultAnalyticsDays = 30

// AnalyticsHandler serves the public view tracker and the owner-only
// aggregation endpoints.
type AnalyticsHandler struct {
	Svc *services.AnalyticsService
	Log *logrus.Logger
}

func NewAnalyticsHandler(svc *services.AnalyticsService, log *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{Svc: svc, Log: log}
}

type TrackViewRequest struct {
	Source string `json:"source"`
}

// TrackView is the public ingestion endpoint. A missing or invalid body
// just means the default source; the view is recorded regardless.
func (h *AnalyticsHandler) TrackView(c *gin.Context) {
	var req TrackViewRequest
	_ = c.ShouldBindJSON(&req)

	recorded, err := h.Svc.RecordView(
		c.Param("slug"),
		req.Source,
		c.ClientIP(),
		c.Request.UserAgent(),
		c.Request.Referer(),
	)
	if err != nil {
		respondProfileErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"view_id":    recorded.ViewID,
		"profile_id": recorded.ProfileID,
		"view_count": recorded.ViewCount,
	})
}

func (h *AnalyticsHandler) GetProfileAnalytics(c *gin.Context) {
	profile, ok := ownedProfileRequest(c)
	if !ok {
		return
	}

	days := intQuery(c, "days", defaultAnalyticsDays)
	end := dateQuery(c, "endDate", time.Now())
	start := dateQuery(c, "startDate", end.AddDate(0, 0, -days))

	summary, err := h.Svc.Summarize(profile.ID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	series, err := h.Svc.ViewsOverTime(profile.ID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period": gin.H{"start": start, "end": end, "days": days},
		"profile": gin.H{
			"id":               profile.ID,
			"name":             profile.Name,
			"slug":             profile.Slug,
			"total_view_count": profile.ViewCount,
		},
		"analytics":       summary,
		"views_over_time": series,
	})
}

func (h *AnalyticsHandler) GetRecentViews(c *gin.Context) {
	profile, ok := ownedProfileRequest(c)
	if !ok {
		return
	}

	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	total, views, err := h.Svc.RecentViews(profile.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"views":  views,
	})
}

func (h *AnalyticsHandler) GetViewsBySource(c *gin.Context) {
	profile, ok := ownedProfileRequest(c)
	if !ok {
		return
	}

	days := intQuery(c, "days", defaultAnalyticsDays)
	since := time.Now().AddDate(0, 0, -days)

	total, breakdown, err := h.Svc.ViewsBySource(profile.ID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": total, "breakdown": breakdown})
}

func (h *AnalyticsHandler) GetViewsByLocation(c *gin.Context) {
	profile, ok := ownedProfileRequest(c)
	if !ok {
		return
	}

	days := intQuery(c, "days", defaultAnalyticsDays)
	limit := intQuery(c, "limit", 10)
	since := time.Now().AddDate(0, 0, -days)

	countries, cities, err := h.Svc.ViewsByLocation(profile.ID, since, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"countries": countries, "cities": cities})
}

func (h *AnalyticsHandler) GetViewsByDevice(c *gin.Context) {
	profile, ok := ownedProfileRequest(c)
	if !ok {
		return
	}

	days := intQuery(c, "days", defaultAnalyticsDays)
	since := time.Now().AddDate(0, 0, -days)

	total, devices, browsers, err := h.Svc.ViewsByDevice(profile.ID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_views": total,
		"devices":     devices,
		"browsers":    browsers,
	})
}

func (h *AnalyticsHandler) GetViewsOverTime(c *gin.Context) {
	profile, ok := ownedProfileRequest(c)
	if !ok {
		return
	}

	days := intQuery(c, "days", defaultAnalyticsDays)

	series, err := h.Svc.ViewsOverTime(profile.ID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": days, "views": series})
}

type CleanupRequest struct {
	DaysToKeep *int `json:"days_to_keep"`
}

// Cleanup irreversibly deletes events older than the horizon.
func (h *AnalyticsHandler) Cleanup(c *gin.Context) {
	profile, ok := ownedProfileRequest(c)
	if !ok {
		return
	}

	daysToKeep := 90
	var req CleanupRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.DaysToKeep != nil && *req.DaysToKeep >= 0 {
		daysToKeep = *req.DaysToKeep
	}

	deleted, err := h.Svc.DeleteOldViews(profile.ID, daysToKeep)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Log.WithFields(logrus.Fields{
		"profile_id":   profile.ID,
		"days_to_keep": daysToKeep,
		"deleted":      deleted,
	}).Info("Old profile views deleted")

	c.JSON(http.StatusOK, gin.H{
		"deleted_count": deleted,
		"days_to_keep":  daysToKeep,
	})
}

func (h *AnalyticsHandler) GetUserAnalytics(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	days := intQuery(c, "days", defaultAnalyticsDays)

	rollup, err := h.Svc.RollupForUser(userID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rollup)
}

// intQuery coerces a numeric query param, silently falling back to the
// default on anything malformed or non-positive where that makes no sense.
func intQuery(c *gin.Context, name string, defaultValue int) int {
	raw := c.DefaultQuery(name, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 || (value == 0 && name != "offset") {
		return defaultValue
	}
	return value
}

// dateQuery parses a YYYY-MM-DD query param, defaulting when absent or
// malformed.
func dateQuery(c *gin.Context, name string, defaultValue time.Time) time.Time {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}
