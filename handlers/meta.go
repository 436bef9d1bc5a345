package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIInfo describes the API surface at the root of /api.
func APIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "LinkMe API - Smart Card System",
		"version": "1.0.0",
		"endpoints": gin.H{
			"profiles":     gin.H{"base": "/api/profiles", "description": "Profile management endpoints"},
			"social_links": gin.H{"base": "/api/social-links", "description": "Social link management endpoints"},
			"analytics":    gin.H{"base": "/api/analytics", "description": "Analytics and tracking endpoints"},
		},
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC()})
}
