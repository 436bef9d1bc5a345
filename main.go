package main

import (
	"github.com/LinkMeOrg/LinkMe-api/auth"
	"github.com/LinkMeOrg/LinkMe-api/config"
	"github.com/LinkMeOrg/LinkMe-api/database"
	"github.com/LinkMeOrg/LinkMe-api/geoip"
	"github.com/LinkMeOrg/LinkMe-api/handlers"
	"github.com/LinkMeOrg/LinkMe-api/mailer"
	"github.com/LinkMeOrg/LinkMe-api/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	auth.Init(cfg.JWTSecret)

	database.Connect(cfg, log)

	geo, err := geoip.Open(cfg.GeoIPDatabase)
	if err != nil {
		log.WithError(err).Fatal("Failed to open GeoIP database")
	}
	defer geo.Close()
	if _, ok := geo.(geoip.Disabled); ok {
		log.Warn("GeoIP database not configured, views will have no location data")
	}

	mail := mailer.New(cfg, log)

	analyticsSvc := services.NewAnalyticsService(geo)

	authHandler := handlers.NewAuthHandler(mail, cfg.FrontendURL, log)
	oauthHandler := handlers.NewOAuthHandler(cfg, log)
	profileHandler := handlers.NewProfileHandler(cfg.FrontendURL, cfg.UploadDir, log)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsSvc, log)

	router := gin.Default()
	router.MaxMultipartMemory = 8 << 20
	router.Static("/uploads", cfg.UploadDir)

	// Auth (public)
	router.POST("/auth/signup", authHandler.Signup)
	router.POST("/auth/verify-otp", authHandler.VerifyOTP)
	router.POST("/auth/resend-otp", authHandler.ResendOTP)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/forgot-password", authHandler.ForgotPassword)
	router.POST("/auth/reset-password", authHandler.ResetPassword)
	router.GET("/auth/google", oauthHandler.GoogleAuth)
	router.GET("/auth/google/callback", oauthHandler.GoogleCallback)
	router.GET("/auth/facebook", oauthHandler.FacebookAuth)
	router.GET("/auth/facebook/callback", oauthHandler.FacebookCallback)

	api := router.Group("/api")

	api.GET("", handlers.APIInfo)
	api.GET("/health", handlers.Health)

	// Public card + tracking endpoints
	api.GET("/profiles/public/:slug", profileHandler.GetPublic)
	api.POST("/analytics/track-view/:slug", analyticsHandler.TrackView)
	api.POST("/social-links/:id/click", handlers.TrackLinkClick)

	protected := api.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/users/me", handlers.GetCurrentUser)
		protected.PUT("/users/me", handlers.UpdateCurrentUser)
		protected.PUT("/users/me/password", handlers.ChangePassword)

		protected.POST("/profiles", profileHandler.Create)
		protected.GET("/profiles", profileHandler.List)
		protected.GET("/profiles/:id", profileHandler.Get)
		protected.PUT("/profiles/:id", profileHandler.Update)
		protected.DELETE("/profiles/:id", profileHandler.Delete)
		protected.PATCH("/profiles/:id/toggle-status", profileHandler.ToggleStatus)
		protected.POST("/profiles/:id/regenerate-qr", profileHandler.RegenerateQR)

		protected.POST("/social-links", handlers.CreateSocialLink)
		protected.POST("/social-links/bulk", handlers.CreateSocialLinksBulk)
		protected.GET("/social-links/profile/:profileId", handlers.ListSocialLinks)
		protected.GET("/social-links/profile/:profileId/statistics", handlers.GetLinkStatistics)
		protected.PUT("/social-links/profile/:profileId/reorder", handlers.ReorderSocialLinks)
		protected.DELETE("/social-links/profile/:profileId/bulk-delete", handlers.BulkDeleteSocialLinks)
		protected.GET("/social-links/:id", handlers.GetSocialLink)
		protected.PUT("/social-links/:id", handlers.UpdateSocialLink)
		protected.DELETE("/social-links/:id", handlers.DeleteSocialLink)
		protected.PATCH("/social-links/:id/toggle-visibility", handlers.ToggleLinkVisibility)

		protected.GET("/analytics/profile/:profileId", analyticsHandler.GetProfileAnalytics)
		protected.GET("/analytics/profile/:profileId/recent-views", analyticsHandler.GetRecentViews)
		protected.GET("/analytics/profile/:profileId/views-by-source", analyticsHandler.GetViewsBySource)
		protected.GET("/analytics/profile/:profileId/views-by-location", analyticsHandler.GetViewsByLocation)
		protected.GET("/analytics/profile/:profileId/views-by-device", analyticsHandler.GetViewsByDevice)
		protected.GET("/analytics/profile/:profileId/views-over-time", analyticsHandler.GetViewsOverTime)
		protected.DELETE("/analytics/profile/:profileId/cleanup", analyticsHandler.Cleanup)
		protected.GET("/analytics/user", analyticsHandler.GetUserAnalytics)
	}

	log.Infof("LinkMe API starting on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}
