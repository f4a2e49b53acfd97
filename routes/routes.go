package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taroc/schedule-service-sub002/config"
	"github.com/taroc/schedule-service-sub002/internal/auditlog"
	"github.com/taroc/schedule-service-sub002/internal/auth"
	"github.com/taroc/schedule-service-sub002/internal/availability"
	"github.com/taroc/schedule-service-sub002/internal/event"
	"github.com/taroc/schedule-service-sub002/internal/matching"
	"github.com/taroc/schedule-service-sub002/internal/notification"
	"github.com/taroc/schedule-service-sub002/internal/reports"
	"github.com/taroc/schedule-service-sub002/middleware"
)

// Modules holds the wired services the server and background workers share.
type Modules struct {
	Matching     *matching.Service
	Notification *notification.Service
}

// Setup wires repositories, services and handlers onto the router and returns
// the modules the background trigger reuses.
func Setup(r *gin.Engine, db *gorm.DB, cfg *config.Config) *Modules {
	// repositories
	authRepo := auth.NewRepository(db)
	availabilityRepo := availability.NewRepository(db)
	eventRepo := event.NewRepository(db)
	auditRepo := auditlog.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	reportsRepo := reports.NewRepository(db)

	// services
	auditSvc := auditlog.NewService(auditRepo)
	authSvc := auth.NewService(authRepo, cfg)
	availabilitySvc := availability.NewService(availabilityRepo)
	eventSvc := event.NewService(eventRepo, auditSvc)
	notificationSvc := notification.NewService(notificationRepo)
	matchingSvc := matching.NewService(eventRepo, availabilityRepo, notificationSvc, auditSvc, cfg.MatchingHorizonDays)
	reportsSvc := reports.NewService(reportsRepo, reports.NewReportExporter())

	// handlers
	authHandler := auth.NewHandler(authSvc)
	availabilityHandler := availability.NewHandler(availabilitySvc)
	eventHandler := event.NewHandler(eventSvc)
	matchingHandler := matching.NewHandler(matchingSvc, time.Duration(cfg.StatsCacheTTLSeconds)*time.Second)
	notificationHandler := notification.NewHandler(notificationSvc)
	auditHandler := auditlog.NewHandler(auditSvc)
	reportsHandler := reports.NewHandler(reportsSvc)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())

	// public
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	// authenticated
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.PUT("/availability", availabilityHandler.SetAvailability)
		protected.GET("/availability", availabilityHandler.GetAvailability)

		events := protected.Group("/events")
		{
			events.POST("", eventHandler.CreateEvent)
			events.GET("", eventHandler.ListEvents)
			events.GET("/:id", eventHandler.GetEventByID)
			events.POST("/:id/join", eventHandler.JoinEvent)
			events.POST("/:id/confirm", eventHandler.ConfirmEvent)
			events.POST("/:id/cancel", eventHandler.CancelEvent)
			events.POST("/:id/reservation", eventHandler.UpdateReservation)
		}

		match := protected.Group("/matching")
		{
			match.POST("/events/:id/check", matchingHandler.CheckEvent)
			match.POST("/events/:id/commit", matchingHandler.CommitSelection)
			match.POST("/check-all", matchingHandler.CheckAllEvents)
			match.POST("/global", matchingHandler.GlobalMatching)
			match.POST("/sweep", matchingHandler.SweepExpiredEvents)
			match.GET("/stats", matchingHandler.GetStats)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
		}

		protected.GET("/audit-logs", auditHandler.GetAuditLogs)
		protected.GET("/audit-logs/:id", auditHandler.GetAuditLogByID)

		protected.GET("/reports/:type", reportsHandler.DownloadReport)
	}

	return &Modules{
		Matching:     matchingSvc,
		Notification: notificationSvc,
	}
}
