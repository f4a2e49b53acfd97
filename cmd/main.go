package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/taroc/schedule-service-sub002/config"
	"github.com/taroc/schedule-service-sub002/database"
	"github.com/taroc/schedule-service-sub002/internal/auditlog"
	"github.com/taroc/schedule-service-sub002/internal/auth"
	"github.com/taroc/schedule-service-sub002/internal/availability"
	"github.com/taroc/schedule-service-sub002/internal/event"
	"github.com/taroc/schedule-service-sub002/internal/notification"
	"github.com/taroc/schedule-service-sub002/internal/scheduler"
	"github.com/taroc/schedule-service-sub002/routes"
	"github.com/taroc/schedule-service-sub002/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Init Redis
	if err := utils.InitRedis(cfg); err != nil {
		log.Fatalf("❌ Redis init failed: %v", err)
	}

	// Init Kafka
	utils.InitializeKafka(cfg)
	defer utils.CloseKafka()

	// Auto-migrate models
	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.User{},
		&availability.Availability{},
		&event.Event{},
		&event.Participant{},
		&event.Confirmation{},
		&notification.Notification{},
		&auditlog.AuditLog{},
	); err != nil {
		log.Fatalf("❌ DB AutoMigrate failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	modules := routes.Setup(router, db, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Kafka consumer turning transition messages into in-app notifications
	consumer := notification.NewConsumer(
		utils.NewTransitionReader(cfg, "notification-fanout"),
		notification.NewRepository(db),
	)
	go consumer.Run(ctx)
	defer consumer.Close()

	// Time-driven matching trigger
	trigger := scheduler.NewTrigger(
		modules.Matching,
		time.Duration(cfg.MatchIntervalMinutes)*time.Minute,
		time.Duration(cfg.SweepIntervalMinutes)*time.Minute,
		time.Duration(cfg.DeadlineReminderIntervalMinutes)*time.Minute,
	)
	go trigger.Run(ctx)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		cancel()
	}()

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	fmt.Printf("🚀 Server starting on port %s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
