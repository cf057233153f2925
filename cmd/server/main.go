package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyeonkim/tabling-backend/config"
	"github.com/hyeonkim/tabling-backend/internal/app/controller"
	"github.com/hyeonkim/tabling-backend/internal/app/repository"
	"github.com/hyeonkim/tabling-backend/internal/app/service"
	"github.com/hyeonkim/tabling-backend/internal/db"
	"github.com/hyeonkim/tabling-backend/internal/middleware"
	"github.com/hyeonkim/tabling-backend/internal/router"
	"github.com/hyeonkim/tabling-backend/internal/scheduler"
	"github.com/hyeonkim/tabling-backend/pkg/logger"
	"github.com/hyeonkim/tabling-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting TABLING Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize Redis (token blacklist). 미연결 시 블랙리스트 없이 동작
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable - token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	storeRepo := repository.NewStoreRepository(db.GetDB())
	slotRepo := repository.NewSlotRepository(db.GetDB())
	reservationRepo := repository.NewReservationRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	storeService := service.NewStoreService(storeRepo, slotRepo, reservationRepo, db.GetDB())
	reservationService := service.NewReservationService(reservationRepo, slotRepo, storeRepo, db.GetDB())
	reviewService := service.NewReviewService(reviewRepo, reservationRepo, db.GetDB())

	// Initialize controllers
	authController := controller.NewAuthController(authService, cfg.JWT.AccessTokenExpiry)
	storeController := controller.NewStoreController(storeService)
	reservationController := controller.NewReservationController(reservationService)
	reviewController := controller.NewReviewController(reviewService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the expired date cleanup scheduler
	dateScheduler := scheduler.NewDateScheduler(storeService)
	if err := dateScheduler.Start(); err != nil {
		logger.Fatal("Failed to start date cleanup scheduler", err)
	}
	defer dateScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		storeController,
		reservationController,
		reviewController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
