package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwd-comments/cwd-backend/config"
	"github.com/cwd-comments/cwd-backend/internal/app/controller"
	"github.com/cwd-comments/cwd-backend/internal/app/repository"
	"github.com/cwd-comments/cwd-backend/internal/app/service"
	"github.com/cwd-comments/cwd-backend/internal/db"
	"github.com/cwd-comments/cwd-backend/internal/middleware"
	"github.com/cwd-comments/cwd-backend/internal/router"
	"github.com/cwd-comments/cwd-backend/internal/scheduler"
	"github.com/cwd-comments/cwd-backend/internal/storage"
	ws "github.com/cwd-comments/cwd-backend/internal/websocket"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"github.com/cwd-comments/cwd-backend/pkg/mailer"
	"github.com/cwd-comments/cwd-backend/pkg/redis"
	"github.com/cwd-comments/cwd-backend/pkg/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Server.LogLevel
	if logLevel == "" {
		logLevel = "info"
		if cfg.Server.Environment == "development" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.LogFormat != "json",
	})

	logger.Info("Starting CWD Comments Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"db_driver":   cfg.Database.Driver,
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

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional; the DB check still rate limits without it
	var commentOpts []service.CommentServiceOption
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, falling back to database rate limiting", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
			commentOpts = append(commentOpts, service.WithSubmissionLimiter(redis.NewSubmissionLimiter(redis.GetClient())))
		}
	}

	// S3 backup is optional
	var backup service.BackupUploader
	s3Storage, err := storage.NewS3Storage(cfg.S3)
	switch {
	case err == nil:
		backup = s3Storage
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Info("S3 backup disabled: bucket not configured", nil)
	default:
		logger.Warn("Failed to initialize S3 storage", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Admin live feed
	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Initialize repositories
	conn := db.GetDB()
	commentRepo := repository.NewCommentRepository(conn)
	likeRepo := repository.NewLikeRepository(conn)
	statsRepo := repository.NewStatsRepository(conn)
	emailLogRepo := repository.NewEmailLogRepository(conn)
	settingRepo := repository.NewSettingRepository(conn)

	// Initialize services
	bot := telegram.NewClient("")
	settingsService := service.NewSettingsService(settingRepo)
	notificationService := service.NewNotificationService(
		commentRepo,
		emailLogRepo,
		settingsService,
		mailer.NewSMTPMailer(15*time.Second),
		bot,
		cfg.Mail,
	)
	commentOpts = append(commentOpts,
		service.WithNotifier(notificationService),
		service.WithEventPublisher(hub),
	)
	commentService := service.NewCommentService(commentRepo, settingsService, commentOpts...)
	adminCommentService := service.NewAdminCommentService(commentRepo, settingsService, backup, hub)
	authService := service.NewAuthService(cfg.Admin, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	likeService := service.NewLikeService(likeRepo, settingsService)
	analyticsService := service.NewAnalyticsService(statsRepo, commentRepo, likeRepo)
	moderationService := service.NewModerationService(settingsService, adminCommentService, bot)
	maintenanceService := service.NewMaintenanceService(emailLogRepo, adminCommentService)

	// Initialize controllers
	controllers := router.Controllers{
		Auth:         controller.NewAuthController(authService),
		Comment:      controller.NewCommentController(commentService, settingsService),
		AdminComment: controller.NewAdminCommentController(adminCommentService, settingsService),
		Like:         controller.NewLikeController(likeService),
		Analytics:    controller.NewAnalyticsController(analyticsService),
		Settings:     controller.NewSettingsController(settingsService, notificationService),
		Telegram:     controller.NewTelegramController(moderationService),
		WS:           controller.NewWSController(hub, cfg.CORS.AllowedOrigins),
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	engine := router.NewRouter(controllers, authMiddleware, cfg).Setup()

	// Scheduler
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Scheduler.Enabled {
		maintenance = scheduler.NewMaintenanceScheduler(maintenanceService, cfg.Scheduler)
		if err := maintenance.Start(); err != nil {
			logger.Error("Failed to start maintenance scheduler", err)
			maintenance = nil
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...", nil)

	if maintenance != nil {
		maintenance.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully", nil)
}
