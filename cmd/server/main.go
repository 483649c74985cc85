package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"tailor_shop/internal/config"
	"tailor_shop/internal/database"
	"tailor_shop/internal/handlers"
	"tailor_shop/internal/logger"
	"tailor_shop/internal/migrations"
	"tailor_shop/internal/redis"
	"tailor_shop/internal/repository"
	"tailor_shop/internal/services"
	"tailor_shop/pkg/whatsapp"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Initialize(cfg.Database, cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := migrations.RunMigrations(ctx, db, log); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	// Redis is optional: without it the summary cache and the cross-process item lock are off.
	var (
		cache       services.SummaryCache
		locker      services.ItemLocker
		redisClient *redis.Client
	)
	if cfg.RedisURL != "" {
		redisClient, err = redis.Initialize(cfg.RedisURL, redis.Options{
			CacheTTL: cfg.CacheDuration(),
			LockTTL:  cfg.Database.TxTimeout,
		})
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, continuing without cache and distributed lock")
		} else {
			defer redisClient.Close()
			cache = redisClient
			locker = redisClient
		}
	}

	// Initialize WhatsApp client
	var sender services.MessageSender
	if cfg.WhatsApp.Enabled() {
		sender = whatsapp.NewClient(cfg.WhatsApp.APIURL, cfg.WhatsApp.Username, cfg.WhatsApp.Password, cfg.WhatsApp.Path)
	} else {
		log.Info("WhatsApp gateway not configured, notifications are stored only")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	repos := repository.NewRepositories(db)

	// Initialize services
	notifier := services.NewNotificationService(repository.NewNotificationRepository(db), userRepo, sender, log)
	audit := services.NewAuditService(repository.NewActionLogRepository(db), nil)
	orderItemService, err := services.NewOrderItemService(services.OrderItemServiceDeps{
		Items:      repos.Items,
		Statuses:   repos.Statuses,
		Ledger:     repos.Ledger,
		UnitOfWork: repository.NewUnitOfWork(db, cfg.Database.TxTimeout),
		Locker:     locker,
		Cache:      cache,
		Notifier:   notifier,
		Audit:      audit,
		Logger:     log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to build order item service")
	}
	orderService := services.NewOrderService(orderRepo, nil)

	// Setup routes
	checks := map[string]handlers.HealthChecker{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if cache != nil {
		checks["redis"] = redisClient.Ping
	}
	router := handlers.NewRouter(handlers.RouterConfig{
		JWTSecret:    cfg.JWTSecret,
		AllowOrigins: cfg.AllowOrigins,
		Logger:       log,
		Checks:       checks,
	}, handlers.NewOrderItemHandler(orderItemService), handlers.NewOrderHandler(orderService))

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.ServerPort).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
