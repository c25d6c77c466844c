package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Kiran9223/service-link-sub000/internal/handler"
	"github.com/Kiran9223/service-link-sub000/internal/middleware"
	"github.com/Kiran9223/service-link-sub000/internal/repository"
	"github.com/Kiran9223/service-link-sub000/internal/service"
	"github.com/Kiran9223/service-link-sub000/pkg/auth"
	"github.com/Kiran9223/service-link-sub000/pkg/config"
	"github.com/Kiran9223/service-link-sub000/pkg/database"
	"github.com/Kiran9223/service-link-sub000/pkg/logger"
	pkgredis "github.com/Kiran9223/service-link-sub000/pkg/redis"
	"github.com/Kiran9223/service-link-sub000/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog, err := logger.Init(cfg.App.Environment)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	appLog.Info("starting api server",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	ctx := context.Background()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Fatal("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("database connected")

	healthChecks := map[string]handler.HealthChecker{
		"postgres": db,
	}

	// Redis only backs duplicate-request protection, so the API stays up
	// without it.
	var idempotencyCfg *middleware.IdempotencyConfig
	redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLog.Warn("redis unavailable, idempotency protection disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		idempotencyCfg = middleware.DefaultIdempotencyConfig(redisClient.Redis())
		healthChecks["redis"] = redisClient
		appLog.Info("redis connected")
	}

	pool := db.Pool()
	slotRepo := repository.NewPostgresSlotRepository(pool, cfg.Booking.LockTimeout)
	bookingRepo := repository.NewPostgresBookingRepository(pool, cfg.Booking.LockTimeout)
	auditRepo := repository.NewPostgresAuditRepository(pool)
	outboxRepo := repository.NewPostgresOutboxRepository(pool)
	catalogRepo := repository.NewPostgresCatalogRepository(pool)
	notificationRepo := repository.NewPostgresNotificationRepository(pool)

	eventPublisher := service.NewOutboxEventPublisher(outboxRepo, cfg.Booking.EventsTopic)

	slotService := service.NewSlotService(slotRepo, &service.SlotServiceConfig{
		WindowDays: cfg.Booking.WindowDays,
	})
	reservationService := service.NewReservationService(
		slotRepo, bookingRepo, catalogRepo, auditRepo, eventPublisher, nil,
	)
	bookingService := service.NewBookingService(bookingRepo, slotRepo, auditRepo, eventPublisher)

	router := handler.NewRouter(&handler.RouterConfig{
		Environment:         cfg.App.Environment,
		ServiceName:         cfg.OTel.ServiceName,
		Verifier:            auth.NewVerifier(cfg.JWT.Secret),
		Idempotency:         idempotencyCfg,
		SlotHandler:         handler.NewSlotHandler(slotService),
		BookingHandler:      handler.NewBookingHandler(reservationService, bookingService),
		NotificationHandler: handler.NewNotificationHandler(notificationRepo),
		HealthHandler:       handler.NewHealthHandler(healthChecks),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLog.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("forced shutdown", zap.Error(err))
	}
	appLog.Info("server stopped")
}
