package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Kiran9223/service-link-sub000/internal/repository"
	"github.com/Kiran9223/service-link-sub000/internal/worker"
	"github.com/Kiran9223/service-link-sub000/pkg/config"
	"github.com/Kiran9223/service-link-sub000/pkg/database"
	"github.com/Kiran9223/service-link-sub000/pkg/kafka"
	"github.com/Kiran9223/service-link-sub000/pkg/logger"
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

	appLog.Info("starting outbox relay",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	ctx := context.Background()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName + "-outbox-relay",
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

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:  cfg.Kafka.Brokers,
		ClientID: cfg.Kafka.ClientID + "-outbox-relay",
	})
	if err != nil {
		appLog.Fatal("failed to create kafka producer", zap.Error(err))
	}
	defer producer.Close()

	outboxRepo := repository.NewPostgresOutboxRepository(db.Pool())

	relayCfg := worker.DefaultOutboxRelayConfig()
	relayCfg.PollInterval = cfg.Outbox.PollInterval
	relayCfg.BatchSize = cfg.Outbox.BatchSize
	relayCfg.RetryInterval = cfg.Outbox.RetryInterval

	relay := worker.NewOutboxRelay(outboxRepo, producer, relayCfg)
	if err := relay.Start(ctx); err != nil {
		appLog.Fatal("failed to start outbox relay", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down")
	relay.Stop()
	appLog.Info("outbox relay stopped")
}
