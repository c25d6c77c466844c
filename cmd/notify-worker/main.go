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

	appLog.Info("starting notification worker",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	ctx := context.Background()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName + "-notify-worker",
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

	consumer, err := kafka.NewConsumer(ctx, &kafka.ConsumerConfig{
		Brokers:  cfg.Kafka.Brokers,
		GroupID:  cfg.Kafka.ConsumerGroup,
		Topics:   []string{cfg.Booking.EventsTopic},
		ClientID: cfg.Kafka.ClientID + "-notify-worker",
	})
	if err != nil {
		appLog.Fatal("failed to create kafka consumer", zap.Error(err))
	}
	defer consumer.Close()

	// Separate producer for dead-lettering events that keep failing.
	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:  cfg.Kafka.Brokers,
		ClientID: cfg.Kafka.ClientID + "-notify-dlq",
	})
	if err != nil {
		appLog.Fatal("failed to create kafka producer", zap.Error(err))
	}
	defer producer.Close()

	notificationRepo := repository.NewPostgresNotificationRepository(db.Pool())

	nc := worker.NewNotificationConsumer(consumer, producer, notificationRepo, &worker.NotificationConsumerConfig{
		MaxRetries: cfg.Notify.MaxRetries,
		RetryDelay: cfg.Notify.RetryDelay,
		DLQTopic:   cfg.Notify.DLQTopic,
	})
	if err := nc.Start(ctx); err != nil {
		appLog.Fatal("failed to start notification consumer", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down")
	nc.Stop()
	appLog.Info("notification worker stopped")
}
