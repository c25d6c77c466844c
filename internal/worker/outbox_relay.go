package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/internal/repository"
	"github.com/Kiran9223/service-link-sub000/pkg/kafka"
	"github.com/Kiran9223/service-link-sub000/pkg/logger"
)

// Producer is the broker surface the relay needs
type Producer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
}

// OutboxRelayConfig contains configuration for the outbox relay
type OutboxRelayConfig struct {
	// PollInterval is the interval between polling for pending messages
	PollInterval time.Duration
	// BatchSize is the number of messages to fetch in each poll
	BatchSize int
	// RetryInterval is the interval between retrying failed messages
	RetryInterval time.Duration
	// CleanupInterval is the interval between cleanup of published messages
	CleanupInterval time.Duration
	// CleanupRetentionDays is how long published messages are retained
	CleanupRetentionDays int
}

// DefaultOutboxRelayConfig returns default configuration
func DefaultOutboxRelayConfig() *OutboxRelayConfig {
	return &OutboxRelayConfig{
		PollInterval:         100 * time.Millisecond,
		BatchSize:            100,
		RetryInterval:        5 * time.Second,
		CleanupInterval:      1 * time.Hour,
		CleanupRetentionDays: 7,
	}
}

// OutboxRelay drains the outbox table to the broker. Messages are keyed by
// partition key (the provider id), so per-provider delivery order follows
// outbox commit order. Delivery is at-least-once: a crash between Produce
// and MarkAsPublished re-sends the message, and consumers dedupe on event id.
type OutboxRelay struct {
	outboxRepo repository.OutboxRepository
	producer   Producer
	config     *OutboxRelayConfig
	log        *logger.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewOutboxRelay creates a new outbox relay
func NewOutboxRelay(
	outboxRepo repository.OutboxRepository,
	producer Producer,
	config *OutboxRelayConfig,
) *OutboxRelay {
	if config == nil {
		config = DefaultOutboxRelayConfig()
	}

	return &OutboxRelay{
		outboxRepo: outboxRepo,
		producer:   producer,
		config:     config,
		log:        logger.Get().Named("outbox-relay"),
		stopCh:     make(chan struct{}),
	}
}

// Start starts the relay loops
func (w *OutboxRelay) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox relay already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("starting outbox relay",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize),
	)

	w.wg.Add(1)
	go w.pollPendingMessages(ctx)

	w.wg.Add(1)
	go w.retryFailedMessages(ctx)

	w.wg.Add(1)
	go w.cleanupPublishedMessages(ctx)

	return nil
}

// Stop stops the relay and waits for in-flight work
func (w *OutboxRelay) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("stopping outbox relay")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("outbox relay stopped")
}

// pollPendingMessages polls for pending messages and publishes them
func (w *OutboxRelay) pollPendingMessages(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processPendingMessages(ctx)
		}
	}
}

// processPendingMessages fetches and publishes pending messages
func (w *OutboxRelay) processPendingMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error("failed to get pending messages", zap.Error(err))
		return
	}

	for _, msg := range messages {
		if err := w.publishMessage(ctx, msg); err != nil {
			// The message moves to the failed lane while later pending
			// messages keep publishing, so per-key order is best-effort
			// across a broker outage. Consumers dedupe by event id.
			w.log.Error("failed to publish message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			if markErr := w.outboxRepo.MarkAsFailed(ctx, msg.ID, err.Error()); markErr != nil {
				w.log.Error("failed to mark message as failed",
					zap.String("message_id", msg.ID),
					zap.Error(markErr),
				)
			}
			continue
		}
		if markErr := w.outboxRepo.MarkAsPublished(ctx, msg.ID); markErr != nil {
			w.log.Error("failed to mark message as published",
				zap.String("message_id", msg.ID),
				zap.Error(markErr),
			)
		}
	}
}

// retryFailedMessages retries failed messages that have retries left
func (w *OutboxRelay) retryFailedMessages(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processFailedMessages(ctx)
		}
	}
}

// processFailedMessages fetches and retries failed messages
func (w *OutboxRelay) processFailedMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetFailedMessages(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error("failed to get failed messages", zap.Error(err))
		return
	}

	for _, msg := range messages {
		if err := w.publishMessage(ctx, msg); err != nil {
			w.log.Error("failed to retry message",
				zap.String("message_id", msg.ID),
				zap.Int("attempt", msg.RetryCount+1),
				zap.Int("max_retries", msg.MaxRetries),
				zap.Error(err),
			)
			if markErr := w.outboxRepo.MarkAsFailed(ctx, msg.ID, err.Error()); markErr != nil {
				w.log.Error("failed to mark message as failed",
					zap.String("message_id", msg.ID),
					zap.Error(markErr),
				)
			}
			continue
		}
		w.log.Info("retried message",
			zap.String("message_id", msg.ID),
			zap.Int("attempts", msg.RetryCount+1),
		)
		if markErr := w.outboxRepo.MarkAsPublished(ctx, msg.ID); markErr != nil {
			w.log.Error("failed to mark message as published",
				zap.String("message_id", msg.ID),
				zap.Error(markErr),
			)
		}
	}
}

// cleanupPublishedMessages deletes published messages past retention
func (w *OutboxRelay) cleanupPublishedMessages(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			deleted, err := w.outboxRepo.DeletePublished(ctx, w.config.CleanupRetentionDays)
			if err != nil {
				w.log.Error("failed to cleanup published messages", zap.Error(err))
			} else if deleted > 0 {
				w.log.Info("cleaned up published messages", zap.Int64("deleted", deleted))
			}
		}
	}
}

// publishMessage delivers one outbox message to the broker
func (w *OutboxRelay) publishMessage(ctx context.Context, msg *domain.OutboxMessage) error {
	return w.producer.Produce(ctx, &kafka.Message{
		Topic: msg.Topic,
		Key:   []byte(msg.PartitionKey),
		Value: msg.Payload,
		Headers: map[string]string{
			"event_type":   msg.EventType,
			"aggregate_id": msg.AggregateID,
			"content_type": "application/json",
			"source":       "outbox-relay",
		},
		Timestamp: time.Now(),
	})
}
