package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/internal/repository"
	"github.com/Kiran9223/service-link-sub000/pkg/kafka"
	"github.com/Kiran9223/service-link-sub000/pkg/logger"
	"github.com/Kiran9223/service-link-sub000/pkg/retry"
)

// Consumer is the broker surface the notification consumer needs
type Consumer interface {
	Poll(ctx context.Context) ([]*kgo.Record, error)
	CommitRecords(ctx context.Context, records []*kgo.Record) error
}

// NotificationConsumerConfig contains configuration for the consumer
type NotificationConsumerConfig struct {
	// MaxRetries is how many times a failed record is retried in-process
	// before being parked on the DLQ topic
	MaxRetries int
	// RetryDelay is the initial backoff between in-process retries
	RetryDelay time.Duration
	// DLQTopic receives records that exhausted their retries
	DLQTopic string
}

// DefaultNotificationConsumerConfig returns default configuration
func DefaultNotificationConsumerConfig() *NotificationConsumerConfig {
	return &NotificationConsumerConfig{
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
		DLQTopic:   "booking-events.dlq",
	}
}

// NotificationConsumer consumes booking events and derives one notification
// per recipient. Offsets are committed only after every record in the batch
// is durably handled, so a crash replays uncommitted records; the unique
// (event_id, recipient_id) constraint turns those replays into no-ops.
// Records that keep failing are parked on the DLQ topic instead of blocking
// the partition.
type NotificationConsumer struct {
	consumer         Consumer
	producer         Producer
	notificationRepo repository.NotificationRepository
	config           *NotificationConsumerConfig
	retryCfg         *retry.Config
	log              *logger.Logger
	stopCh           chan struct{}
	wg               sync.WaitGroup
	mu               sync.Mutex
	running          bool
}

// NewNotificationConsumer creates a new notification consumer
func NewNotificationConsumer(
	consumer Consumer,
	producer Producer,
	notificationRepo repository.NotificationRepository,
	config *NotificationConsumerConfig,
) *NotificationConsumer {
	if config == nil {
		config = DefaultNotificationConsumerConfig()
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = config.MaxRetries
	retryCfg.InitialInterval = config.RetryDelay

	return &NotificationConsumer{
		consumer:         consumer,
		producer:         producer,
		notificationRepo: notificationRepo,
		config:           config,
		retryCfg:         retryCfg,
		log:              logger.Get().Named("notification-consumer"),
		stopCh:           make(chan struct{}),
	}
}

// Start starts the consume loop
func (w *NotificationConsumer) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("notification consumer already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("starting notification consumer",
		zap.Int("max_retries", w.config.MaxRetries),
		zap.String("dlq_topic", w.config.DLQTopic),
	)

	w.wg.Add(1)
	go w.consumeLoop(ctx)

	return nil
}

// Stop stops the consumer and waits for the in-flight batch
func (w *NotificationConsumer) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("stopping notification consumer")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("notification consumer stopped")
}

// consumeLoop polls, handles and commits record batches
func (w *NotificationConsumer) consumeLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
		}

		records, err := w.consumer.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("failed to poll records", zap.Error(err))
			continue
		}
		if len(records) == 0 {
			continue
		}

		for _, record := range records {
			w.handleRecord(ctx, record)
		}

		// Commit after every record is either stored or parked on the DLQ.
		// Committing earlier could lose events on a crash.
		if err := w.consumer.CommitRecords(ctx, records); err != nil {
			w.log.Error("failed to commit records", zap.Error(err))
		}
	}
}

// handleRecord processes one record with bounded retries, then parks it on
// the DLQ if it still fails
func (w *NotificationConsumer) handleRecord(ctx context.Context, record *kgo.Record) {
	err := retry.Do(ctx, w.retryCfg, func(ctx context.Context) error {
		return w.processRecord(ctx, record)
	})
	if err == nil {
		return
	}

	w.log.Error("record exhausted retries, sending to DLQ",
		zap.String("topic", record.Topic),
		zap.Int64("offset", record.Offset),
		zap.Error(err),
	)

	if dlqErr := w.sendToDLQ(ctx, record, err); dlqErr != nil {
		// The record stays uncommitted only if the whole batch fails; a DLQ
		// publish failure here is logged and the offset still advances, the
		// same trade a stalled partition would force anyway.
		w.log.Error("failed to send record to DLQ",
			zap.String("topic", record.Topic),
			zap.Int64("offset", record.Offset),
			zap.Error(dlqErr),
		)
	}
}

// processRecord decodes one event and stores its notifications
func (w *NotificationConsumer) processRecord(ctx context.Context, record *kgo.Record) error {
	var event domain.BookingEvent
	if err := json.Unmarshal(record.Value, &event); err != nil {
		// A malformed payload never becomes valid; skip straight to the DLQ.
		return retry.Permanent(fmt.Errorf("failed to decode event: %w", err))
	}

	for _, n := range notificationsForEvent(&event) {
		inserted, err := w.notificationRepo.Create(ctx, n)
		if err != nil {
			return err
		}
		if !inserted {
			w.log.Debug("duplicate event delivery dropped",
				zap.String("event_id", n.EventID),
				zap.String("recipient_id", n.RecipientID),
			)
		}
	}

	return nil
}

// sendToDLQ forwards a poisoned record to the DLQ topic with failure context
func (w *NotificationConsumer) sendToDLQ(ctx context.Context, record *kgo.Record, cause error) error {
	return w.producer.Produce(ctx, &kafka.Message{
		Topic: w.config.DLQTopic,
		Key:   record.Key,
		Value: record.Value,
		Headers: map[string]string{
			"origin_topic": record.Topic,
			"error":        cause.Error(),
			"failed_at":    time.Now().UTC().Format(time.RFC3339),
		},
		Timestamp: time.Now(),
	})
}

// notificationsForEvent derives the per-recipient notifications for one
// booking event. Both parties are notified; the texts differ by audience.
func notificationsForEvent(event *domain.BookingEvent) []*domain.Notification {
	customerTitle, providerTitle := notificationTitles(event.EventType)
	if customerTitle == "" && providerTitle == "" {
		return nil
	}

	body := notificationBody(event)
	now := time.Now()
	var notifications []*domain.Notification

	if customerTitle != "" {
		notifications = append(notifications, &domain.Notification{
			ID:          uuid.New().String(),
			EventID:     event.EventID,
			RecipientID: event.Payload.CustomerID,
			BookingID:   event.BookingID,
			EventType:   event.EventType.String(),
			Title:       customerTitle,
			Body:        body,
			CreatedAt:   now,
		})
	}
	if providerTitle != "" {
		notifications = append(notifications, &domain.Notification{
			ID:          uuid.New().String(),
			EventID:     event.EventID,
			RecipientID: event.Payload.ProviderID,
			BookingID:   event.BookingID,
			EventType:   event.EventType.String(),
			Title:       providerTitle,
			Body:        body,
			CreatedAt:   now,
		})
	}

	return notifications
}

// notificationTitles returns the customer and provider facing titles for an
// event type. Unknown types yield no notifications.
func notificationTitles(eventType domain.BookingEventType) (customer, provider string) {
	switch eventType {
	case domain.BookingEventRequested:
		return "Booking request sent", "New booking request"
	case domain.BookingEventConfirmed:
		return "Booking confirmed", "Booking confirmed"
	case domain.BookingEventStarted:
		return "Service started", "Service started"
	case domain.BookingEventCompleted:
		return "Service completed", "Service completed"
	case domain.BookingEventCancelled:
		return "Booking cancelled", "Booking cancelled"
	}
	return "", ""
}

// notificationBody renders the shared notification body
func notificationBody(event *domain.BookingEvent) string {
	p := event.Payload
	body := fmt.Sprintf("Booking %s scheduled %s to %s",
		p.BookingID,
		p.ScheduledStart.Format(time.RFC3339),
		p.ScheduledEnd.Format(time.RFC3339),
	)
	if event.EventType == domain.BookingEventCancelled && p.CancellationReason != "" {
		body = fmt.Sprintf("%s. Reason: %s", body, p.CancellationReason)
	}
	return body
}
