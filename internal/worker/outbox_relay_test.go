package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/internal/repository"
	"github.com/Kiran9223/service-link-sub000/pkg/kafka"
)

// MockOutboxRepository is a mock implementation of OutboxRepository
type MockOutboxRepository struct {
	CreateTxFunc           func(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error
	GetPendingMessagesFunc func(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	GetFailedMessagesFunc  func(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	MarkAsPublishedFunc    func(ctx context.Context, id string) error
	MarkAsFailedFunc       func(ctx context.Context, id string, errMsg string) error
	DeletePublishedFunc    func(ctx context.Context, olderThanDays int) (int64, error)
}

func (m *MockOutboxRepository) CreateTx(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, msg)
	}
	return nil
}

func (m *MockOutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	if m.GetPendingMessagesFunc != nil {
		return m.GetPendingMessagesFunc(ctx, limit)
	}
	return []*domain.OutboxMessage{}, nil
}

func (m *MockOutboxRepository) GetFailedMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	if m.GetFailedMessagesFunc != nil {
		return m.GetFailedMessagesFunc(ctx, limit)
	}
	return []*domain.OutboxMessage{}, nil
}

func (m *MockOutboxRepository) MarkAsPublished(ctx context.Context, id string) error {
	if m.MarkAsPublishedFunc != nil {
		return m.MarkAsPublishedFunc(ctx, id)
	}
	return nil
}

func (m *MockOutboxRepository) MarkAsFailed(ctx context.Context, id string, errMsg string) error {
	if m.MarkAsFailedFunc != nil {
		return m.MarkAsFailedFunc(ctx, id, errMsg)
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, olderThanDays int) (int64, error) {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, olderThanDays)
	}
	return 0, nil
}

var _ repository.OutboxRepository = (*MockOutboxRepository)(nil)

// MockProducer is a mock implementation of Producer
type MockProducer struct {
	ProduceFunc func(ctx context.Context, msg *kafka.Message) error

	Produced []*kafka.Message
}

func (m *MockProducer) Produce(ctx context.Context, msg *kafka.Message) error {
	if m.ProduceFunc != nil {
		return m.ProduceFunc(ctx, msg)
	}
	m.Produced = append(m.Produced, msg)
	return nil
}

var _ Producer = (*MockProducer)(nil)

func pendingMessage(id string) *domain.OutboxMessage {
	return &domain.OutboxMessage{
		ID:           id,
		AggregateID:  "booking-001",
		EventType:    domain.BookingEventRequested.String(),
		Payload:      []byte(`{"event_id":"` + id + `"}`),
		Topic:        "booking-events",
		PartitionKey: "provider-001",
		Status:       domain.OutboxStatusPending,
		MaxRetries:   5,
		CreatedAt:    time.Now(),
	}
}

func TestDefaultOutboxRelayConfig(t *testing.T) {
	config := DefaultOutboxRelayConfig()

	if config.PollInterval != 100*time.Millisecond {
		t.Errorf("PollInterval = %v, want %v", config.PollInterval, 100*time.Millisecond)
	}
	if config.BatchSize != 100 {
		t.Errorf("BatchSize = %v, want %v", config.BatchSize, 100)
	}
	if config.RetryInterval != 5*time.Second {
		t.Errorf("RetryInterval = %v, want %v", config.RetryInterval, 5*time.Second)
	}
	if config.CleanupRetentionDays != 7 {
		t.Errorf("CleanupRetentionDays = %v, want %v", config.CleanupRetentionDays, 7)
	}
}

func TestOutboxRelay_ProcessPendingMessages(t *testing.T) {
	var published, failed []string

	outboxRepo := &MockOutboxRepository{
		GetPendingMessagesFunc: func(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
			return []*domain.OutboxMessage{pendingMessage("msg-1"), pendingMessage("msg-2")}, nil
		},
		MarkAsPublishedFunc: func(ctx context.Context, id string) error {
			published = append(published, id)
			return nil
		},
		MarkAsFailedFunc: func(ctx context.Context, id string, errMsg string) error {
			failed = append(failed, id)
			return nil
		},
	}
	producer := &MockProducer{}

	relay := NewOutboxRelay(outboxRepo, producer, nil)
	relay.processPendingMessages(context.Background())

	if len(producer.Produced) != 2 {
		t.Fatalf("produced %d messages, want 2", len(producer.Produced))
	}
	if len(published) != 2 || published[0] != "msg-1" || published[1] != "msg-2" {
		t.Errorf("published = %v, want [msg-1 msg-2] in order", published)
	}
	if len(failed) != 0 {
		t.Errorf("failed = %v, want none", failed)
	}

	msg := producer.Produced[0]
	if msg.Topic != "booking-events" {
		t.Errorf("Topic = %v, want booking-events", msg.Topic)
	}
	if string(msg.Key) != "provider-001" {
		t.Errorf("Key = %s, want provider-001 (partition key)", msg.Key)
	}
	if msg.Headers["event_type"] != domain.BookingEventRequested.String() {
		t.Errorf("event_type header = %v", msg.Headers["event_type"])
	}
}

func TestOutboxRelay_ProduceFailureMarksFailed(t *testing.T) {
	var published, failed []string

	outboxRepo := &MockOutboxRepository{
		GetPendingMessagesFunc: func(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
			return []*domain.OutboxMessage{pendingMessage("msg-1"), pendingMessage("msg-2")}, nil
		},
		MarkAsPublishedFunc: func(ctx context.Context, id string) error {
			published = append(published, id)
			return nil
		},
		MarkAsFailedFunc: func(ctx context.Context, id string, errMsg string) error {
			failed = append(failed, id)
			return nil
		},
	}
	producer := &MockProducer{
		ProduceFunc: func(ctx context.Context, msg *kafka.Message) error {
			if string(msg.Value) == `{"event_id":"msg-1"}` {
				return errors.New("broker unreachable")
			}
			return nil
		},
	}

	relay := NewOutboxRelay(outboxRepo, producer, nil)
	relay.processPendingMessages(context.Background())

	// One failure does not stop the rest of the batch.
	if len(failed) != 1 || failed[0] != "msg-1" {
		t.Errorf("failed = %v, want [msg-1]", failed)
	}
	if len(published) != 1 || published[0] != "msg-2" {
		t.Errorf("published = %v, want [msg-2]", published)
	}
}

func TestOutboxRelay_ProcessFailedMessages(t *testing.T) {
	var published []string

	msg := pendingMessage("msg-1")
	msg.Status = domain.OutboxStatusFailed
	msg.RetryCount = 2

	outboxRepo := &MockOutboxRepository{
		GetFailedMessagesFunc: func(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
			return []*domain.OutboxMessage{msg}, nil
		},
		MarkAsPublishedFunc: func(ctx context.Context, id string) error {
			published = append(published, id)
			return nil
		},
	}
	producer := &MockProducer{}

	relay := NewOutboxRelay(outboxRepo, producer, nil)
	relay.processFailedMessages(context.Background())

	if len(published) != 1 || published[0] != "msg-1" {
		t.Errorf("published = %v, want [msg-1]", published)
	}
}

func TestOutboxRelay_StartStop(t *testing.T) {
	relay := NewOutboxRelay(&MockOutboxRepository{}, &MockProducer{}, &OutboxRelayConfig{
		PollInterval:         10 * time.Millisecond,
		BatchSize:            10,
		RetryInterval:        10 * time.Millisecond,
		CleanupInterval:      time.Hour,
		CleanupRetentionDays: 7,
	})

	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("Start() unexpected error = %v", err)
	}
	if err := relay.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}

	time.Sleep(30 * time.Millisecond)
	relay.Stop()

	// Stop again is a no-op.
	relay.Stop()
}
