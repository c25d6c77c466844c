package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/internal/repository"
)

// EventPublisher stages booking lifecycle events for delivery. Publish is
// transactional: the event is recorded in the same transaction as the
// booking mutation, and the relay worker delivers it to the broker after
// commit. An event is therefore staged if and only if its transition
// committed.
type EventPublisher interface {
	// Publish stages an event for the given transition within tx.
	// correlationID threads all events of one business transaction.
	Publish(ctx context.Context, tx pgx.Tx, eventType domain.BookingEventType, booking *domain.Booking, correlationID string) error
}

// OutboxEventPublisher implements EventPublisher on the transactional outbox
type OutboxEventPublisher struct {
	outboxRepo repository.OutboxRepository
	topic      string
}

// NewOutboxEventPublisher creates a new OutboxEventPublisher
func NewOutboxEventPublisher(outboxRepo repository.OutboxRepository, topic string) *OutboxEventPublisher {
	if topic == "" {
		topic = "booking-events"
	}
	return &OutboxEventPublisher{outboxRepo: outboxRepo, topic: topic}
}

// Publish stages an event in the outbox within the caller's transaction
func (p *OutboxEventPublisher) Publish(ctx context.Context, tx pgx.Tx, eventType domain.BookingEventType, booking *domain.Booking, correlationID string) error {
	event := domain.NewBookingEvent(eventType, booking, uuid.New().String(), correlationID)

	msg, err := domain.NewOutboxMessage(event, p.topic)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}

	if err := p.outboxRepo.CreateTx(ctx, tx, msg); err != nil {
		return fmt.Errorf("failed to stage event %s: %w", eventType, err)
	}

	return nil
}

// NoOpEventPublisher discards events. Used in tests and tooling that does
// not care about the notification pipeline.
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new NoOpEventPublisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// Publish discards the event
func (p *NoOpEventPublisher) Publish(ctx context.Context, tx pgx.Tx, eventType domain.BookingEventType, booking *domain.Booking, correlationID string) error {
	return nil
}

// Ensure implementations satisfy EventPublisher
var (
	_ EventPublisher = (*OutboxEventPublisher)(nil)
	_ EventPublisher = (*NoOpEventPublisher)(nil)
)
