package domain

import (
	"testing"
	"time"
)

func testEvent() *BookingEvent {
	booking := &Booking{
		ID:             "booking-001",
		CustomerID:     "customer-001",
		ProviderID:     "provider-001",
		ServiceID:      "service-001",
		Status:         BookingStatusPending,
		ScheduledStart: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		ScheduledEnd:   time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
		Price:          160,
	}
	return NewBookingEvent(BookingEventRequested, booking, "event-001", "corr-001")
}

func TestNewBookingEvent(t *testing.T) {
	event := testEvent()

	if event.EventID != "event-001" {
		t.Errorf("EventID = %v, want event-001", event.EventID)
	}
	if event.SchemaVersion != BookingEventSchemaVersion {
		t.Errorf("SchemaVersion = %v, want %v", event.SchemaVersion, BookingEventSchemaVersion)
	}
	if event.CorrelationID != "corr-001" {
		t.Errorf("CorrelationID = %v, want corr-001", event.CorrelationID)
	}
	if event.PartitionKey() != "provider-001" {
		t.Errorf("PartitionKey() = %v, want provider-001", event.PartitionKey())
	}
}

func TestNewOutboxMessage(t *testing.T) {
	event := testEvent()

	msg, err := NewOutboxMessage(event, "booking-events")
	if err != nil {
		t.Fatalf("NewOutboxMessage() unexpected error = %v", err)
	}

	if msg.ID != event.EventID {
		t.Errorf("ID = %v, want %v", msg.ID, event.EventID)
	}
	if msg.AggregateID != event.BookingID {
		t.Errorf("AggregateID = %v, want %v", msg.AggregateID, event.BookingID)
	}
	if msg.PartitionKey != "provider-001" {
		t.Errorf("PartitionKey = %v, want provider-001", msg.PartitionKey)
	}
	if msg.Status != OutboxStatusPending {
		t.Errorf("Status = %v, want %v", msg.Status, OutboxStatusPending)
	}

	decoded, err := msg.Event()
	if err != nil {
		t.Fatalf("Event() unexpected error = %v", err)
	}
	if decoded.EventID != event.EventID || decoded.Payload.CustomerID != "customer-001" {
		t.Error("Event() did not round-trip the envelope")
	}
}

func TestOutboxMessage_Lifecycle(t *testing.T) {
	event := testEvent()
	msg, err := NewOutboxMessage(event, "booking-events")
	if err != nil {
		t.Fatalf("NewOutboxMessage() unexpected error = %v", err)
	}

	if msg.CanRetry() {
		t.Error("pending message should not be retryable")
	}

	msg.MarkAsFailed("broker unreachable")
	if msg.Status != OutboxStatusFailed || msg.RetryCount != 1 || msg.LastError != "broker unreachable" {
		t.Errorf("MarkAsFailed() state = %+v", msg)
	}
	if !msg.CanRetry() {
		t.Error("failed message below max retries should be retryable")
	}

	for i := 0; i < msg.MaxRetries; i++ {
		msg.MarkAsFailed("still down")
	}
	if msg.CanRetry() {
		t.Error("message past max retries should not be retryable")
	}

	msg.MarkAsPublished()
	if msg.Status != OutboxStatusPublished || msg.PublishedAt == nil {
		t.Error("MarkAsPublished() did not update state")
	}
}
