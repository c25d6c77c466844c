package domain

import (
	"encoding/json"
	"time"
)

// OutboxStatus represents the status of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// IsValid checks if the status is a valid OutboxStatus
func (s OutboxStatus) IsValid() bool {
	switch s {
	case OutboxStatusPending, OutboxStatusPublished, OutboxStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of OutboxStatus
func (s OutboxStatus) String() string {
	return string(s)
}

// OutboxMessage is one row of the transactional outbox. It is written in
// the same transaction as the booking mutation it describes, so a publish
// failure can never roll back committed business state and a crashed relay
// can never lose a committed event.
type OutboxMessage struct {
	ID           string       `json:"id"`
	AggregateID  string       `json:"aggregate_id"`
	EventType    string       `json:"event_type"`
	Payload      []byte       `json:"payload"`
	Topic        string       `json:"topic"`
	PartitionKey string       `json:"partition_key"`
	Status       OutboxStatus `json:"status"`
	RetryCount   int          `json:"retry_count"`
	MaxRetries   int          `json:"max_retries"`
	LastError    string       `json:"last_error,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	PublishedAt  *time.Time   `json:"published_at,omitempty"`
}

// NewOutboxMessage wraps a booking event for the outbox table.
func NewOutboxMessage(event *BookingEvent, topic string) (*OutboxMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &OutboxMessage{
		ID:           event.EventID,
		AggregateID:  event.BookingID,
		EventType:    event.EventType.String(),
		Payload:      payload,
		Topic:        topic,
		PartitionKey: event.PartitionKey(),
		Status:       OutboxStatusPending,
		MaxRetries:   5,
		CreatedAt:    time.Now(),
	}, nil
}

// CanRetry checks if the message can be retried
func (m *OutboxMessage) CanRetry() bool {
	return m.Status == OutboxStatusFailed && m.RetryCount < m.MaxRetries
}

// MarkAsPublished marks the message as successfully published
func (m *OutboxMessage) MarkAsPublished() {
	now := time.Now()
	m.Status = OutboxStatusPublished
	m.PublishedAt = &now
}

// MarkAsFailed marks the message as failed
func (m *OutboxMessage) MarkAsFailed(errMsg string) {
	m.Status = OutboxStatusFailed
	m.LastError = errMsg
	m.RetryCount++
}

// Event unmarshals the payload back into the envelope.
func (m *OutboxMessage) Event() (*BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
