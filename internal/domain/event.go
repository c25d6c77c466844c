package domain

import (
	"time"
)

// BookingEventType identifies a committed booking lifecycle change
type BookingEventType string

const (
	BookingEventRequested BookingEventType = "booking.requested"
	BookingEventConfirmed BookingEventType = "booking.confirmed"
	BookingEventStarted   BookingEventType = "booking.started"
	BookingEventCompleted BookingEventType = "booking.completed"
	BookingEventCancelled BookingEventType = "booking.cancelled"
)

// String returns the string representation of BookingEventType
func (t BookingEventType) String() string {
	return string(t)
}

// BookingEventSchemaVersion is bumped whenever the payload shape changes.
const BookingEventSchemaVersion = 1

// BookingEvent is the envelope handed to the notification pipeline for one
// committed lifecycle change. Events for one provider are partitioned by
// provider id, so per-provider delivery order follows commit order;
// cross-provider ordering is not guaranteed.
type BookingEvent struct {
	EventID       string              `json:"event_id"`
	EventType     BookingEventType    `json:"event_type"`
	SchemaVersion int                 `json:"schema_version"`
	OccurredAt    time.Time           `json:"occurred_at"`
	BookingID     string              `json:"booking_id"`
	CorrelationID string              `json:"correlation_id"`
	Payload       BookingEventPayload `json:"payload"`
}

// BookingEventPayload carries the booking fields the notification pipeline
// renders from.
type BookingEventPayload struct {
	BookingID          string        `json:"booking_id"`
	CustomerID         string        `json:"customer_id"`
	ProviderID         string        `json:"provider_id"`
	ServiceID          string        `json:"service_id"`
	Status             BookingStatus `json:"status"`
	ScheduledStart     time.Time     `json:"scheduled_start"`
	ScheduledEnd       time.Time     `json:"scheduled_end"`
	Price              float64       `json:"price"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CancelledBy        string        `json:"cancelled_by,omitempty"`
}

// NewBookingEvent builds the envelope for one committed transition.
// correlationID threads all events of one business transaction.
func NewBookingEvent(eventType BookingEventType, booking *Booking, eventID, correlationID string) *BookingEvent {
	return &BookingEvent{
		EventID:       eventID,
		EventType:     eventType,
		SchemaVersion: BookingEventSchemaVersion,
		OccurredAt:    time.Now(),
		BookingID:     booking.ID,
		CorrelationID: correlationID,
		Payload: BookingEventPayload{
			BookingID:          booking.ID,
			CustomerID:         booking.CustomerID,
			ProviderID:         booking.ProviderID,
			ServiceID:          booking.ServiceID,
			Status:             booking.Status,
			ScheduledStart:     booking.ScheduledStart,
			ScheduledEnd:       booking.ScheduledEnd,
			Price:              booking.Price,
			CancellationReason: booking.CancellationReason,
			CancelledBy:        booking.CancelledBy,
		},
	}
}

// PartitionKey returns the broker partition key. Partitioning by provider
// identity is the ordering primitive: all events concerning one provider
// land on one partition in commit order.
func (e *BookingEvent) PartitionKey() string {
	return e.Payload.ProviderID
}
