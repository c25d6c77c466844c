package domain

import "time"

// Notification is the record the consumer derives from a booking event for
// one recipient. The uniqueness constraint on (event_id, recipient_id) makes
// consumption idempotent: re-delivery of the same event is detected and
// dropped instead of producing a duplicate. Actual transport (push, mail,
// SMS) is owned by the delivery subsystem.
type Notification struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	RecipientID string    `json:"recipient_id"`
	BookingID   string    `json:"booking_id"`
	EventType   string    `json:"event_type"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}
