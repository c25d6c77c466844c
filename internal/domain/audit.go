package domain

import "time"

// AuditAction identifies the kind of state-changing action recorded
type AuditAction string

const (
	AuditActionCreated      AuditAction = "booking_created"
	AuditActionStatusChange AuditAction = "status_change"
	AuditActionCancelled    AuditAction = "booking_cancelled"
)

// String returns the string representation of AuditAction
func (a AuditAction) String() string {
	return string(a)
}

// AuditEntry is one append-only record of a state-changing action against a
// booking. Entries are never updated or deleted.
type AuditEntry struct {
	ID        int64       `json:"id"`
	BookingID string      `json:"booking_id"`
	Action    AuditAction `json:"action"`
	OldValue  string      `json:"old_value,omitempty"`
	NewValue  string      `json:"new_value,omitempty"`
	ActorID   string      `json:"actor_id"`
	ActorRole ActorRole   `json:"actor_role"`
	Comment   string      `json:"comment,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewCreationAudit records the creation of a booking.
func NewCreationAudit(booking *Booking, actor Actor) *AuditEntry {
	return &AuditEntry{
		BookingID: booking.ID,
		Action:    AuditActionCreated,
		NewValue:  booking.Status.String(),
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		CreatedAt: time.Now(),
	}
}

// NewStatusChangeAudit records a lifecycle transition.
func NewStatusChangeAudit(booking *Booking, from, to BookingStatus, actor Actor) *AuditEntry {
	return &AuditEntry{
		BookingID: booking.ID,
		Action:    AuditActionStatusChange,
		OldValue:  from.String(),
		NewValue:  to.String(),
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		CreatedAt: time.Now(),
	}
}

// NewCancellationAudit records a cancellation with its reason.
func NewCancellationAudit(booking *Booking, from BookingStatus, actor Actor, reason string) *AuditEntry {
	return &AuditEntry{
		BookingID: booking.ID,
		Action:    AuditActionCancelled,
		OldValue:  from.String(),
		NewValue:  BookingStatusCancelled.String(),
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Comment:   reason,
		CreatedAt: time.Now(),
	}
}
