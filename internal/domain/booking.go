package domain

import (
	"strings"
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// allowedTransitions is the booking lifecycle transition table.
// Terminal states have no outgoing edges.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
}

// CanTransitionTo reports whether the transition table permits moving to
// the target status.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Booking is the transactional record connecting a customer, a provider,
// a service and (nullably) a slot.
type Booking struct {
	ID                  string        `json:"id"`
	CustomerID          string        `json:"customer_id"`
	ProviderID          string        `json:"provider_id"`
	ServiceID           string        `json:"service_id"`
	SlotID              *string       `json:"slot_id,omitempty"`
	ScheduledDate       time.Time     `json:"scheduled_date"`
	ScheduledStart      time.Time     `json:"scheduled_start"`
	ScheduledEnd        time.Time     `json:"scheduled_end"`
	DurationMinutes     int           `json:"duration_minutes"`
	ActualStart         *time.Time    `json:"actual_start,omitempty"`
	ActualEnd           *time.Time    `json:"actual_end,omitempty"`
	Address             string        `json:"address,omitempty"`
	Latitude            *float64      `json:"latitude,omitempty"`
	Longitude           *float64      `json:"longitude,omitempty"`
	Price               float64       `json:"price"`
	Status              BookingStatus `json:"status"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
	CancellationReason  string        `json:"cancellation_reason,omitempty"`
	CancelledBy         string        `json:"cancelled_by,omitempty"`
	RequestedAt         time.Time     `json:"requested_at"`
	ConfirmedAt         *time.Time    `json:"confirmed_at,omitempty"`
	CompletedAt         *time.Time    `json:"completed_at,omitempty"`
	CancelledAt         *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// Validate validates the booking's identity fields
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrInvalidBookingID
	}
	if strings.TrimSpace(b.CustomerID) == "" {
		return ErrInvalidCustomerID
	}
	if strings.TrimSpace(b.ProviderID) == "" {
		return ErrInvalidProviderID
	}
	if strings.TrimSpace(b.ServiceID) == "" {
		return ErrInvalidServiceID
	}
	return nil
}

// BelongsToCustomer checks if the booking belongs to the given customer
func (b *Booking) BelongsToCustomer(customerID string) bool {
	return b.CustomerID == customerID
}

// BelongsToProvider checks if the booking belongs to the given provider
func (b *Booking) BelongsToProvider(providerID string) bool {
	return b.ProviderID == providerID
}

// Confirm moves the booking from pending to confirmed.
func (b *Booking) Confirm(now time.Time) error {
	if !b.Status.CanTransitionTo(BookingStatusConfirmed) {
		return ErrIllegalTransition
	}
	b.Status = BookingStatusConfirmed
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	return nil
}

// StartService moves the booking from confirmed to in_progress and stamps
// the actual service start.
func (b *Booking) StartService(now time.Time) error {
	if !b.Status.CanTransitionTo(BookingStatusInProgress) {
		return ErrIllegalTransition
	}
	b.Status = BookingStatusInProgress
	b.ActualStart = &now
	b.UpdatedAt = now
	return nil
}

// CompleteService moves the booking from in_progress to completed. A booking
// without a recorded actual start cannot complete; that state only arises
// from corrupted rows, and surfacing it beats silently stamping times.
func (b *Booking) CompleteService(now time.Time) error {
	if !b.Status.CanTransitionTo(BookingStatusCompleted) {
		return ErrIllegalTransition
	}
	if b.ActualStart == nil {
		return ErrNotStarted
	}
	b.Status = BookingStatusCompleted
	b.ActualEnd = &now
	b.CompletedAt = &now
	b.UpdatedAt = now
	return nil
}

// Cancel moves the booking to cancelled from any non-terminal state.
func (b *Booking) Cancel(now time.Time, actor Actor, reason string) error {
	if !b.Status.CanTransitionTo(BookingStatusCancelled) {
		return ErrIllegalTransition
	}
	if strings.TrimSpace(reason) == "" {
		return ErrCancelReasonMissing
	}
	b.Status = BookingStatusCancelled
	b.CancellationReason = reason
	b.CancelledBy = actor.ID
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}
