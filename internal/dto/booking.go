package dto

import (
	"time"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
)

// ReserveRequest represents request to reserve a slot. The schedule fields
// echo the slot's own schedule; a mismatch means the client is acting on
// stale state and the reservation is rejected.
type ReserveRequest struct {
	SlotID              string    `json:"slot_id" binding:"required"`
	ServiceID           string    `json:"service_id" binding:"required"`
	SlotDate            string    `json:"slot_date" binding:"required"`
	StartAt             time.Time `json:"start_at" binding:"required"`
	EndAt               time.Time `json:"end_at" binding:"required"`
	Address             string    `json:"address,omitempty"`
	Latitude            *float64  `json:"latitude,omitempty"`
	Longitude           *float64  `json:"longitude,omitempty"`
	SpecialInstructions string    `json:"special_instructions,omitempty"`
}

// ParseDate parses the request's slot date
func (r *ReserveRequest) ParseDate() (time.Time, error) {
	return time.Parse(SlotDateLayout, r.SlotDate)
}

// CancelBookingRequest represents request to cancel a booking
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID                  string     `json:"id"`
	CustomerID          string     `json:"customer_id"`
	ProviderID          string     `json:"provider_id"`
	ServiceID           string     `json:"service_id"`
	SlotID              *string    `json:"slot_id,omitempty"`
	ScheduledDate       string     `json:"scheduled_date"`
	ScheduledStart      time.Time  `json:"scheduled_start"`
	ScheduledEnd        time.Time  `json:"scheduled_end"`
	DurationMinutes     int        `json:"duration_minutes"`
	ActualStart         *time.Time `json:"actual_start,omitempty"`
	ActualEnd           *time.Time `json:"actual_end,omitempty"`
	Address             string     `json:"address,omitempty"`
	Price               float64    `json:"price"`
	Status              string     `json:"status"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
	CancellationReason  string     `json:"cancellation_reason,omitempty"`
	CancelledBy         string     `json:"cancelled_by,omitempty"`
	RequestedAt         time.Time  `json:"requested_at"`
	ConfirmedAt         *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// BookingFromDomain converts a domain Booking to a BookingResponse
func BookingFromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:                  b.ID,
		CustomerID:          b.CustomerID,
		ProviderID:          b.ProviderID,
		ServiceID:           b.ServiceID,
		SlotID:              b.SlotID,
		ScheduledDate:       b.ScheduledDate.Format(SlotDateLayout),
		ScheduledStart:      b.ScheduledStart,
		ScheduledEnd:        b.ScheduledEnd,
		DurationMinutes:     b.DurationMinutes,
		ActualStart:         b.ActualStart,
		ActualEnd:           b.ActualEnd,
		Address:             b.Address,
		Price:               b.Price,
		Status:              string(b.Status),
		SpecialInstructions: b.SpecialInstructions,
		CancellationReason:  b.CancellationReason,
		CancelledBy:         b.CancelledBy,
		RequestedAt:         b.RequestedAt,
		ConfirmedAt:         b.ConfirmedAt,
		CompletedAt:         b.CompletedAt,
		CancelledAt:         b.CancelledAt,
		CreatedAt:           b.CreatedAt,
	}
}

// BookingsFromDomain converts a slice of domain Bookings
func BookingsFromDomain(bookings []*domain.Booking) []*BookingResponse {
	out := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingFromDomain(b))
	}
	return out
}

// AuditEntryResponse represents one audit record in API responses
type AuditEntryResponse struct {
	ID        int64     `json:"id"`
	BookingID string    `json:"booking_id"`
	Action    string    `json:"action"`
	OldValue  string    `json:"old_value,omitempty"`
	NewValue  string    `json:"new_value,omitempty"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditFromDomain converts a domain AuditEntry to an AuditEntryResponse
func AuditFromDomain(e *domain.AuditEntry) *AuditEntryResponse {
	return &AuditEntryResponse{
		ID:        e.ID,
		BookingID: e.BookingID,
		Action:    e.Action.String(),
		OldValue:  e.OldValue,
		NewValue:  e.NewValue,
		ActorID:   e.ActorID,
		ActorRole: e.ActorRole.String(),
		Comment:   e.Comment,
		CreatedAt: e.CreatedAt,
	}
}

// AuditTrailFromDomain converts a slice of domain AuditEntries
func AuditTrailFromDomain(entries []*domain.AuditEntry) []*AuditEntryResponse {
	out := make([]*AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditFromDomain(e))
	}
	return out
}

// PaginatedBookingsResponse wraps a page of bookings
type PaginatedBookingsResponse struct {
	Bookings []*BookingResponse `json:"bookings"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Error string `json:"error"`
}
