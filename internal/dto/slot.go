package dto

import (
	"time"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
)

// CreateSlotRequest represents request to create an availability slot
type CreateSlotRequest struct {
	SlotDate string    `json:"slot_date" binding:"required"`
	StartAt  time.Time `json:"start_at" binding:"required"`
	EndAt    time.Time `json:"end_at" binding:"required"`
}

// UpdateSlotRequest represents request to reschedule a slot
type UpdateSlotRequest struct {
	SlotDate string    `json:"slot_date" binding:"required"`
	StartAt  time.Time `json:"start_at" binding:"required"`
	EndAt    time.Time `json:"end_at" binding:"required"`
}

// SetAvailabilityRequest represents request to open or close a slot.
// Available is a pointer so that an explicit false is distinguishable from
// a missing field.
type SetAvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// SlotResponse represents a slot in API responses
type SlotResponse struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"provider_id"`
	SlotDate   string    `json:"slot_date"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	Available  bool      `json:"available"`
	Booked     bool      `json:"booked"`
	BookingID  *string   `json:"booking_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SlotDateLayout is the wire format for calendar dates.
const SlotDateLayout = "2006-01-02"

// ParseDate parses the request's slot date
func (r *CreateSlotRequest) ParseDate() (time.Time, error) {
	return time.Parse(SlotDateLayout, r.SlotDate)
}

// ParseDate parses the request's slot date
func (r *UpdateSlotRequest) ParseDate() (time.Time, error) {
	return time.Parse(SlotDateLayout, r.SlotDate)
}

// SlotFromDomain converts a domain Slot to a SlotResponse
func SlotFromDomain(s *domain.Slot) *SlotResponse {
	return &SlotResponse{
		ID:         s.ID,
		ProviderID: s.ProviderID,
		SlotDate:   s.SlotDate.Format(SlotDateLayout),
		StartAt:    s.StartAt,
		EndAt:      s.EndAt,
		Available:  s.Available,
		Booked:     s.Booked,
		BookingID:  s.BookingID,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// SlotsFromDomain converts a slice of domain Slots
func SlotsFromDomain(slots []*domain.Slot) []*SlotResponse {
	out := make([]*SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotFromDomain(s))
	}
	return out
}
