package domain

import (
	"strings"
	"time"
)

// DefaultBookingWindowDays is how far ahead a provider may offer slots.
const DefaultBookingWindowDays = 10

// Slot represents one offerable time range for one provider.
// A slot holds zero or one booking; partial capacity is not supported.
type Slot struct {
	ID         string     `json:"id"`
	ProviderID string     `json:"provider_id"`
	SlotDate   time.Time  `json:"slot_date"`
	StartAt    time.Time  `json:"start_at"`
	EndAt      time.Time  `json:"end_at"`
	Available  bool       `json:"available"`
	Booked     bool       `json:"booked"`
	BookingID  *string    `json:"booking_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsBookable reports whether the slot can accept a new booking.
func (s *Slot) IsBookable() bool {
	return s.Available && !s.Booked
}

// Overlaps reports whether two time ranges on the same provider/date collide.
// Ranges are half-open [start, end): back-to-back slots do not overlap.
func (s *Slot) Overlaps(startAt, endAt time.Time) bool {
	return s.StartAt.Before(endAt) && s.EndAt.After(startAt)
}

// MatchesSchedule reports whether the caller-supplied schedule fields are
// exactly the slot's own. Used to reject stale client state at reserve time.
func (s *Slot) MatchesSchedule(date, startAt, endAt time.Time) bool {
	return sameDate(s.SlotDate, date) &&
		s.StartAt.Equal(startAt) &&
		s.EndAt.Equal(endAt)
}

// Duration returns the slot length.
func (s *Slot) Duration() time.Duration {
	return s.EndAt.Sub(s.StartAt)
}

// Bind marks the slot as booked by the given booking.
func (s *Slot) Bind(bookingID string) error {
	if !s.IsBookable() {
		return ErrSlotUnavailable
	}
	s.Booked = true
	s.BookingID = &bookingID
	s.UpdatedAt = time.Now()
	return nil
}

// Release clears the slot-booking binding. Idempotent: releasing an
// already-released slot is a no-op.
func (s *Slot) Release() {
	if !s.Booked && s.BookingID == nil {
		return
	}
	s.Booked = false
	s.BookingID = nil
	s.UpdatedAt = time.Now()
}

// ValidateProviderID validates the provider id
func (s *Slot) ValidateProviderID() error {
	if strings.TrimSpace(s.ProviderID) == "" {
		return ErrInvalidProviderID
	}
	return nil
}

// ValidateTimeRange checks that the slot covers a non-empty range on a
// single calendar day.
func (s *Slot) ValidateTimeRange() error {
	if !s.EndAt.After(s.StartAt) {
		return ErrInvalidTimeRange
	}
	if !sameDate(s.StartAt, s.SlotDate) || !sameDate(s.EndAt, s.SlotDate) {
		return ErrInvalidTimeRange
	}
	return nil
}

// ValidateWindow checks the slot date against the forward rolling window:
// today <= date <= today + windowDays.
func (s *Slot) ValidateWindow(now time.Time, windowDays int) error {
	if windowDays <= 0 {
		windowDays = DefaultBookingWindowDays
	}
	today := truncateToDate(now)
	date := truncateToDate(s.SlotDate)
	if date.Before(today) {
		return ErrSlotOutsideWindow
	}
	if date.After(today.AddDate(0, 0, windowDays)) {
		return ErrSlotOutsideWindow
	}
	return nil
}

// Validate runs all slot invariant checks except overlap, which needs
// sibling slots and lives in the repository query.
func (s *Slot) Validate(now time.Time, windowDays int) error {
	if err := s.ValidateProviderID(); err != nil {
		return err
	}
	if err := s.ValidateTimeRange(); err != nil {
		return err
	}
	return s.ValidateWindow(now, windowDays)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
