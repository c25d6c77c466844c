package domain

import (
	"errors"
	"testing"
	"time"
)

func testSlot(startHour, endHour int) *Slot {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return &Slot{
		ID:         "slot-001",
		ProviderID: "provider-001",
		SlotDate:   date,
		StartAt:    date.Add(time.Duration(startHour) * time.Hour),
		EndAt:      date.Add(time.Duration(endHour) * time.Hour),
		Available:  true,
	}
}

func TestSlot_Overlaps(t *testing.T) {
	slot := testSlot(9, 11)
	date := slot.SlotDate

	tests := []struct {
		name    string
		startAt time.Time
		endAt   time.Time
		want    bool
	}{
		{
			name:    "identical range overlaps",
			startAt: slot.StartAt,
			endAt:   slot.EndAt,
			want:    true,
		},
		{
			name:    "partial overlap at start",
			startAt: date.Add(8 * time.Hour),
			endAt:   date.Add(10 * time.Hour),
			want:    true,
		},
		{
			name:    "partial overlap at end",
			startAt: date.Add(10 * time.Hour),
			endAt:   date.Add(12 * time.Hour),
			want:    true,
		},
		{
			name:    "containing range overlaps",
			startAt: date.Add(8 * time.Hour),
			endAt:   date.Add(12 * time.Hour),
			want:    true,
		},
		{
			name:    "back-to-back before does not overlap",
			startAt: date.Add(7 * time.Hour),
			endAt:   slot.StartAt,
			want:    false,
		},
		{
			name:    "back-to-back after does not overlap",
			startAt: slot.EndAt,
			endAt:   date.Add(13 * time.Hour),
			want:    false,
		},
		{
			name:    "disjoint range does not overlap",
			startAt: date.Add(14 * time.Hour),
			endAt:   date.Add(15 * time.Hour),
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slot.Overlaps(tt.startAt, tt.endAt); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlot_IsBookable(t *testing.T) {
	slot := testSlot(9, 11)
	if !slot.IsBookable() {
		t.Error("open slot should be bookable")
	}

	slot.Available = false
	if slot.IsBookable() {
		t.Error("closed slot should not be bookable")
	}

	slot.Available = true
	slot.Booked = true
	if slot.IsBookable() {
		t.Error("booked slot should not be bookable")
	}
}

func TestSlot_MatchesSchedule(t *testing.T) {
	slot := testSlot(9, 11)

	if !slot.MatchesSchedule(slot.SlotDate, slot.StartAt, slot.EndAt) {
		t.Error("own schedule should match")
	}
	if slot.MatchesSchedule(slot.SlotDate, slot.StartAt.Add(time.Minute), slot.EndAt) {
		t.Error("shifted start should not match")
	}
	if slot.MatchesSchedule(slot.SlotDate.AddDate(0, 0, 1), slot.StartAt, slot.EndAt) {
		t.Error("different date should not match")
	}
}

func TestSlot_BindAndRelease(t *testing.T) {
	slot := testSlot(9, 11)

	if err := slot.Bind("booking-001"); err != nil {
		t.Fatalf("Bind() unexpected error = %v", err)
	}
	if !slot.Booked || slot.BookingID == nil || *slot.BookingID != "booking-001" {
		t.Errorf("Bind() did not record booking, got booked=%v bookingID=%v", slot.Booked, slot.BookingID)
	}

	if err := slot.Bind("booking-002"); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("Bind() on booked slot error = %v, want %v", err, ErrSlotUnavailable)
	}

	slot.Release()
	if slot.Booked || slot.BookingID != nil {
		t.Error("Release() did not clear the binding")
	}

	// Releasing again is a no-op.
	slot.Release()
	if slot.Booked || slot.BookingID != nil {
		t.Error("second Release() changed state")
	}
}

func TestSlot_Validate(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*Slot)
		wantErr error
	}{
		{
			name:    "valid slot",
			mutate:  func(s *Slot) {},
			wantErr: nil,
		},
		{
			name:    "missing provider id",
			mutate:  func(s *Slot) { s.ProviderID = "  " },
			wantErr: ErrInvalidProviderID,
		},
		{
			name:    "end before start",
			mutate:  func(s *Slot) { s.EndAt = s.StartAt.Add(-time.Hour) },
			wantErr: ErrInvalidTimeRange,
		},
		{
			name:    "zero-length range",
			mutate:  func(s *Slot) { s.EndAt = s.StartAt },
			wantErr: ErrInvalidTimeRange,
		},
		{
			name: "range crosses midnight",
			mutate: func(s *Slot) {
				s.StartAt = s.SlotDate.Add(23 * time.Hour)
				s.EndAt = s.SlotDate.Add(25 * time.Hour)
			},
			wantErr: ErrInvalidTimeRange,
		},
		{
			name: "date in the past",
			mutate: func(s *Slot) {
				s.SlotDate = now.AddDate(0, 0, -1)
				s.StartAt = s.SlotDate.Add(9 * time.Hour)
				s.EndAt = s.SlotDate.Add(11 * time.Hour)
			},
			wantErr: ErrSlotOutsideWindow,
		},
		{
			name: "date past the window",
			mutate: func(s *Slot) {
				s.SlotDate = now.AddDate(0, 0, 11)
				s.StartAt = s.SlotDate.Add(9 * time.Hour)
				s.EndAt = s.SlotDate.Add(11 * time.Hour)
			},
			wantErr: ErrSlotOutsideWindow,
		},
		{
			name: "date on the window edge",
			mutate: func(s *Slot) {
				s.SlotDate = now.AddDate(0, 0, 10)
				s.StartAt = s.SlotDate.Add(9 * time.Hour)
				s.EndAt = s.SlotDate.Add(11 * time.Hour)
			},
			wantErr: nil,
		},
		{
			name: "slot today",
			mutate: func(s *Slot) {
				s.SlotDate = truncateToDate(now)
				s.StartAt = s.SlotDate.Add(9 * time.Hour)
				s.EndAt = s.SlotDate.Add(11 * time.Hour)
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := testSlot(9, 11)
			tt.mutate(slot)

			err := slot.Validate(now, DefaultBookingWindowDays)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSlot_Duration(t *testing.T) {
	slot := testSlot(9, 11)
	if got := slot.Duration(); got != 2*time.Hour {
		t.Errorf("Duration() = %v, want %v", got, 2*time.Hour)
	}
}
