package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/internal/dto"
	"github.com/Kiran9223/service-link-sub000/internal/repository"
	"github.com/Kiran9223/service-link-sub000/pkg/telemetry"
)

// SlotService defines the interface for provider availability management
type SlotService interface {
	// CreateSlot creates a new availability slot for the acting provider
	CreateSlot(ctx context.Context, actor domain.Actor, req *dto.CreateSlotRequest) (*dto.SlotResponse, error)

	// UpdateSlot reschedules a slot. Rejected when the slot holds a booking.
	UpdateSlot(ctx context.Context, actor domain.Actor, slotID string, req *dto.UpdateSlotRequest) (*dto.SlotResponse, error)

	// SetAvailability opens or closes a slot. Closing a booked slot is
	// allowed and does not touch the existing booking.
	SetAvailability(ctx context.Context, actor domain.Actor, slotID string, available bool) (*dto.SlotResponse, error)

	// DeleteSlot deletes a slot. Rejected when the slot holds a booking.
	DeleteSlot(ctx context.Context, actor domain.Actor, slotID string) error

	// FindBookableSlots retrieves a provider's bookable slots on a date
	FindBookableSlots(ctx context.Context, providerID, date string) ([]*dto.SlotResponse, error)

	// GetProviderSlots retrieves all of a provider's slots in a date range
	GetProviderSlots(ctx context.Context, providerID, from, to string) ([]*dto.SlotResponse, error)
}

// slotService implements SlotService
type slotService struct {
	slotRepo   repository.SlotRepository
	windowDays int
}

// SlotServiceConfig contains configuration for the slot service
type SlotServiceConfig struct {
	WindowDays int
}

// NewSlotService creates a new slot service
func NewSlotService(slotRepo repository.SlotRepository, cfg *SlotServiceConfig) SlotService {
	windowDays := domain.DefaultBookingWindowDays
	if cfg != nil && cfg.WindowDays > 0 {
		windowDays = cfg.WindowDays
	}
	return &slotService{
		slotRepo:   slotRepo,
		windowDays: windowDays,
	}
}

// CreateSlot creates a new availability slot for the acting provider
func (s *slotService) CreateSlot(ctx context.Context, actor domain.Actor, req *dto.CreateSlotRequest) (*dto.SlotResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.slot.create")
	defer span.End()

	span.SetAttributes(attribute.String("provider_id", actor.ID))

	if err := actor.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid actor")
		return nil, err
	}

	date, err := req.ParseDate()
	if err != nil {
		span.SetStatus(codes.Error, "invalid slot date")
		return nil, domain.ErrInvalidTimeRange
	}

	now := time.Now()
	slot := &domain.Slot{
		ID:         uuid.New().String(),
		ProviderID: actor.ID,
		SlotDate:   date,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Available:  true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := slot.Validate(now, s.windowDays); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	overlap, err := s.slotRepo.HasOverlap(ctx, slot.ProviderID, slot.SlotDate, slot.StartAt, slot.EndAt, slot.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if overlap {
		span.SetStatus(codes.Error, "slot overlap")
		return nil, domain.ErrSlotOverlap
	}

	if err := s.slotRepo.Create(ctx, slot); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("slot_id", slot.ID))
	span.SetStatus(codes.Ok, "")
	return dto.SlotFromDomain(slot), nil
}

// UpdateSlot reschedules a slot
func (s *slotService) UpdateSlot(ctx context.Context, actor domain.Actor, slotID string, req *dto.UpdateSlotRequest) (*dto.SlotResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.slot.update")
	defer span.End()

	span.SetAttributes(attribute.String("slot_id", slotID))

	date, err := req.ParseDate()
	if err != nil {
		span.SetStatus(codes.Error, "invalid slot date")
		return nil, domain.ErrInvalidTimeRange
	}

	tx, err := s.slotRepo.BeginTx(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer tx.Rollback(ctx)

	slot, err := s.getOwnedSlotForUpdate(ctx, tx, actor, slotID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Checked under the row lock: a reservation that committed before the
	// lock was granted is visible here. A slot holding a booking keeps its
	// schedule; the booking has to be cancelled first.
	if slot.Booked {
		span.SetStatus(codes.Error, "slot booked")
		return nil, domain.ErrSlotBooked
	}

	slot.SlotDate = date
	slot.StartAt = req.StartAt
	slot.EndAt = req.EndAt
	slot.UpdatedAt = time.Now()

	if err := slot.Validate(time.Now(), s.windowDays); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	overlap, err := s.slotRepo.HasOverlap(ctx, slot.ProviderID, slot.SlotDate, slot.StartAt, slot.EndAt, slot.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if overlap {
		span.SetStatus(codes.Error, "slot overlap")
		return nil, domain.ErrSlotOverlap
	}

	if err := s.slotRepo.UpdateTx(ctx, tx, slot); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.SlotFromDomain(slot), nil
}

// SetAvailability opens or closes a slot
func (s *slotService) SetAvailability(ctx context.Context, actor domain.Actor, slotID string, available bool) (*dto.SlotResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.slot.set_availability")
	defer span.End()

	span.SetAttributes(
		attribute.String("slot_id", slotID),
		attribute.Bool("available", available),
	)

	tx, err := s.slotRepo.BeginTx(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer tx.Rollback(ctx)

	// The row lock serializes this edit against concurrent reservations, so
	// the write below cannot overwrite a booking binding that committed
	// between read and write.
	slot, err := s.getOwnedSlotForUpdate(ctx, tx, actor, slotID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Closing a booked slot only stops future bookings; reopening a booked
	// slot is rejected because bookable state would contradict the binding.
	if available && slot.Booked {
		span.SetStatus(codes.Error, "slot booked")
		return nil, domain.ErrSlotBooked
	}

	slot.Available = available
	slot.UpdatedAt = time.Now()

	if err := s.slotRepo.UpdateTx(ctx, tx, slot); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.SlotFromDomain(slot), nil
}

// DeleteSlot deletes a slot
func (s *slotService) DeleteSlot(ctx context.Context, actor domain.Actor, slotID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.slot.delete")
	defer span.End()

	span.SetAttributes(attribute.String("slot_id", slotID))

	tx, err := s.slotRepo.BeginTx(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback(ctx)

	slot, err := s.getOwnedSlotForUpdate(ctx, tx, actor, slotID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	// Checked under the row lock so a slot booked by a reservation that
	// committed moments ago cannot be deleted out from under its booking.
	if slot.Booked {
		span.SetStatus(codes.Error, "slot booked")
		return domain.ErrSlotBooked
	}

	if err := s.slotRepo.DeleteTx(ctx, tx, slotID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// FindBookableSlots retrieves a provider's bookable slots on a date
func (s *slotService) FindBookableSlots(ctx context.Context, providerID, date string) ([]*dto.SlotResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.slot.find_bookable")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider_id", providerID),
		attribute.String("date", date),
	)

	if providerID == "" {
		span.SetStatus(codes.Error, "invalid provider id")
		return nil, domain.ErrInvalidProviderID
	}

	day, err := time.Parse(dto.SlotDateLayout, date)
	if err != nil {
		span.SetStatus(codes.Error, "invalid date")
		return nil, domain.ErrInvalidTimeRange
	}

	slots, err := s.slotRepo.FindBookable(ctx, providerID, day)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(slots)))
	span.SetStatus(codes.Ok, "")
	return dto.SlotsFromDomain(slots), nil
}

// GetProviderSlots retrieves all of a provider's slots in a date range
func (s *slotService) GetProviderSlots(ctx context.Context, providerID, from, to string) ([]*dto.SlotResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.slot.get_provider_slots")
	defer span.End()

	span.SetAttributes(attribute.String("provider_id", providerID))

	if providerID == "" {
		span.SetStatus(codes.Error, "invalid provider id")
		return nil, domain.ErrInvalidProviderID
	}

	fromDay, err := time.Parse(dto.SlotDateLayout, from)
	if err != nil {
		span.SetStatus(codes.Error, "invalid from date")
		return nil, domain.ErrInvalidTimeRange
	}
	toDay, err := time.Parse(dto.SlotDateLayout, to)
	if err != nil {
		span.SetStatus(codes.Error, "invalid to date")
		return nil, domain.ErrInvalidTimeRange
	}

	slots, err := s.slotRepo.GetByProviderID(ctx, providerID, fromDay, toDay)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(slots)))
	span.SetStatus(codes.Ok, "")
	return dto.SlotsFromDomain(slots), nil
}

// getOwnedSlotForUpdate loads a slot under a row lock and checks the actor
// may manage it. Providers manage their own slots; admins manage any.
func (s *slotService) getOwnedSlotForUpdate(ctx context.Context, tx pgx.Tx, actor domain.Actor, slotID string) (*domain.Slot, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if slotID == "" {
		return nil, domain.ErrInvalidSlotID
	}

	slot, err := s.slotRepo.GetByIDForUpdate(ctx, tx, slotID)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleAdmin && slot.ProviderID != actor.ID {
		return nil, domain.ErrForbidden
	}

	return slot, nil
}

// Ensure slotService implements SlotService
var _ SlotService = (*slotService)(nil)
