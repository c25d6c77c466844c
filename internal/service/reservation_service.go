package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/internal/dto"
	"github.com/Kiran9223/service-link-sub000/internal/repository"
	"github.com/Kiran9223/service-link-sub000/pkg/retry"
	"github.com/Kiran9223/service-link-sub000/pkg/telemetry"
)

// ReservationService defines the interface for reserving slots. Reservation
// is the only path that creates bookings: the slot is locked, re-checked
// under the lock, bound to a new pending booking, audited and its event
// staged, all in one transaction. Two customers racing for the same slot
// serialize on the row lock and the loser gets a conflict error.
type ReservationService interface {
	// Reserve books a slot for the acting customer
	Reserve(ctx context.Context, actor domain.Actor, req *dto.ReserveRequest) (*dto.BookingResponse, error)
}

// reservationService implements ReservationService
type reservationService struct {
	slotRepo       repository.SlotRepository
	bookingRepo    repository.BookingRepository
	catalogRepo    repository.CatalogRepository
	auditRepo      repository.AuditRepository
	eventPublisher EventPublisher
	retryCfg       *retry.Config
}

// ReservationServiceConfig contains configuration for the reservation service
type ReservationServiceConfig struct {
	// LockRetries is how many times a lock-timeout aborts the reservation
	// before giving up. Business conflicts are never retried.
	LockRetries int
}

// NewReservationService creates a new reservation service
func NewReservationService(
	slotRepo repository.SlotRepository,
	bookingRepo repository.BookingRepository,
	catalogRepo repository.CatalogRepository,
	auditRepo repository.AuditRepository,
	eventPublisher EventPublisher,
	cfg *ReservationServiceConfig,
) ReservationService {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = 2
	retryCfg.InitialInterval = 100 * time.Millisecond
	if cfg != nil && cfg.LockRetries > 0 {
		retryCfg.MaxRetries = cfg.LockRetries
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &reservationService{
		slotRepo:       slotRepo,
		bookingRepo:    bookingRepo,
		catalogRepo:    catalogRepo,
		auditRepo:      auditRepo,
		eventPublisher: eventPublisher,
		retryCfg:       retryCfg,
	}
}

// Reserve books a slot for the acting customer
func (s *reservationService) Reserve(ctx context.Context, actor domain.Actor, req *dto.ReserveRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.reserve")
	defer span.End()

	span.SetAttributes(
		attribute.String("customer_id", actor.ID),
		attribute.String("slot_id", req.SlotID),
		attribute.String("service_id", req.ServiceID),
	)

	if err := actor.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid actor")
		return nil, err
	}
	if actor.Role != domain.RoleCustomer {
		span.SetStatus(codes.Error, "not a customer")
		return nil, domain.ErrForbidden
	}

	date, err := req.ParseDate()
	if err != nil {
		span.SetStatus(codes.Error, "invalid slot date")
		return nil, domain.ErrInvalidTimeRange
	}

	var booking *domain.Booking
	err = retry.Do(ctx, s.retryCfg, func(ctx context.Context) error {
		b, attemptErr := s.reserveOnce(ctx, actor, req, date)
		if attemptErr != nil {
			if domain.IsRetryable(attemptErr) {
				return attemptErr
			}
			return retry.Permanent(attemptErr)
		}
		booking = b
		return nil
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("booking_id", booking.ID))
	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// reserveOnce runs one reservation attempt as a single transaction
func (s *reservationService) reserveOnce(ctx context.Context, actor domain.Actor, req *dto.ReserveRequest, date time.Time) (*domain.Booking, error) {
	tx, err := s.slotRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	slot, err := s.slotRepo.GetByIDForUpdate(ctx, tx, req.SlotID)
	if err != nil {
		return nil, err
	}

	// Re-checked under the row lock: a concurrent reservation that won the
	// race has already flipped these flags by the time we get here.
	if !slot.IsBookable() {
		return nil, domain.ErrSlotUnavailable
	}

	if !slot.MatchesSchedule(date, req.StartAt, req.EndAt) {
		return nil, domain.ErrScheduleMismatch
	}

	svc, err := s.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, domain.ErrServiceInactive
	}
	if svc.ProviderID != slot.ProviderID {
		return nil, domain.ErrOwnershipMismatch
	}

	now := time.Now()
	durationMinutes := int(slot.Duration().Minutes())
	slotID := slot.ID

	booking := &domain.Booking{
		ID:                  uuid.New().String(),
		CustomerID:          actor.ID,
		ProviderID:          slot.ProviderID,
		ServiceID:           svc.ID,
		SlotID:              &slotID,
		ScheduledDate:       slot.SlotDate,
		ScheduledStart:      slot.StartAt,
		ScheduledEnd:        slot.EndAt,
		DurationMinutes:     durationMinutes,
		Address:             req.Address,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		Price:               svc.PriceFor(durationMinutes),
		Status:              domain.BookingStatusPending,
		SpecialInstructions: req.SpecialInstructions,
		RequestedAt:         now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.bookingRepo.CreateTx(ctx, tx, booking); err != nil {
		return nil, err
	}

	if err := slot.Bind(booking.ID); err != nil {
		return nil, err
	}
	if err := s.slotRepo.UpdateTx(ctx, tx, slot); err != nil {
		return nil, err
	}

	if err := s.auditRepo.CreateTx(ctx, tx, domain.NewCreationAudit(booking, actor)); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(ctx, tx, domain.BookingEventRequested, booking, uuid.New().String()); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return booking, nil
}

// Ensure reservationService implements ReservationService
var _ ReservationService = (*reservationService)(nil)
