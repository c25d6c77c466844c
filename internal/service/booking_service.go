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

// BookingService defines the interface for the booking lifecycle. Every
// transition runs under a row lock on the booking, appends an audit entry
// and stages an event in the same transaction.
type BookingService interface {
	// GetBooking retrieves a booking visible to the actor
	GetBooking(ctx context.Context, actor domain.Actor, bookingID string) (*dto.BookingResponse, error)

	// GetCustomerBookings retrieves the acting customer's bookings
	GetCustomerBookings(ctx context.Context, actor domain.Actor, page, pageSize int) (*dto.PaginatedBookingsResponse, error)

	// GetProviderBookings retrieves the acting provider's bookings
	GetProviderBookings(ctx context.Context, actor domain.Actor, page, pageSize int) (*dto.PaginatedBookingsResponse, error)

	// ConfirmBooking moves a pending booking to confirmed
	ConfirmBooking(ctx context.Context, actor domain.Actor, bookingID string) (*dto.BookingResponse, error)

	// StartBooking moves a confirmed booking to in_progress
	StartBooking(ctx context.Context, actor domain.Actor, bookingID string) (*dto.BookingResponse, error)

	// CompleteBooking moves an in_progress booking to completed
	CompleteBooking(ctx context.Context, actor domain.Actor, bookingID string) (*dto.BookingResponse, error)

	// CancelBooking cancels a booking from any non-terminal state and
	// releases its slot
	CancelBooking(ctx context.Context, actor domain.Actor, bookingID string, req *dto.CancelBookingRequest) (*dto.BookingResponse, error)

	// GetAuditTrail retrieves a booking's audit trail in insertion order
	GetAuditTrail(ctx context.Context, actor domain.Actor, bookingID string) ([]*dto.AuditEntryResponse, error)
}

// bookingService implements BookingService
type bookingService struct {
	bookingRepo    repository.BookingRepository
	slotRepo       repository.SlotRepository
	auditRepo      repository.AuditRepository
	eventPublisher EventPublisher
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	slotRepo repository.SlotRepository,
	auditRepo repository.AuditRepository,
	eventPublisher EventPublisher,
) BookingService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		slotRepo:       slotRepo,
		auditRepo:      auditRepo,
		eventPublisher: eventPublisher,
	}
}

// GetBooking retrieves a booking visible to the actor
func (s *bookingService) GetBooking(ctx context.Context, actor domain.Actor, bookingID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.getVisibleBooking(ctx, actor, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// GetCustomerBookings retrieves the acting customer's bookings
func (s *bookingService) GetCustomerBookings(ctx context.Context, actor domain.Actor, page, pageSize int) (*dto.PaginatedBookingsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_customer_bookings")
	defer span.End()

	if err := actor.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid actor")
		return nil, err
	}

	page, pageSize = normalizePage(page, pageSize)
	bookings, err := s.bookingRepo.GetByCustomerID(ctx, actor.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return &dto.PaginatedBookingsResponse{
		Bookings: dto.BookingsFromDomain(bookings),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetProviderBookings retrieves the acting provider's bookings
func (s *bookingService) GetProviderBookings(ctx context.Context, actor domain.Actor, page, pageSize int) (*dto.PaginatedBookingsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_provider_bookings")
	defer span.End()

	if err := actor.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid actor")
		return nil, err
	}

	page, pageSize = normalizePage(page, pageSize)
	bookings, err := s.bookingRepo.GetByProviderID(ctx, actor.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return &dto.PaginatedBookingsResponse{
		Bookings: dto.BookingsFromDomain(bookings),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ConfirmBooking moves a pending booking to confirmed
func (s *bookingService) ConfirmBooking(ctx context.Context, actor domain.Actor, bookingID string) (*dto.BookingResponse, error) {
	return s.transition(ctx, "service.booking.confirm", actor, bookingID, domain.BookingEventConfirmed,
		s.authorizeProvider,
		func(b *domain.Booking, now time.Time) error { return b.Confirm(now) },
	)
}

// StartBooking moves a confirmed booking to in_progress
func (s *bookingService) StartBooking(ctx context.Context, actor domain.Actor, bookingID string) (*dto.BookingResponse, error) {
	return s.transition(ctx, "service.booking.start", actor, bookingID, domain.BookingEventStarted,
		s.authorizeProvider,
		func(b *domain.Booking, now time.Time) error { return b.StartService(now) },
	)
}

// CompleteBooking moves an in_progress booking to completed
func (s *bookingService) CompleteBooking(ctx context.Context, actor domain.Actor, bookingID string) (*dto.BookingResponse, error) {
	return s.transition(ctx, "service.booking.complete", actor, bookingID, domain.BookingEventCompleted,
		s.authorizeProvider,
		func(b *domain.Booking, now time.Time) error { return b.CompleteService(now) },
	)
}

// CancelBooking cancels a booking and releases its slot in one transaction
func (s *bookingService) CancelBooking(ctx context.Context, actor domain.Actor, bookingID string, req *dto.CancelBookingRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	if err := actor.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid actor")
		return nil, err
	}
	reason := ""
	if req != nil {
		reason = req.Reason
	}

	tx, err := s.bookingRepo.BeginTx(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer tx.Rollback(ctx)

	booking, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.authorizeParty(actor, booking); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	from := booking.Status
	now := time.Now()
	if err := booking.Cancel(now, actor, reason); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.bookingRepo.UpdateTx(ctx, tx, booking); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Cancellation frees the slot for rebooking. Release is idempotent, so
	// a slot already unbound (or deleted availability) is not an error.
	if booking.SlotID != nil {
		if err := s.releaseSlot(ctx, tx, *booking.SlotID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	if err := s.auditRepo.CreateTx(ctx, tx, domain.NewCancellationAudit(booking, from, actor, reason)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventPublisher.Publish(ctx, tx, domain.BookingEventCancelled, booking, uuid.New().String()); err != nil {
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
	return dto.BookingFromDomain(booking), nil
}

// GetAuditTrail retrieves a booking's audit trail in insertion order
func (s *bookingService) GetAuditTrail(ctx context.Context, actor domain.Actor, bookingID string) ([]*dto.AuditEntryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_audit_trail")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	if _, err := s.getVisibleBooking(ctx, actor, bookingID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	entries, err := s.auditRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(entries)))
	span.SetStatus(codes.Ok, "")
	return dto.AuditTrailFromDomain(entries), nil
}

// transition runs one lifecycle transition: lock, authorize, mutate, audit,
// stage event, commit.
func (s *bookingService) transition(
	ctx context.Context,
	spanName string,
	actor domain.Actor,
	bookingID string,
	eventType domain.BookingEventType,
	authorize func(domain.Actor, *domain.Booking) error,
	mutate func(*domain.Booking, time.Time) error,
) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	if err := actor.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid actor")
		return nil, err
	}

	tx, err := s.bookingRepo.BeginTx(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer tx.Rollback(ctx)

	booking, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := authorize(actor, booking); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	from := booking.Status
	if err := mutate(booking, time.Now()); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.bookingRepo.UpdateTx(ctx, tx, booking); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.auditRepo.CreateTx(ctx, tx, domain.NewStatusChangeAudit(booking, from, booking.Status, actor)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventPublisher.Publish(ctx, tx, eventType, booking, uuid.New().String()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("status", booking.Status.String()))
	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// releaseSlot unbinds the slot under its own row lock within tx
func (s *bookingService) releaseSlot(ctx context.Context, tx pgx.Tx, slotID string) error {
	slot, err := s.slotRepo.GetByIDForUpdate(ctx, tx, slotID)
	if err != nil {
		return err
	}
	slot.Release()
	return s.slotRepo.UpdateTx(ctx, tx, slot)
}

// authorizeProvider permits the booking's provider and admins
func (s *bookingService) authorizeProvider(actor domain.Actor, booking *domain.Booking) error {
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	if actor.Role == domain.RoleProvider && booking.BelongsToProvider(actor.ID) {
		return nil
	}
	return domain.ErrForbidden
}

// authorizeParty permits either party of the booking, admins and the system
func (s *bookingService) authorizeParty(actor domain.Actor, booking *domain.Booking) error {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleSystem:
		return nil
	case domain.RoleCustomer:
		if booking.BelongsToCustomer(actor.ID) {
			return nil
		}
	case domain.RoleProvider:
		if booking.BelongsToProvider(actor.ID) {
			return nil
		}
	}
	return domain.ErrForbidden
}

// getVisibleBooking loads a booking and checks the actor may read it
func (s *bookingService) getVisibleBooking(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if bookingID == "" {
		return nil, domain.ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeParty(actor, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// Ensure bookingService implements BookingService
var _ BookingService = (*bookingService)(nil)
