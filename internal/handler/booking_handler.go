package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/internal/dto"
	"github.com/Kiran9223/service-link-sub000/internal/middleware"
	"github.com/Kiran9223/service-link-sub000/internal/service"
	"github.com/Kiran9223/service-link-sub000/pkg/telemetry"
)

// BookingHandler handles reservation and booking lifecycle HTTP requests
type BookingHandler struct {
	reservationService service.ReservationService
	bookingService     service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(reservationService service.ReservationService, bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{
		reservationService: reservationService,
		bookingService:     bookingService,
	}
}

// Reserve handles POST /bookings/reserve
func (h *BookingHandler) Reserve(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.reserve")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := middleware.GetActor(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("customer_id", actor.ID),
		attribute.String("slot_id", req.SlotID),
		attribute.String("service_id", req.ServiceID),
	)

	result, err := h.reservationService.Reserve(ctx, actor, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("booking_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// GetBooking handles GET /bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := middleware.GetActor(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	result, err := h.bookingService.GetBooking(ctx, actor, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// GetCustomerBookings handles GET /bookings/customer
func (h *BookingHandler) GetCustomerBookings(c *gin.Context) {
	h.listBookings(c, "handler.booking.get_customer_bookings", h.bookingService.GetCustomerBookings)
}

// GetProviderBookings handles GET /bookings/provider
func (h *BookingHandler) GetProviderBookings(c *gin.Context) {
	h.listBookings(c, "handler.booking.get_provider_bookings", h.bookingService.GetProviderBookings)
}

func (h *BookingHandler) listBookings(
	c *gin.Context,
	spanName string,
	list func(ctx context.Context, actor domain.Actor, page, pageSize int) (*dto.PaginatedBookingsResponse, error),
) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), spanName)
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := middleware.GetActor(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := list(ctx, actor, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// ConfirmBooking handles POST /bookings/:id/confirm
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	h.transition(c, "handler.booking.confirm", h.bookingService.ConfirmBooking)
}

// StartBooking handles POST /bookings/:id/start
func (h *BookingHandler) StartBooking(c *gin.Context) {
	h.transition(c, "handler.booking.start", h.bookingService.StartBooking)
}

// CompleteBooking handles POST /bookings/:id/complete
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	h.transition(c, "handler.booking.complete", h.bookingService.CompleteBooking)
}

func (h *BookingHandler) transition(
	c *gin.Context,
	spanName string,
	op func(ctx context.Context, actor domain.Actor, bookingID string) (*dto.BookingResponse, error),
) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), spanName)
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := middleware.GetActor(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := op(ctx, actor, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("status", result.Status))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// CancelBooking handles POST /bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := middleware.GetActor(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req dto.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.CancelBooking(ctx, actor, bookingID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// GetAuditTrail handles GET /bookings/:id/audit
func (h *BookingHandler) GetAuditTrail(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get_audit_trail")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := middleware.GetActor(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	result, err := h.bookingService.GetAuditTrail(ctx, actor, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, gin.H{"audit": result})
}
