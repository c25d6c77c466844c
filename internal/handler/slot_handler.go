package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kiran9223/service-link-sub000/internal/dto"
	"github.com/Kiran9223/service-link-sub000/internal/middleware"
	"github.com/Kiran9223/service-link-sub000/internal/service"
	"github.com/Kiran9223/service-link-sub000/pkg/telemetry"
)

// SlotHandler handles provider availability HTTP requests
type SlotHandler struct {
	slotService service.SlotService
}

// NewSlotHandler creates a new slot handler
func NewSlotHandler(slotService service.SlotService) *SlotHandler {
	return &SlotHandler{slotService: slotService}
}

// CreateSlot handles POST /slots
func (h *SlotHandler) CreateSlot(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.slot.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := middleware.GetActor(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.slotService.CreateSlot(ctx, actor, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("slot_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// UpdateSlot handles PUT /slots/:id
func (h *SlotHandler) UpdateSlot(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.slot.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := middleware.GetActor(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	slotID := c.Param("id")
	var req dto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.slotService.UpdateSlot(ctx, actor, slotID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// SetAvailability handles PATCH /slots/:id/availability
func (h *SlotHandler) SetAvailability(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.slot.set_availability")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := middleware.GetActor(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	slotID := c.Param("id")
	var req dto.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.slotService.SetAvailability(ctx, actor, slotID, *req.Available)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// DeleteSlot handles DELETE /slots/:id
func (h *SlotHandler) DeleteSlot(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.slot.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := middleware.GetActor(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	if err := h.slotService.DeleteSlot(ctx, actor, c.Param("id")); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.Status(http.StatusNoContent)
}

// FindBookableSlots handles GET /providers/:id/slots/bookable?date=YYYY-MM-DD
func (h *SlotHandler) FindBookableSlots(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.slot.find_bookable")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	providerID := c.Param("id")
	date := c.Query("date")

	span.SetAttributes(
		attribute.String("provider_id", providerID),
		attribute.String("date", date),
	)

	result, err := h.slotService.FindBookableSlots(ctx, providerID, date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, gin.H{"slots": result})
}

// GetProviderSlots handles GET /providers/:id/slots?from=&to=
func (h *SlotHandler) GetProviderSlots(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.slot.get_provider_slots")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	providerID := c.Param("id")

	result, err := h.slotService.GetProviderSlots(ctx, providerID, c.Query("from"), c.Query("to"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, gin.H{"slots": result})
}
