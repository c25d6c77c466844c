package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kiran9223/service-link-sub000/internal/dto"
	"github.com/Kiran9223/service-link-sub000/internal/middleware"
	"github.com/Kiran9223/service-link-sub000/internal/repository"
	"github.com/Kiran9223/service-link-sub000/pkg/telemetry"
)

// NotificationHandler serves the actor's derived notifications
type NotificationHandler struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationRepo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

// GetNotifications handles GET /notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.notification.list")
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
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, err := h.notificationRepo.GetByRecipientID(ctx, actor.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"page":          page,
		"page_size":     pageSize,
	})
}
