package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/internal/middleware"
	"github.com/Kiran9223/service-link-sub000/pkg/auth"
	"github.com/Kiran9223/service-link-sub000/pkg/logger"
	"github.com/Kiran9223/service-link-sub000/pkg/telemetry"
)

// RouterConfig wires handlers and cross-cutting middleware into the engine
type RouterConfig struct {
	Environment string
	ServiceName string

	Verifier    *auth.Verifier
	Idempotency *middleware.IdempotencyConfig

	SlotHandler         *SlotHandler
	BookingHandler      *BookingHandler
	NotificationHandler *NotificationHandler
	HealthHandler       *HealthHandler
}

// NewRouter builds the HTTP routing tree
func NewRouter(cfg *RouterConfig) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Get()))
	router.Use(telemetry.TracingMiddleware(cfg.ServiceName))

	router.GET("/health/live", cfg.HealthHandler.Live)
	router.GET("/health/ready", cfg.HealthHandler.Ready)

	v1 := router.Group("/api/v1")

	// Slot discovery is public: customers browse availability before
	// authenticating.
	v1.GET("/providers/:id/slots/bookable", cfg.SlotHandler.FindBookableSlots)
	v1.GET("/providers/:id/slots", cfg.SlotHandler.GetProviderSlots)

	authed := v1.Group("")
	authed.Use(middleware.Auth(cfg.Verifier))

	slots := authed.Group("/slots")
	slots.Use(middleware.RequireRole(domain.RoleProvider))
	{
		slots.POST("", cfg.SlotHandler.CreateSlot)
		slots.PUT("/:id", cfg.SlotHandler.UpdateSlot)
		slots.PATCH("/:id/availability", cfg.SlotHandler.SetAvailability)
		slots.DELETE("/:id", cfg.SlotHandler.DeleteSlot)
	}

	bookings := authed.Group("/bookings")
	{
		reserve := bookings.Group("")
		if cfg.Idempotency != nil {
			reserve.Use(middleware.Idempotency(cfg.Idempotency))
		}
		reserve.POST("/reserve", middleware.RequireRole(domain.RoleCustomer), cfg.BookingHandler.Reserve)

		bookings.GET("/customer", middleware.RequireRole(domain.RoleCustomer), cfg.BookingHandler.GetCustomerBookings)
		bookings.GET("/provider", middleware.RequireRole(domain.RoleProvider), cfg.BookingHandler.GetProviderBookings)
		bookings.GET("/:id", cfg.BookingHandler.GetBooking)
		bookings.GET("/:id/audit", cfg.BookingHandler.GetAuditTrail)
		bookings.POST("/:id/confirm", cfg.BookingHandler.ConfirmBooking)
		bookings.POST("/:id/start", cfg.BookingHandler.StartBooking)
		bookings.POST("/:id/complete", cfg.BookingHandler.CompleteBooking)
		bookings.POST("/:id/cancel", cfg.BookingHandler.CancelBooking)
	}

	authed.GET("/notifications", cfg.NotificationHandler.GetNotifications)

	return router
}
