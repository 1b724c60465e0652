package handlers

import (
	"net/http"

	"salonbook/middleware"
	"salonbook/models"
	"salonbook/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Svc    booking.LifecycleService
	Logger *zap.Logger
}

func NewBookingHandler(svc booking.LifecycleService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: logger}
}

func actorFrom(c *gin.Context) booking.Actor {
	return booking.Actor{
		ID:   c.GetString(middleware.CtxUserID),
		Role: c.GetString(middleware.CtxUserRole),
	}
}

// writeDomainError translates booking service errors to HTTP responses.
func writeDomainError(c *gin.Context, logger *zap.Logger, err error) {
	switch e := err.(type) {
	case *booking.ConflictError:
		c.JSON(http.StatusConflict, gin.H{"error": "time slot unavailable", "details": e.Error()})
	case *booking.CapacityExceededError:
		c.JSON(http.StatusConflict, gin.H{"error": "service fully booked for that date", "details": e.Error()})
	case *booking.InvalidTransitionError:
		c.JSON(http.StatusConflict, gin.H{"error": "booking cannot change state", "details": e.Error()})
	case *booking.NotFoundError:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *booking.AuthorizationError:
		c.JSON(http.StatusForbidden, gin.H{"error": e.Error()})
	case *booking.ValidationError:
		c.JSON(http.StatusBadRequest, gin.H{"error": e.Error()})
	default:
		logger.Error("booking operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// CreateBookingHandler handles POST /api/bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	customerID := c.GetString(middleware.CtxUserID)
	if req.IsRecurring {
		result, err := h.Svc.CreateRecurringBookings(c.Request.Context(), customerID, req)
		if err != nil {
			writeDomainError(c, h.Logger, err)
			return
		}
		c.JSON(http.StatusCreated, result)
		return
	}

	b, err := h.Svc.CreateBooking(c.Request.Context(), customerID, req)
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// MyBookingsHandler handles GET /api/bookings/my-bookings.
func (h *BookingHandler) MyBookingsHandler(c *gin.Context) {
	actor := actorFrom(c)
	bookings, err := h.Svc.ListForCustomer(c.Request.Context(), actor.ID, actor)
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// StylistBookingsHandler handles GET /api/bookings/stylist/:stylistId.
func (h *BookingHandler) StylistBookingsHandler(c *gin.Context) {
	bookings, err := h.Svc.ListForStylist(c.Request.Context(), c.Param("stylistId"), actorFrom(c), c.Query("fromDate"), c.Query("toDate"))
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBookingHandler handles GET /api/bookings/:id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Svc.GetBooking(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBookingHandler handles PUT /api/bookings/:id/cancel.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	var req models.CancelRequest
	// Body is optional; a bare cancel carries no reason.
	_ = c.ShouldBindJSON(&req)

	b, err := h.Svc.CancelBooking(c.Request.Context(), c.Param("id"), actorFrom(c), req.Reason)
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled", "booking": b})
}

// RescheduleBookingHandler handles PUT /api/bookings/:id/reschedule.
func (h *BookingHandler) RescheduleBookingHandler(c *gin.Context) {
	var req models.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Svc.RescheduleBooking(c.Request.Context(), c.Param("id"), actorFrom(c), req.Date, req.Time)
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking rescheduled", "booking": b})
}

// ConfirmBookingHandler handles PUT /api/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBookingHandler(c *gin.Context) {
	b, err := h.Svc.MarkConfirmed(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking confirmed", "booking": b})
}

// StartBookingHandler handles PUT /api/bookings/:id/start.
func (h *BookingHandler) StartBookingHandler(c *gin.Context) {
	b, err := h.Svc.MarkInProgress(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment started", "booking": b})
}

// CompleteBookingHandler handles PUT /api/bookings/:id/complete.
func (h *BookingHandler) CompleteBookingHandler(c *gin.Context) {
	b, err := h.Svc.MarkCompleted(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment completed", "booking": b})
}

// NoShowBookingHandler handles PUT /api/bookings/:id/no-show.
func (h *BookingHandler) NoShowBookingHandler(c *gin.Context) {
	b, err := h.Svc.MarkNoShow(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking marked as no-show", "booking": b})
}

// RateBookingHandler handles POST /api/bookings/:id/rate.
func (h *BookingHandler) RateBookingHandler(c *gin.Context) {
	var req models.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Svc.RateBooking(c.Request.Context(), c.Param("id"), actorFrom(c), req.Rating, req.Review)
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "thank you for your feedback", "booking": b})
}
