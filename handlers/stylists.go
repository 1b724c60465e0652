package handlers

import (
	"net/http"

	"salonbook/services/booking"
	"salonbook/services/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StylistHandler serves the public stylist directory and availability lookups.
type StylistHandler struct {
	UserSvc user.UserService
	Svc     booking.LifecycleService
	Logger  *zap.Logger
}

func NewStylistHandler(userSvc user.UserService, svc booking.LifecycleService, logger *zap.Logger) *StylistHandler {
	return &StylistHandler{UserSvc: userSvc, Svc: svc, Logger: logger}
}

// ListStylistsHandler handles GET /api/stylists.
func (h *StylistHandler) ListStylistsHandler(c *gin.Context) {
	stylists, err := h.UserSvc.ListStylists()
	if err != nil {
		h.Logger.Error("failed to list stylists", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stylists"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stylists": stylists})
}

// AvailabilityHandler handles GET /api/stylists/:id/availability?date=YYYY-MM-DD.
// It returns the free gaps in the stylist's working hours for that day.
func (h *StylistHandler) AvailabilityHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	ranges, err := h.Svc.ListAvailability(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "available": ranges})
}
