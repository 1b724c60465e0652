package handlers

import (
	"net/http"
	"time"

	bookingRepo "salonbook/database/repository/booking"
	"salonbook/middleware"
	"salonbook/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardHandler serves role-shaped booking statistics.
type DashboardHandler struct {
	Repo   bookingRepo.BookingRepository
	Logger *zap.Logger
}

func NewDashboardHandler(repo bookingRepo.BookingRepository, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{Repo: repo, Logger: logger}
}

// StatsHandler handles GET /api/dashboard/stats. Customers see their own
// spend, stylists their earnings. Admins can query either view by passing
// userId and role query parameters.
func (h *DashboardHandler) StatsHandler(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	role := c.GetString(middleware.CtxUserRole)

	if role == models.RoleAdmin {
		if qid := c.Query("userId"); qid != "" {
			userID = qid
		}
		if qr := c.Query("role"); qr == models.RoleCustomer || qr == models.RoleStylist {
			role = qr
		}
	}

	today := time.Now().Format("2006-01-02")
	var (
		stats *models.DashboardStats
		err   error
	)
	switch role {
	case models.RoleStylist:
		stats, err = h.Repo.StylistStats(userID, today)
	default:
		stats, err = h.Repo.CustomerStats(userID, today)
	}
	if err != nil {
		h.Logger.Error("failed to aggregate dashboard stats", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
