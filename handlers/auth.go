package handlers

import (
	"errors"
	"net/http"

	"salonbook/middleware"
	"salonbook/models"
	"salonbook/services/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler exposes register/login/me endpoints.
type AuthHandler struct {
	UserSvc user.UserService
	Logger  *zap.Logger
}

func NewAuthHandler(userSvc user.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{UserSvc: userSvc, Logger: logger}
}

// RegisterHandler handles POST /api/auth/register.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	// Privileged roles cannot be self-assigned.
	if req.Role == models.RoleAdmin || req.Role == models.RoleStylist {
		req.Role = models.RoleCustomer
	}

	resp, err := h.UserSvc.Register(req)
	if err != nil {
		h.Logger.Warn("registration failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "registration failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// LoginHandler handles POST /api/auth/login.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.UserSvc.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		h.Logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MeHandler handles GET /api/auth/me.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	u, err := h.UserSvc.GetUserByID(c.GetString(middleware.CtxUserID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}
