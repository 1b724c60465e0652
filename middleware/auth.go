package middleware

import (
	"net/http"
	"strings"

	userRepo "salonbook/database/repository/user"
	"salonbook/utils"

	"github.com/gin-gonic/gin"
)

// Context keys populated by JWTAuthMiddleware.
const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
)

// JWTAuthMiddleware validates the bearer token, resolves the account and
// stores its identity and role in the request context. The booking lifecycle
// enforces its own authorization on top of this identity.
func JWTAuthMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		id, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		u, err := users.GetByID(id)
		if err != nil || !u.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account not found or disabled"})
			return
		}

		c.Set(CtxUserID, u.ID)
		c.Set(CtxUserRole, u.Role)
		c.Next()
	}
}
