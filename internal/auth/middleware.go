package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"squadup/backend/pkg/jwt"
)

// AuthMiddleware creates a gin middleware that requires a valid Bearer token
// and stores the authenticated user ID under "userID".
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := jwt.ParseToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}

// UserID returns the authenticated user's ID from the context. Zero means no
// authenticated user, which cannot happen behind AuthMiddleware.
func UserID(c *gin.Context) uint {
	if v, exists := c.Get("userID"); exists {
		return v.(uint)
	}
	return 0
}
