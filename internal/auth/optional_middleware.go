package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"squadup/backend/pkg/jwt"
)

// OptionalAuthMiddleware inspects for a token and sets the userID if present and valid,
// but does not fail if the token is missing or invalid.
func OptionalAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				if claims, err := jwt.ParseToken(parts[1], secret); err == nil {
					c.Set("userID", claims.UserID)
				}
			}
		}
		c.Next()
	}
}
