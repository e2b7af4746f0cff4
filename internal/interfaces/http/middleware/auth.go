// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// AuthMiddleware verifies the identity provider token and resolves it to the
// internal user, creating the record on first sign-in. It only establishes
// WHO is calling; role checks happen inside each elevated operation.
func AuthMiddleware(cfg *config.Config, userService *user.Service) gin.HandlerFunc {
	verifier := auth.NewVerifier(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		identity, err := verifier.Verify(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		resolved, err := userService.ResolveIdentity(identity.Subject, identity.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to resolve identity",
			})
			c.Abort()
			return
		}

		c.Set("user_id", resolved.UserID)
		c.Set("user_role", resolved.Role)

		c.Next()
	}
}

// OptionalAuthMiddleware resolves the identity when a valid token is present
// and continues anonymously otherwise. User-scoped reads behind it answer
// with empty results instead of 401 so record existence never leaks.
func OptionalAuthMiddleware(cfg *config.Config, userService *user.Service) gin.HandlerFunc {
	verifier := auth.NewVerifier(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.Next()
			return
		}

		identity, err := verifier.Verify(tokenString)
		if err != nil {
			c.Next()
			return
		}

		resolved, err := userService.ResolveIdentity(identity.Subject, identity.Email)
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", resolved.UserID)
		c.Set("user_role", resolved.Role)

		c.Next()
	}
}

// GetUserIDFromContext extracts the resolved user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}
