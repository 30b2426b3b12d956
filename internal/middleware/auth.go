package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/famboard/famboard/internal/auth"
	apperrors "github.com/famboard/famboard/pkg/errors"
	"github.com/famboard/famboard/pkg/response"
)

// ContextUserIDKey is the gin context key carrying the authenticated user id.
const ContextUserIDKey = "auth.user_id"

// RequireAuth validates the bearer token and stores the caller's user id
// in the request context.
func RequireAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			response.Error(c, apperrors.ErrUnauthorized.WithInternal(err))
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// UserID extracts the authenticated user id stored by RequireAuth.
func UserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}
