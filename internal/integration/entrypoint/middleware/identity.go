// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/btc-tracker/backend/internal/integration/entrypoint/dto"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// UserIdentityKey is the context key for the caller's identity.
	UserIdentityKey ContextKey = "user_identity"

	// UserIdentityHeader carries the caller's identity. There is no
	// authentication; the header only scopes stored credentials.
	UserIdentityHeader = "X-User-ID"

	maxIdentityLength = 128
)

// Identity returns a Gin middleware handler resolving the caller identity
// from the X-User-ID header, falling back to defaultIdentity.
func Identity(defaultIdentity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := strings.TrimSpace(c.GetHeader(UserIdentityHeader))
		if identity == "" {
			identity = defaultIdentity
		}
		if len(identity) > maxIdentityLength {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "User identity is too long",
			})
			c.Abort()
			return
		}

		c.Set(string(UserIdentityKey), identity)
		c.Next()
	}
}

// GetUserIdentityFromContext extracts the caller identity from the Gin context.
func GetUserIdentityFromContext(c *gin.Context) (string, bool) {
	identity, exists := c.Get(string(UserIdentityKey))
	if !exists {
		return "", false
	}
	id, ok := identity.(string)
	return id, ok && id != ""
}
