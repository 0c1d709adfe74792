package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/renovation-tracker-api/internal/auth"
	"github.com/yukikurage/renovation-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/renovation-tracker-api/internal/errors"
)

const bearerPrefix = "Bearer "

// RequireAuth checks the bearer token. A missing token is 401, a rejected one 403.
// revocations may be nil.
func RequireAuth(tokens *auth.TokenManager, revocations auth.RevocationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.MissingToken(c, "")
			return
		}
		if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			apierrors.MissingToken(c, "Authorization header must use the Bearer scheme")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) {
				apierrors.MissingToken(c, "")
				return
			}
			apierrors.InvalidToken(c)
			return
		}

		principal := claims.Principal()
		if revocations != nil && principal.TokenID != "" {
			revoked, err := revocations.IsRevoked(c.Request.Context(), principal.TokenID)
			if err != nil {
				logrus.WithError(err).Error("Failed to check token revocation")
				apierrors.ServiceUnavailable(c, "")
				return
			}
			if revoked {
				apierrors.InvalidToken(c)
				return
			}
		}

		// Store the identity in context for easy access in handlers
		c.Set(constants.ContextKeyPrincipal, principal)
		c.Set(constants.ContextKeyUserID, principal.UserID)
		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal from context
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return auth.Principal{}, false
	}
	principal, ok := value.(auth.Principal)
	return principal, ok
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
