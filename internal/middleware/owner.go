package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/orders"
)

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
)

// ResolveOwner identifies the caller for customer-facing order routes. A
// valid bearer token wins; otherwise the X-Session-Id header identifies an
// anonymous session. A present-but-invalid token is rejected rather than
// silently downgraded to anonymous.
func ResolveOwner(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
			claims, err := parseBearer(header, secret)
			if err != nil {
				c.AbortWithStatusJSON(401, gin.H{"success": false, "message": "unauthorized"})
				return
			}
			if userID := userIDFromClaims(claims); userID != nil {
				c.Set("owner", orders.OwnerKey{UserID: userID})
				c.Next()
				return
			}
		}

		if sessionID := strings.TrimSpace(c.GetHeader("X-Session-Id")); sessionID != "" {
			c.Set("owner", orders.OwnerKey{SessionID: sessionID})
		}
		c.Next()
	}
}

// Owner returns the owner key resolved by ResolveOwner. The zero key means
// the caller identified neither a user nor a session.
func Owner(c *gin.Context) orders.OwnerKey {
	value, ok := c.Get("owner")
	if !ok {
		return orders.OwnerKey{}
	}
	owner, ok := value.(orders.OwnerKey)
	if !ok {
		return orders.OwnerKey{}
	}
	return owner
}
