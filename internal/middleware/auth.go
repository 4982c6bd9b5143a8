package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func AuthGuard(secret string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c.GetHeader("Authorization"), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		role, _ := claims["role"].(string)
		if len(allowedRoles) > 0 {
			match := false
			for _, r := range allowedRoles {
				if role == r {
					match = true
					break
				}
			}
			if !match {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "forbidden"})
				return
			}
		}

		c.Set("claims", claims)
		if actor := userIDFromClaims(claims); actor != nil {
			c.Set("actorId", *actor)
		}
		c.Next()
	}
}

func AdminAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret, "admin")
}

// ActorID returns the authenticated user's id, if any. Admin history entries
// use it as the actor.
func ActorID(c *gin.Context) *primitive.ObjectID {
	value, ok := c.Get("actorId")
	if !ok {
		return nil
	}
	id, ok := value.(primitive.ObjectID)
	if !ok {
		return nil
	}
	return &id
}

func parseBearer(header, secret string) (jwt.MapClaims, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return nil, errMissingToken
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errInvalidToken
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}
	return claims, nil
}

func userIDFromClaims(claims jwt.MapClaims) *primitive.ObjectID {
	value, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return nil
	}
	return &id
}
