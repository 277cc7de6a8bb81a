package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rafiakbrr/scrimhub/pkg/token"
)

const (
	// AuthPlayerIDKey is the context key under which the authenticated
	// player's id is stored.
	AuthPlayerIDKey = "auth_player_id"
)

// AuthMiddleware validates the bearer token and stores the acting player's id
// in the request context. Tokens are issued by the external identity provider;
// a player row may not exist yet for a freshly issued id (profile setup
// happens after first sign-in), so existence checks belong to the handlers
// that need them.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format. Expected: Bearer <token>"})
			return
		}

		claims, err := token.ValidateJWT(bearerToken[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			return
		}

		c.Set(AuthPlayerIDKey, claims.PlayerID)
		c.Next()
	}
}

// GetPlayerIDFromContext extracts the authenticated player's id from the context.
func GetPlayerIDFromContext(c *gin.Context) (uint, error) {
	playerID, exists := c.Get(AuthPlayerIDKey)
	if !exists {
		return 0, errors.New("player ID not found in context")
	}

	pid, ok := playerID.(uint)
	if !ok {
		return 0, fmt.Errorf("player ID has unexpected type: %T", playerID)
	}

	return pid, nil
}
