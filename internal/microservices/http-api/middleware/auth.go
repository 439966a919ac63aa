package middleware

import (
	"net/http"
	"strings"

	"bookhub/internal/logger"
	"bookhub/internal/microservices/http-api/service"
	"bookhub/internal/shared"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware
const (
	ClaimsKey    = "claims"
	UserIDKey    = "userID"
	UsernameKey  = "username"
	SessionIDKey = "sessionID"
)

// AuthMiddleware is a Gin middleware for bearer token authentication of API requests.
// The token must carry a valid signature, be unexpired and point at a live session.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		// format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			if shared.KindOf(err) == shared.KindInternal {
				logger.Log.Errorw("token validation failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.UserName)
		c.Set(SessionIDKey, claims.SessionID)

		c.Next()
	}
}

// CurrentClaims returns the claims stored by AuthMiddleware
func CurrentClaims(c *gin.Context) (*shared.AuthClaims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*shared.AuthClaims)
	return claims, ok
}
