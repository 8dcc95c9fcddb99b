package middleware

import (
	"net/http"
	"strings"

	"awning-admin-api/internal/services"

	"github.com/gin-gonic/gin"
)

// claimsKey is the gin context key the authenticated user's claims live
// under
const claimsKey = "authClaims"

// AuthenticateUser validates the bearer token on every request and stores
// the caller's claims on the context
func AuthenticateUser(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be a Bearer token"})
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CurrentUser returns the authenticated user's claims, or nil on
// unauthenticated routes
func CurrentUser(c *gin.Context) *services.Claims {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*services.Claims)
	if !ok {
		return nil
	}
	return claims
}
