package middleware

import (
	"net/http"
	"strings"

	"example.com/cartonbox/internal/auth"
	"example.com/cartonbox/internal/models"

	"github.com/gin-gonic/gin"
)

// ClaimsContextKey is the gin context key under which the authenticated
// user's claims are stored
const ClaimsContextKey = "auth_claims"

// Authenticate validates the bearer token from the Authorization header and
// stores its claims on the request context
func Authenticate(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid Authorization header format. Expected: 'Bearer {token}'",
			})
			c.Abort()
			return
		}

		claims, err := issuer.Parse(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// RequirePermission rejects requests whose authenticated role does not hold
// the given permission
func RequirePermission(permission auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !auth.IsAllowed(claims.Role, permission) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ClaimsFrom returns the authenticated claims stored on the context, or nil
func ClaimsFrom(c *gin.Context) *auth.Claims {
	value, ok := c.Get(ClaimsContextKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// RoleFrom returns the authenticated role, or the empty role when the
// request is unauthenticated
func RoleFrom(c *gin.Context) models.UserRole {
	claims := ClaimsFrom(c)
	if claims == nil {
		return ""
	}
	return claims.Role
}
