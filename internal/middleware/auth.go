package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ukydev/fleetquote/internal/auth"
	"github.com/ukydev/fleetquote/internal/models"
	"github.com/ukydev/fleetquote/internal/response"
)

const claimsKey = "claims"

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate validates the bearer token and stores its claims on the
// context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := m.authService.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			response.Unauthorized(c, "Authorization header required")
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole checks the user has the required role. Admins pass every
// role check.
func (m *AuthMiddleware) RequireRole(requiredRole models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			response.Unauthorized(c, "User context not found")
			return
		}

		if claims.Role != requiredRole && claims.Role != models.RoleAdmin {
			response.Forbidden(c, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// RequirePermission checks the user's role grants action.
func (m *AuthMiddleware) RequirePermission(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			response.Unauthorized(c, "User context not found")
			return
		}

		if !claims.User().HasPermission(action) {
			response.Forbidden(c, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetClaims returns the claims set by Authenticate.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// TenantID returns the caller's tenant, or "" when unauthenticated.
func TenantID(c *gin.Context) string {
	if claims, ok := GetClaims(c); ok {
		return claims.TenantID
	}
	return ""
}
