package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"musicportal/internal/domain"
	"musicportal/internal/pkg/response"
)

// RequireRole lets the request through when the token carries one of roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxRole)
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role.(string) == string(r) {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		c.Abort()
	}
}

// StaffOnly admits teachers and admins.
func StaffOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleTeacher, domain.RoleAdmin)
}
