package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"musicportal/internal/domain"
	"musicportal/internal/pkg/jwt"
	"musicportal/internal/pkg/response"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth validates the bearer token and stores user_id and role on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		actor, err := jwtService.Authenticate(strings.TrimSpace(parts[1]))
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, jwt.ErrUnknownRole) {
				msg = "Unknown role in token"
			}
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", msg)
			c.Abort()
			return
		}

		c.Set(ctxUserID, actor.UserID)
		c.Set(ctxRole, string(actor.Role))
		c.Next()
	}
}

// Actor reads the identity JWTAuth stored on the context.
func Actor(c *gin.Context) (domain.Actor, bool) {
	userID := c.GetInt64(ctxUserID)
	if userID <= 0 {
		return domain.Actor{}, false
	}
	return domain.Actor{UserID: userID, Role: domain.UserRole(c.GetString(ctxRole))}, true
}
