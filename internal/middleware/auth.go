package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smm-wallet/internal/auth"
	"smm-wallet/internal/config"
	"smm-wallet/internal/models"
	"smm-wallet/pkg/common"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// AuthRequired validates the Bearer JWT and sets user_id and role in context.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				common.NewErrorResponse("missing authorization header", nil, http.StatusUnauthorized).WithCode("unauthorized"))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				common.NewErrorResponse("invalid authorization format", nil, http.StatusUnauthorized).WithCode("unauthorized"))
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				common.NewErrorResponse("invalid or expired token", nil, http.StatusUnauthorized).WithCode("unauthorized"))
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, models.Role(claims.Role))
		c.Next()
	}
}

// RequireRole checks that the authenticated user has one of the allowed roles.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				common.NewErrorResponse("unauthorized", nil, http.StatusUnauthorized).WithCode("unauthorized"))
			return
		}
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			common.NewErrorResponse("forbidden", nil, http.StatusForbidden).WithCode("forbidden"))
	}
}

// GetUserID returns the authenticated user ID (0 when AuthRequired did not run).
func GetUserID(c *gin.Context) uint {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}

func GetRole(c *gin.Context) (models.Role, bool) {
	v, ok := c.Get(ctxRole)
	if !ok {
		return "", false
	}
	role, ok := v.(models.Role)
	return role, ok
}
