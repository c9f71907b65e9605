package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			abortWith(c, http.StatusUnauthorized, "Missing identity context")
			return
		}

		if role != required {
			abortWith(c, http.StatusForbidden, "Insufficient permissions")
			return
		}

		c.Next()
	}
}
