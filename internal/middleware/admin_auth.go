package middleware

import (
	"net/http"

	"ai-content-consultant/internal/model"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware lets only ADMIN users through. It must run after
// AuthMiddleware.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "authentication required"})
			return
		}
		if user.Role != model.UserRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": "administrator role required"})
			return
		}
		c.Next()
	}
}
