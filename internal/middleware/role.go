package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/program-catalog/backend/pkg/response"
)

// RequireAdmin returns a middleware that allows only users holding the
// admins role. Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
