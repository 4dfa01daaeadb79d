package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/program-catalog/backend/internal/auth"
	"github.com/program-catalog/backend/internal/models"
	"github.com/program-catalog/backend/pkg/response"
)

const (
	// ContextUser is the key for the authenticated user in gin context.
	ContextUser = "user"
)

// Authenticate returns a middleware that validates the bearer token,
// resolves the caller's user record (creating it on first login), and syncs
// role membership from the token's administrator claim.
func Authenticate(validator *auth.Validator, resolver *auth.Resolver, sync *auth.Synchronizer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := validator.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		user, err := resolver.Resolve(c.Request.Context(), claims)
		if err != nil {
			logger.Warn("identity resolution failed", zap.Error(err))
			response.Unauthorized(c, "authentication failed")
			c.Abort()
			return
		}
		if _, err := sync.SyncRoles(c.Request.Context(), claims, user); err != nil {
			logger.Error("role sync failed", zap.String("username", user.Username), zap.Error(err))
			response.Internal(c, "internal error")
			c.Abort()
			return
		}
		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user from gin context, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
