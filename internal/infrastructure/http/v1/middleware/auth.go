package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"ledgerpost/internal/core/apperror"
	appctx "ledgerpost/internal/core/context"
	"ledgerpost/internal/domain/auth"
)

// Auth validates the bearer token and puts the user into the request
// context. Posting endpoints rely on this as a hard precondition.
func Auth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWith(c, apperror.NewUnauthorized("missing authorization header"))
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortWith(c, apperror.NewUnauthorized("authorization header must use Bearer scheme"))
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			abortWith(c, err)
			return
		}

		user := claims.UserContext()
		ctx := appctx.WithUser(c.Request.Context(), &user)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequirePermission rejects requests whose user lacks the permission.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if appctx.GetUser(ctx) == nil {
			abortWith(c, apperror.NewUnauthorized("authentication required"))
			return
		}
		if !appctx.HasPermission(ctx, permission) {
			abortWith(c, apperror.NewForbidden("missing permission: "+permission))
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
