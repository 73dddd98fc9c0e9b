package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/pkg/jwt"
	"github.com/rsaputelli/PRS/pkg/response"
)

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// JWTAuth verifies the identity provider's access token from
// Authorization: Bearer <token>.
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, 10002, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil || claims.UserID() == "" {
			response.Unauthorized(c, 10002, "token invalid or expired")
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID())
		c.Set(CtxEmail, strings.ToLower(claims.Email))
		c.Set(CtxRole, claims.Role)

		c.Next()
	}
}

// AdminChecker decides whether the caller may use admin routes.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID, email string) (bool, error)
}

// AdminOnly lets through callers on the admin allow-list or with the admin
// profile role. Must run after JWTAuth.
func AdminOnly(checker AdminChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserID)
		if userID == "" {
			response.Unauthorized(c, 10002, "not authenticated")
			c.Abort()
			return
		}

		ok, err := checker.IsAdmin(c.Request.Context(), userID, c.GetString(CtxEmail))
		if err != nil {
			logger.Error("admin check failed", zap.String("user_id", userID), zap.Error(err))
			response.InternalError(c)
			c.Abort()
			return
		}
		if !ok {
			response.Forbidden(c, 10003, "admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
