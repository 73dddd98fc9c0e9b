package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/rsaputelli/PRS/internal/api/middleware"
	"github.com/rsaputelli/PRS/pkg/response"
)

// MustGetUserID reads the caller id set by JWTAuth. On false a 401 has been
// written and the handler should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// GetEmail the caller's email claim, possibly empty.
func GetEmail(c *gin.Context) string {
	return c.GetString(middleware.CtxEmail)
}

// actor who to record as the requester of a change: email when known.
func actor(c *gin.Context) string {
	if email := GetEmail(c); email != "" {
		return email
	}
	return c.GetString(middleware.CtxUserID)
}

// pathID reads :id, writing a 400 when it is empty.
func pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "id is required")
		return "", false
	}
	return id, true
}
