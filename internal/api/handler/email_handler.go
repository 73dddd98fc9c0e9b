package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/service"
	"github.com/rsaputelli/PRS/pkg/response"
)

const trackedPage = `<!doctype html><html><head><meta charset="utf-8"><title>Thank you</title></head>` +
	`<body style="font-family:sans-serif"><p>Thank you, your confirmation has been recorded.</p></body></html>`

// EmailHandler public click tracking.
type EmailHandler struct {
	emailSvc service.EmailService
	redirect string
	logger   *zap.Logger
}

// NewEmailHandler creates an EmailHandler. redirect, when set, is where a
// tracked click lands.
func NewEmailHandler(emailSvc service.EmailService, redirect string, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{emailSvc: emailSvc, redirect: redirect, logger: logger}
}

// Track GET /api/v1/email/track/:token
func (h *EmailHandler) Track(c *gin.Context) {
	token := c.Param("token")
	if token == "" || len(token) > 64 {
		response.BadRequest(c, 10001, "invalid token")
		return
	}

	if err := h.emailSvc.TrackClick(c.Request.Context(), token); err != nil {
		if errors.Is(err, service.ErrTrackTokenNotFound) {
			response.NotFound(c, 27001, "link not recognised")
			return
		}
		handleStoreError(c, h.logger, err)
		return
	}

	if h.redirect != "" {
		c.Redirect(http.StatusFound, h.redirect)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(trackedPage))
}
