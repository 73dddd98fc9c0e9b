package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/service"
	"github.com/rsaputelli/PRS/pkg/response"
)

// ConfirmHandler confirmation mails.
type ConfirmHandler struct {
	confirmSvc service.ConfirmService
	logger     *zap.Logger
}

// NewConfirmHandler creates a ConfirmHandler.
func NewConfirmHandler(confirmSvc service.ConfirmService, logger *zap.Logger) *ConfirmHandler {
	return &ConfirmHandler{confirmSvc: confirmSvc, logger: logger}
}

// bindConfirm the body is optional.
func bindConfirm(c *gin.Context) (*dto.ConfirmRequest, bool) {
	var req dto.ConfirmRequest
	if c.Request.ContentLength == 0 {
		return &req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return nil, false
	}
	return &req, true
}

// VenueConfirm POST /api/v1/gigs/:id/venue-confirm
func (h *ConfirmHandler) VenueConfirm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := bindConfirm(c)
	if !ok {
		return
	}

	res, err := h.confirmSvc.VenueConfirm(c.Request.Context(), id, actor(c), req.Async)
	h.reply(c, res, err)
}

// PlayerConfirms POST /api/v1/gigs/:id/player-confirms
func (h *ConfirmHandler) PlayerConfirms(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := bindConfirm(c)
	if !ok {
		return
	}

	res, err := h.confirmSvc.PlayerConfirms(c.Request.Context(), id, req.MusicianIDs, actor(c), req.Async)
	h.reply(c, res, err)
}

// AgentConfirm POST /api/v1/gigs/:id/agent-confirm
func (h *ConfirmHandler) AgentConfirm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.confirmSvc.AgentConfirm(c.Request.Context(), id)
	h.reply(c, res, err)
}

// SoundTechConfirm POST /api/v1/gigs/:id/soundtech-confirm
func (h *ConfirmHandler) SoundTechConfirm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.confirmSvc.SoundTechConfirm(c.Request.Context(), id)
	h.reply(c, res, err)
}

func (h *ConfirmHandler) reply(c *gin.Context, res *dto.ConfirmResponse, err error) {
	switch {
	case err == nil && res.Queued:
		response.Accepted(c, res)
	case err == nil:
		response.OK(c, res)
	default:
		handleConfirmError(c, h.logger, res, err)
	}
}

// handleConfirmError shared by every mail-sending endpoint. res, when set,
// carries the per-recipient outcome of a partial failure.
func handleConfirmError(c *gin.Context, logger *zap.Logger, res interface{}, err error) {
	switch {
	case errors.Is(err, service.ErrGigNotFound):
		response.NotFound(c, 20001, "gig not found")
	case errors.Is(err, service.ErrConfirmPrivateGig):
		response.Unprocessable(c, 22001, err.Error(), nil)
	case errors.Is(err, service.ErrConfirmAgentManaged):
		response.Unprocessable(c, 22002, err.Error(), nil)
	case errors.Is(err, service.ErrConfirmNoVenue):
		response.Unprocessable(c, 22003, err.Error(), nil)
	case errors.Is(err, service.ErrConfirmNoVenueEmail):
		response.Unprocessable(c, 22004, err.Error(), nil)
	case errors.Is(err, service.ErrConfirmNoAgent):
		response.Unprocessable(c, 22005, err.Error(), nil)
	case errors.Is(err, service.ErrConfirmNoSoundTech):
		response.Unprocessable(c, 22006, err.Error(), nil)
	case errors.Is(err, service.ErrConfirmNoStaffing):
		response.Unprocessable(c, 22007, err.Error(), nil)
	case errors.Is(err, service.ErrGigTimesMissing):
		response.Unprocessable(c, 22008, err.Error(), nil)
	case errors.Is(err, service.ErrQueueUnavailable):
		response.Error(c, http.StatusServiceUnavailable, 22009, err.Error())
	case errors.Is(err, service.ErrDeliveryFailed):
		response.ErrorWithDetails(c, http.StatusBadGateway, 22010, err.Error(), res)
	default:
		handleStoreError(c, logger, err)
	}
}
