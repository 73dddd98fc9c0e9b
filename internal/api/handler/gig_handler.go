package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/service"
	"github.com/rsaputelli/PRS/pkg/response"
)

// GigHandler gig CRUD, deposits, staffing and admin delete.
type GigHandler struct {
	gigSvc service.GigService
	logger *zap.Logger
}

// NewGigHandler creates a GigHandler.
func NewGigHandler(gigSvc service.GigService, logger *zap.Logger) *GigHandler {
	return &GigHandler{gigSvc: gigSvc, logger: logger}
}

// ListGigs GET /api/v1/gigs
func (h *GigHandler) ListGigs(c *gin.Context) {
	var req dto.GigListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	gigs, total, err := h.gigSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleGigError(c, err)
		return
	}

	response.OKPage(c, gigs, total, req.GetPage(), req.GetPageSize())
}

// GetGig GET /api/v1/gigs/:id
func (h *GigHandler) GetGig(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	gig, err := h.gigSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleGigError(c, err)
		return
	}

	response.OK(c, gig)
}

// CreateGig POST /api/v1/gigs
func (h *GigHandler) CreateGig(c *gin.Context) {
	var req dto.GigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	gig, err := h.gigSvc.Create(c.Request.Context(), &req, actor(c))
	if err != nil {
		h.handleGigError(c, err)
		return
	}

	response.Created(c, gig)
}

// UpdateGig PUT /api/v1/gigs/:id
func (h *GigHandler) UpdateGig(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.GigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	gig, err := h.gigSvc.Update(c.Request.Context(), id, &req, actor(c))
	if err != nil {
		h.handleGigError(c, err)
		return
	}

	response.OK(c, gig)
}

// ReplaceDeposits PUT /api/v1/gigs/:id/deposits
func (h *GigHandler) ReplaceDeposits(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.DepositsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	gig, err := h.gigSvc.ReplaceDeposits(c.Request.Context(), id, &req)
	if err != nil {
		h.handleGigError(c, err)
		return
	}

	response.OK(c, gig)
}

// UpdateStaffing PUT /api/v1/gigs/:id/staffing
func (h *GigHandler) UpdateStaffing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.StaffingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	gig, err := h.gigSvc.UpdateStaffing(c.Request.Context(), id, &req)
	if err != nil {
		h.handleGigError(c, err)
		return
	}

	response.OK(c, gig)
}

// DeletePreview GET /api/v1/admin/gigs/:id/delete-preview
func (h *GigHandler) DeletePreview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	preview, err := h.gigSvc.DeletePreview(c.Request.Context(), id)
	if err != nil {
		h.handleGigError(c, err)
		return
	}

	response.OK(c, preview)
}

// DeleteGig DELETE /api/v1/admin/gigs/:id
func (h *GigHandler) DeleteGig(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.DeleteGigRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.gigSvc.Delete(c.Request.Context(), id, req.PurgePayments)
	if err != nil {
		h.handleGigError(c, err)
		return
	}

	h.logger.Info("gig deleted by admin",
		zap.String("gig_id", id), zap.String("actor", actor(c)), zap.Int64("payments_deleted", res.PaymentsDeleted))
	response.OK(c, res)
}

func (h *GigHandler) handleGigError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGigNotFound):
		response.NotFound(c, 20001, "gig not found")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 20002, err.Error())
	case errors.Is(err, service.ErrInvalidTimeWindow):
		response.BadRequest(c, 20003, err.Error())
	case errors.Is(err, service.ErrPrivateDetailsRequired):
		response.Unprocessable(c, 20004, err.Error(), nil)
	case errors.Is(err, service.ErrGigHasPayments):
		response.Conflict(c, 20005, err.Error())
	case errors.Is(err, service.ErrVenueNotFound),
		errors.Is(err, service.ErrAgentNotFound),
		errors.Is(err, service.ErrSoundTechNotFound),
		errors.Is(err, service.ErrMusicianNotFound):
		response.Unprocessable(c, 20006, err.Error(), nil)
	case errors.Is(err, service.ErrTooManyDeposits),
		errors.Is(err, service.ErrNegativeAmount),
		errors.Is(err, service.ErrDepositsWithoutFee),
		errors.Is(err, service.ErrDepositsExceedFee),
		errors.Is(err, service.ErrPercentOver100):
		response.Unprocessable(c, 20007, err.Error(), nil)
	default:
		handleStoreError(c, h.logger, err)
	}
}
