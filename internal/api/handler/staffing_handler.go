package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/service"
	"github.com/rsaputelli/PRS/pkg/response"
)

// StaffingHandler digest subscribers and runs.
type StaffingHandler struct {
	staffingSvc service.StaffingService
	logger      *zap.Logger
}

// NewStaffingHandler creates a StaffingHandler.
func NewStaffingHandler(staffingSvc service.StaffingService, logger *zap.Logger) *StaffingHandler {
	return &StaffingHandler{staffingSvc: staffingSvc, logger: logger}
}

// ListSubscribers GET /api/v1/admin/staffing-subscribers
func (h *StaffingHandler) ListSubscribers(c *gin.Context) {
	subs, err := h.staffingSvc.ListSubscribers(c.Request.Context())
	if err != nil {
		handleStoreError(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"list": subs})
}

// UpsertSubscriber POST /api/v1/admin/staffing-subscribers
func (h *StaffingHandler) UpsertSubscriber(c *gin.Context) {
	var req dto.SubscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sub, err := h.staffingSvc.UpsertSubscriber(c.Request.Context(), &req)
	if err != nil {
		handleStoreError(c, h.logger, err)
		return
	}
	response.OK(c, sub)
}

// SendDigest POST /api/v1/admin/staffing-digest
func (h *StaffingHandler) SendDigest(c *gin.Context) {
	var req dto.DigestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	res, err := h.staffingSvc.SendDigest(c.Request.Context(), actor(c), req.Async)
	switch {
	case err == nil && res.Queued:
		response.Accepted(c, res)
	case err == nil:
		response.OK(c, res)
	default:
		handleConfirmError(c, h.logger, res, err)
	}
}

// ListLogs GET /api/v1/admin/staffing-digest/logs?limit=
func (h *StaffingHandler) ListLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	logs, err := h.staffingSvc.ListLogs(c.Request.Context(), limit)
	if err != nil {
		handleStoreError(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"list": logs})
}
