package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/service"
	"github.com/rsaputelli/PRS/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler understaffed and 1099 reports.
type ReportHandler struct {
	reportSvc   service.ReportService
	staffingSvc service.StaffingService
	logger      *zap.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reportSvc service.ReportService, staffingSvc service.StaffingService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, staffingSvc: staffingSvc, logger: logger}
}

// Understaffed GET /api/v1/reports/understaffed?days=
func (h *ReportHandler) Understaffed(c *gin.Context) {
	var req dto.UnderstaffedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	items, err := h.staffingSvc.Understaffed(c.Request.Context(), req.Days)
	if err != nil {
		handleStoreError(c, h.logger, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// Report1099 GET /api/v1/reports/1099?year=
func (h *ReportHandler) Report1099(c *gin.Context) {
	var req dto.Report1099Request
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	rep, err := h.reportSvc.Report1099(c.Request.Context(), req.Year)
	if err != nil {
		handleStoreError(c, h.logger, err)
		return
	}

	response.OK(c, rep)
}

// Export1099 GET /api/v1/reports/1099/export?year=
func (h *ReportHandler) Export1099(c *gin.Context) {
	var req dto.Report1099Request
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	buf, filename, err := h.reportSvc.Export1099(c.Request.Context(), req.Year)
	if err != nil {
		handleStoreError(c, h.logger, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
