package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/service"
	"github.com/rsaputelli/PRS/pkg/response"
)

// ContractHandler merge fields and contract rendering.
type ContractHandler struct {
	contractSvc service.ContractService
	logger      *zap.Logger
}

// NewContractHandler creates a ContractHandler.
func NewContractHandler(contractSvc service.ContractService, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{contractSvc: contractSvc, logger: logger}
}

// MergeFields GET /api/v1/gigs/:id/merge-fields
func (h *ContractHandler) MergeFields(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	fields, err := h.contractSvc.MergeFields(c.Request.Context(), id)
	if err != nil {
		h.handleContractError(c, err)
		return
	}

	response.OK(c, dto.MergeFieldsResponse{GigID: id, Fields: fields})
}

// Render POST /api/v1/gigs/:id/contract/render
func (h *ContractHandler) Render(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	out, err := h.contractSvc.Render(c.Request.Context(), id, &req)
	if err != nil {
		h.handleContractError(c, err)
		return
	}

	response.OK(c, out)
}

func (h *ContractHandler) handleContractError(c *gin.Context, err error) {
	var unknown *service.UnknownFieldsError
	switch {
	case errors.Is(err, service.ErrGigNotFound):
		response.NotFound(c, 20001, "gig not found")
	case errors.Is(err, service.ErrPrivateDetailsMissing):
		response.Unprocessable(c, 21001, err.Error(), nil)
	case errors.As(err, &unknown):
		response.Unprocessable(c, 21002, service.ErrUnknownMergeField.Error(), gin.H{"unknown_fields": unknown.Names})
	case errors.Is(err, service.ErrMalformedTemplate):
		response.BadRequest(c, 21003, err.Error())
	case errors.Is(err, service.ErrTooManyDeposits),
		errors.Is(err, service.ErrNegativeAmount),
		errors.Is(err, service.ErrDepositsWithoutFee),
		errors.Is(err, service.ErrDepositsExceedFee),
		errors.Is(err, service.ErrPercentOver100):
		response.Unprocessable(c, 21004, err.Error(), nil)
	default:
		handleStoreError(c, h.logger, err)
	}
}
