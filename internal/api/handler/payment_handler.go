package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/service"
	"github.com/rsaputelli/PRS/pkg/response"
)

// PaymentHandler gig payments and closeout.
type PaymentHandler struct {
	paymentSvc service.PaymentService
	logger     *zap.Logger
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(paymentSvc service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc, logger: logger}
}

// ListPayments GET /api/v1/gigs/:id/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	rows, err := h.paymentSvc.List(c.Request.Context(), id)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rows})
}

// RecordPayment POST /api/v1/gigs/:id/payments
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p, err := h.paymentSvc.Record(c.Request.Context(), id, &req)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.Created(c, p)
}

// DeletePayment DELETE /api/v1/payments/:id
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.paymentSvc.Delete(c.Request.Context(), id); err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, nil)
}

// Closeout PUT /api/v1/gigs/:id/closeout
func (h *PaymentHandler) Closeout(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.CloseoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.paymentSvc.Closeout(c.Request.Context(), id, &req)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, res)
}

// Reopen POST /api/v1/gigs/:id/closeout/reopen
func (h *PaymentHandler) Reopen(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.paymentSvc.Reopen(c.Request.Context(), id)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, res)
}

func (h *PaymentHandler) handlePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGigNotFound):
		response.NotFound(c, 20001, "gig not found")
	case errors.Is(err, service.ErrPaymentNotFound):
		response.NotFound(c, 23001, "payment not found")
	case errors.Is(err, service.ErrWithheldExceedsAmount), errors.Is(err, service.ErrNegativeAmount):
		response.Unprocessable(c, 23002, err.Error(), nil)
	case errors.Is(err, service.ErrGigClosed):
		response.Conflict(c, 23003, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 20002, err.Error())
	default:
		handleStoreError(c, h.logger, err)
	}
}
