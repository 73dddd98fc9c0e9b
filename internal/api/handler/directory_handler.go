package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/service"
	"github.com/rsaputelli/PRS/pkg/response"
)

// DirectoryHandler CRUD routes shared by venues, agents, musicians and
// sound techs.
type DirectoryHandler[T any, R any] struct {
	svc      service.DirectoryService[T, R]
	notFound error
	logger   *zap.Logger
}

// NewDirectoryHandler creates a DirectoryHandler. notFound is the
// service's not-found sentinel for this directory.
func NewDirectoryHandler[T any, R any](svc service.DirectoryService[T, R], notFound error, logger *zap.Logger) *DirectoryHandler[T, R] {
	return &DirectoryHandler[T, R]{svc: svc, notFound: notFound, logger: logger}
}

// List GET /api/v1/{directory}
func (h *DirectoryHandler[T, R]) List(c *gin.Context) {
	var req dto.DirectoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	rows, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleDirectoryError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rows})
}

// Get GET /api/v1/{directory}/:id
func (h *DirectoryHandler[T, R]) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	row, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleDirectoryError(c, err)
		return
	}

	response.OK(c, row)
}

// Create POST /api/v1/{directory}
func (h *DirectoryHandler[T, R]) Create(c *gin.Context) {
	req := new(R)
	if err := c.ShouldBindJSON(req); err != nil {
		bindError(c, err)
		return
	}

	row, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.handleDirectoryError(c, err)
		return
	}

	response.Created(c, row)
}

// Update PUT /api/v1/{directory}/:id
func (h *DirectoryHandler[T, R]) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	req := new(R)
	if err := c.ShouldBindJSON(req); err != nil {
		bindError(c, err)
		return
	}

	row, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleDirectoryError(c, err)
		return
	}

	response.OK(c, row)
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive PUT /api/v1/{directory}/:id/active
func (h *DirectoryHandler[T, R]) SetActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.svc.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		h.handleDirectoryError(c, err)
		return
	}

	response.OK(c, gin.H{"id": id, "active": *req.Active})
}

// Delete DELETE /api/v1/{directory}/:id
func (h *DirectoryHandler[T, R]) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.handleDirectoryError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *DirectoryHandler[T, R]) handleDirectoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, h.notFound):
		response.NotFound(c, 24001, err.Error())
	case errors.Is(err, service.ErrStillReferenced):
		response.Conflict(c, 24002, err.Error())
	case errors.Is(err, service.ErrMusicianNoName):
		response.BadRequest(c, 24003, err.Error())
	case errors.Is(err, service.ErrNegativeAmount):
		response.BadRequest(c, 24004, err.Error())
	default:
		handleStoreError(c, h.logger, err)
	}
}

// ── People ──

// PeopleHandler the combined dropdown listing.
type PeopleHandler struct {
	peopleSvc service.PeopleService
}

// NewPeopleHandler creates a PeopleHandler.
func NewPeopleHandler(peopleSvc service.PeopleService) *PeopleHandler {
	return &PeopleHandler{peopleSvc: peopleSvc}
}

// ListPeople GET /api/v1/people
func (h *PeopleHandler) ListPeople(c *gin.Context) {
	var req dto.PeopleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	rows, err := h.peopleSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleStoreError(c, nil, err)
		return
	}

	response.OK(c, gin.H{"list": rows})
}
