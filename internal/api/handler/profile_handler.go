package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/rsaputelli/PRS/internal/service"
	"github.com/rsaputelli/PRS/pkg/response"
)

// ProfileHandler the signed-in user and admin role management.
type ProfileHandler struct {
	profileSvc service.ProfileService
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// Me GET /api/v1/me
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	me, err := h.profileSvc.Me(c.Request.Context(), userID, GetEmail(c))
	if err != nil {
		handleStoreError(c, nil, err)
		return
	}

	response.OK(c, me)
}

// ListProfiles GET /api/v1/admin/profiles
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	rows, err := h.profileSvc.List(c.Request.Context())
	if err != nil {
		handleStoreError(c, nil, err)
		return
	}
	response.OK(c, gin.H{"list": rows})
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole PUT /api/v1/admin/profiles/:id/role
func (h *ProfileHandler) UpdateRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.profileSvc.UpdateRole(c.Request.Context(), id, req.Role); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			response.BadRequest(c, 26002, err.Error())
		case errors.Is(err, service.ErrProfileNotFound):
			response.NotFound(c, 26001, "profile not found")
		default:
			handleStoreError(c, nil, err)
		}
		return
	}

	response.OK(c, gin.H{"id": id, "role": req.Role})
}
