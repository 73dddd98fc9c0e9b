package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgerrors "github.com/rsaputelli/PRS/pkg/errors"
	"github.com/rsaputelli/PRS/pkg/response"
)

// handleStoreError maps translated database errors that any module can hit;
// everything else is logged and becomes a 500.
func handleStoreError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrReferenced):
		response.Conflict(c, 10007, "record is still referenced")
	case errors.Is(err, pkgerrors.ErrDuplicate):
		response.Conflict(c, 10006, "record already exists")
	case errors.Is(err, pkgerrors.ErrConstraint):
		response.Unprocessable(c, 10008, "record violates a constraint", nil)
	default:
		if logger != nil {
			logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		response.InternalError(c)
	}
}

// bindError a 400 with the validator message as details.
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "invalid parameters", err.Error())
}
