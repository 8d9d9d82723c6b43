package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/backoffice"
	"github.com/SaugatGautam100/courseplex-sub001/cleanup"
	"github.com/SaugatGautam100/courseplex-sub001/rewards"
)

// respondError maps service errors to HTTP statuses. Anything unknown is a
// 500 with a generic message; the cause is only logged.
func (h *Handler) respondError(c *gin.Context, err error) {
	var cerr *cleanup.CleanupError
	switch {
	case errors.As(err, &cerr):
		h.log.Error("❌ user deletion failed", zap.String("user_id", cerr.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "user cleanup failed",
			"phase":     cerr.Phase,
			"committed": cerr.Committed,
		})
	case errors.Is(err, backoffice.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, backoffice.ErrInvalidTransition), errors.Is(err, rewards.ErrAlreadyAwarded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, backoffice.ErrInsufficientBalance),
		errors.Is(err, backoffice.ErrInvalidAmount),
		errors.Is(err, rewards.ErrNotAchiever):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, rewards.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
