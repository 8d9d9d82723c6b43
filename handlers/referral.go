package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/auth"
	"github.com/SaugatGautam100/courseplex-sub001/ledger"
	"github.com/SaugatGautam100/courseplex-sub001/middleware"
)

// LeaderboardsHandler returns the four boards computed from a fresh read.
func (h *Handler) LeaderboardsHandler(c *gin.Context) {
	in, err := ledger.LoadInputs(c.Request.Context(), h.st)
	if err != nil {
		h.respondError(c, err)
		return
	}
	now := h.now()
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"leaderboards": in.Leaderboards(now, h.opts),
		"generatedAt":  now.UnixMilli(),
	})
}

// LeaderboardStreamHandler pushes recomputed boards as server-sent events
// until the client goes away. Slow clients only see the latest boards.
func (h *Handler) LeaderboardStreamHandler(c *gin.Context) {
	updates := make(chan ledger.Leaderboards, 1)
	stop, err := ledger.Watch(h.st, h.opts, h.now, func(b ledger.Leaderboards) {
		select {
		case <-updates:
		default:
		}
		updates <- b
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer stop()

	ctx := c.Request.Context()
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case b := <-updates:
			c.SSEvent("leaderboards", b)
			return true
		}
	})
	h.log.Debug("leaderboard stream closed", zap.String("ip", c.ClientIP()))
}

// UserEarningsHandler is the dashboard summary. Users may only read their
// own figures unless they are admins.
func (h *Handler) UserEarningsHandler(c *gin.Context) {
	id := c.Param("id")
	if c.GetString(middleware.CtxUserID) != id && c.GetString(middleware.CtxUserRole) != auth.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	in, err := ledger.LoadInputs(c.Request.Context(), h.st)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"userId":   id,
		"earnings": in.Earnings(id, h.now(), h.opts),
	})
}
