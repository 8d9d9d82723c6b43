package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/middleware"
	"github.com/SaugatGautam100/courseplex-sub001/models"
	"github.com/SaugatGautam100/courseplex-sub001/rewards"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

func (h *Handler) AchieversHandler(c *gin.Context) {
	achievers, target, err := h.rewards.Achievers(c.Request.Context(), h.now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"target":    target,
		"achievers": achievers,
	})
}

func (h *Handler) GetMonthlyTargetHandler(c *gin.Context) {
	target, err := h.rewards.Target(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "target": target})
}

type monthlyTargetRequest struct {
	GoalAmount float64 `json:"goalAmount" binding:"required,gt=0"`
	Prize      string  `json:"prize" binding:"required"`
}

func (h *Handler) UpdateMonthlyTargetHandler(c *gin.Context) {
	var req monthlyTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target := models.MonthlyTarget{GoalAmount: models.NewAmount(req.GoalAmount), Prize: req.Prize}
	if err := rewards.SaveTarget(c.Request.Context(), h.st, target); err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info("🎯 monthly target updated",
		zap.Float64("goal_amount", req.GoalAmount),
		zap.String("prize", req.Prize),
		zap.String("admin_id", c.GetString(middleware.CtxUserID)))
	c.JSON(http.StatusOK, gin.H{"success": true, "target": target})
}

type awardPrizeRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *Handler) AwardPrizeHandler(c *gin.Context) {
	var req awardPrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, err := h.rewards.Award(c.Request.Context(), req.UserID, h.now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "prize": record, "prizeId": record.ID})
}

// DeleteUserHandler runs the cleanup cascade for one user.
func (h *Handler) DeleteUserHandler(c *gin.Context) {
	uid := c.Param("id")
	if segs, err := store.SplitPath(uid); err != nil || len(segs) != 1 || segs[0] != uid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	res, err := h.cleanup.DeleteUser(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info("user deleted by admin",
		zap.String("user_id", uid),
		zap.String("admin_id", c.GetString(middleware.CtxUserID)))
	c.JSON(http.StatusOK, gin.H{"success": true, "result": res})
}
