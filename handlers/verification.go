package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type kycReviewRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Reason  string `json:"reason"`
}

func (h *Handler) ReviewKYCHandler(c *gin.Context) {
	var req kycReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.office.ReviewKYC(c.Request.Context(), c.Param("id"), *req.Approve, req.Reason, h.now()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
