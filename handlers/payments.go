package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ApproveOrderHandler(c *gin.Context) {
	res, err := h.office.ApproveOrder(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "approval": res})
}

func (h *Handler) RejectOrderHandler(c *gin.Context) {
	if err := h.office.RejectOrder(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ApproveWithdrawalHandler(c *gin.Context) {
	err := h.office.ApproveWithdrawal(c.Request.Context(), c.Param("uid"), c.Param("requestId"), h.now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
