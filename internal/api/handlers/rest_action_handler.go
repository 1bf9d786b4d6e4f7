package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"localpro/browse/internal/models"
	"localpro/browse/internal/services"
)

// RestActionHandler forwards the single-record actions of the list screens.
type RestActionHandler struct {
	actionService services.IActionService
}

func NewRestActionHandler(actionService services.IActionService) *RestActionHandler {
	return &RestActionHandler{actionService: actionService}
}

// WithdrawApplication handles POST /v1/application/:id/withdraw
func (h *RestActionHandler) WithdrawApplication(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.actionService.WithdrawApplication(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondServiceError(c, err, "Failed to withdraw application")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CancelBooking handles POST /v1/booking/:id/cancel
func (h *RestActionHandler) CancelBooking(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.actionService.CancelBooking(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondServiceError(c, err, "Failed to cancel booking")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type defaultPaymentMethodRequest struct {
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
}

// SetDefaultPaymentMethod handles POST /v1/wallet/default-payment-method
func (h *RestActionHandler) SetDefaultPaymentMethod(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req defaultPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_method_id is required"})
		return
	}
	if err := h.actionService.SetDefaultPaymentMethod(c.Request.Context(), userID, req.PaymentMethodID); err != nil {
		respondServiceError(c, err, "Failed to update default payment method")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type jobStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeJobStatus handles POST /v1/job/:id/status
func (h *RestActionHandler) ChangeJobStatus(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req jobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	status, err := models.ParseJobStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.actionService.ChangeJobStatus(c.Request.Context(), userID, c.Param("id"), status); err != nil {
		respondServiceError(c, err, "Failed to update job status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
