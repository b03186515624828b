package feed

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SubmitFeedbackRequest is the request body for feedback submission
type SubmitFeedbackRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
	Type    string `json:"type,omitempty"`
}

// SaveInterestRequest is the request body for recording service interest
type SaveInterestRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
}

// SubmitFeedback handles POST /feedback
func (h *Handler) SubmitFeedback(c *gin.Context) {
	viewer := GetViewer(c)

	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return
	}

	if err := h.service.SaveFeedback(c.Request.Context(), viewer, req.Message, req.Type); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "feedback received",
	})
}

// SaveInterest handles POST /interests
func (h *Handler) SaveInterest(c *gin.Context) {
	viewer := GetViewer(c)

	var req SaveInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return
	}

	if err := h.service.SaveInterest(c.Request.Context(), viewer, req.ServiceID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "interest recorded",
	})
}

// AdminStats handles GET /admin/stats
func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "failed to aggregate stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
