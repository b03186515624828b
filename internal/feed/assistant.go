package feed

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"petplaza/internal/assistant"
)

// Fallback answers shown instead of a raw model error
const (
	assistantNoAnswerMessage = "I couldn't find an answer. Try asking about pet care, diet, or behavior."
	assistantRetryMessage    = "Oops! The AI is taking a quick nap. Please try asking again in a moment."
)

// AskRequest is the request body for the pet-expert assistant
type AskRequest struct {
	Question string `json:"question" binding:"required,max=2000"`
}

// AskResponse carries the assistant's answer
type AskResponse struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer"`
}

// Ask handles POST /assistant. A model failure is not the asker's fault,
// so it surfaces as a 200 with a friendly retry message rather than a 5xx.
func (h *Handler) Ask(c *gin.Context) {
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Success: false,
			Error:   "assistant is not available",
		})
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return
	}

	answer, err := h.assistant.Ask(c.Request.Context(), req.Question)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyQuestion) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Success: false,
				Error:   err.Error(),
			})
			return
		}
		h.service.logger.Error("assistant request failed", "error", err)
		answer = assistantRetryMessage
	}
	if answer == "" {
		answer = assistantNoAnswerMessage
	}

	c.JSON(http.StatusOK, AskResponse{Success: true, Answer: answer})
}
