package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dealscope/comps-api/internal/models"
	"github.com/dealscope/comps-api/internal/services"
)

// FeedbackHandler handles match feedback endpoints
type FeedbackHandler struct {
	feedbackService services.FeedbackService
}

// NewFeedbackHandler creates a feedback handler with service injection
func NewFeedbackHandler(feedbackService services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// submitFeedbackRequest is the request body for POST /companies/feedback
type submitFeedbackRequest struct {
	InputCompanyID int64  `json:"input_company_id" binding:"required"`
	MatchCompanyID int64  `json:"match_company_id" binding:"required"`
	FeedbackType   string `json:"feedback_type" binding:"required"`
}

// SubmitFeedback records a user judgment on a (input, match) pair
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var req submitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	err := h.feedbackService.Submit(c.Request.Context(),
		req.InputCompanyID, req.MatchCompanyID, models.FeedbackType(req.FeedbackType))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": time.Now(),
	})
}
