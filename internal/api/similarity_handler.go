package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dealscope/comps-api/internal/services"
)

// SimilarityHandler handles similarity query endpoints
type SimilarityHandler struct {
	similarityService services.SimilarityService
}

// NewSimilarityHandler creates a similarity handler with service injection
func NewSimilarityHandler(similarityService services.SimilarityService) *SimilarityHandler {
	return &SimilarityHandler{similarityService: similarityService}
}

// findSimilarRequest is the request body for POST /companies/similar
type findSimilarRequest struct {
	CompanyIDs []int64  `json:"company_ids" binding:"required"`
	MinScore   *float64 `json:"min_score"`
	Limit      *int     `json:"limit"`
}

// FindSimilar ranks the corpus against the seed companies and returns
// explainable matches.
func (h *SimilarityHandler) FindSimilar(c *gin.Context) {
	var req findSimilarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.similarityService.FindSimilar(c.Request.Context(), services.FindSimilarRequest{
		SeedIDs:  req.CompanyIDs,
		MinScore: req.MinScore,
		Limit:    req.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matches":       result.Matches,
		"total_results": result.TotalResults,
		"cached":        result.Cached,
		"timestamp":     time.Now(),
	})
}
