package similarity

import (
	"github.com/dealscope/comps-api/internal/models"
)

// Dimension identifies one of the nine scoring axes
type Dimension string

const (
	DimIndustry     Dimension = "industry"
	DimFundingStage Dimension = "funding_stage"
	DimGeography    Dimension = "geography"
	DimSize         Dimension = "size"
	DimRevenue      Dimension = "revenue"
	DimVerticals    Dimension = "verticals"
	DimDescription  Dimension = "description"
	DimMarketFocus  Dimension = "market_focus"
	DimTechStack    Dimension = "technology_stack"
)

// Dimensions lists all scoring axes in breakdown order
var Dimensions = []Dimension{
	DimIndustry,
	DimFundingStage,
	DimGeography,
	DimSize,
	DimRevenue,
	DimVerticals,
	DimDescription,
	DimMarketFocus,
	DimTechStack,
}

// Fixed point budget per dimension. The budgets sum to 100 so a perfect
// match on every available dimension scores exactly 100.
const (
	MaxIndustry     = 20.0
	MaxFundingStage = 15.0
	MaxGeography    = 10.0
	MaxSize         = 12.0
	MaxRevenue      = 10.0
	MaxVerticals    = 15.0
	MaxDescription  = 8.0
	MaxMarketFocus  = 5.0
	MaxTechStack    = 5.0
)

// MaxScore returns the point budget for a dimension
func (d Dimension) MaxScore() float64 {
	switch d {
	case DimIndustry:
		return MaxIndustry
	case DimFundingStage:
		return MaxFundingStage
	case DimGeography:
		return MaxGeography
	case DimSize:
		return MaxSize
	case DimRevenue:
		return MaxRevenue
	case DimVerticals:
		return MaxVerticals
	case DimDescription:
		return MaxDescription
	case DimMarketFocus:
		return MaxMarketFocus
	case DimTechStack:
		return MaxTechStack
	}
	return 0
}

// ScoreBreakdown is the explainable result of one dimension scorer.
// Available is true only when both the profile and the candidate carried
// usable data for the dimension; unavailable dimensions always score 0.
type ScoreBreakdown struct {
	Category   Dimension `json:"category"`
	Score      float64   `json:"score"`
	MaxScore   float64   `json:"max_score"`
	Available  bool      `json:"available"`
	InputValue string    `json:"input_value"`
	MatchValue string    `json:"match_value"`
	InputLabel string    `json:"input_label"`
	MatchLabel string    `json:"match_label"`
}

// SimilarityMatch is one ranked candidate with its full score breakdown
type SimilarityMatch struct {
	Company            models.Company   `json:"company"`
	SimilarityScore    float64          `json:"similarity_score"`
	Confidence         float64          `json:"confidence"`
	MatchingAttributes []Dimension      `json:"matching_attributes"`
	ScoreBreakdown     []ScoreBreakdown `json:"score_breakdown"`
}
