package similarity

import (
	"fmt"
	"math"
	"strings"

	"github.com/dealscope/comps-api/internal/models"
)

// scoreIndustry awards the full budget when both sector and group match,
// half when exactly one does. The dimension is unavailable when either side
// carries neither field.
func scoreIndustry(p *QueryProfile, c *models.Company) ScoreBreakdown {
	b := breakdown(DimIndustry)
	b.InputValue = joinNonEmpty(strVal(p.IndustrySector), strVal(p.IndustryGroup))
	b.MatchValue = joinNonEmpty(strVal(c.IndustrySector), strVal(c.IndustryGroup))
	b.InputLabel = b.InputValue
	b.MatchLabel = b.MatchValue

	profileEmpty := p.IndustryGroup == nil && p.IndustrySector == nil
	candidateEmpty := c.IndustryGroup == nil && c.IndustrySector == nil
	if profileEmpty || candidateEmpty {
		return b
	}

	b.Available = true
	matches := 0
	if equalStr(p.IndustrySector, c.IndustrySector) {
		matches++
	}
	if equalStr(p.IndustryGroup, c.IndustryGroup) {
		matches++
	}
	switch matches {
	case 2:
		b.Score = MaxIndustry
	case 1:
		b.Score = MaxIndustry / 2
	}
	return b
}

// scoreFundingStage decays linearly over the 0..7 ordinal range
func scoreFundingStage(p *QueryProfile, c *models.Company) ScoreBreakdown {
	b := breakdown(DimFundingStage)
	if p.FundingStage == nil || c.FundingStage == nil {
		return b
	}

	b.Available = true
	b.InputValue = fmt.Sprintf("%d", *p.FundingStage)
	b.MatchValue = fmt.Sprintf("%d", *c.FundingStage)
	b.InputLabel = models.FundingStageLabel(*p.FundingStage)
	b.MatchLabel = models.FundingStageLabel(*c.FundingStage)

	diff := math.Abs(float64(*p.FundingStage - *c.FundingStage))
	b.Score = MaxFundingStage * math.Max(0, 1-diff/float64(models.MaxStage))
	return b
}

// scoreGeography requires a country match for any credit; matching state
// and city tighten the score toward the full budget.
func scoreGeography(p *QueryProfile, c *models.Company) ScoreBreakdown {
	b := breakdown(DimGeography)
	b.InputValue = joinNonEmpty(strVal(p.City), strVal(p.StateRegion), strVal(p.Country))
	b.MatchValue = joinNonEmpty(strVal(c.City), strVal(c.StateRegion), strVal(c.Country))
	b.InputLabel = b.InputValue
	b.MatchLabel = b.MatchValue

	if p.Country == nil || c.Country == nil {
		return b
	}

	b.Available = true
	if !equalStr(p.Country, c.Country) {
		return b
	}
	switch {
	case equalStr(p.StateRegion, c.StateRegion) && equalStr(p.City, c.City):
		b.Score = MaxGeography
	case equalStr(p.StateRegion, c.StateRegion):
		b.Score = 7
	default:
		b.Score = 4
	}
	return b
}

// scoreSize compares employee counts on a symmetric log scale: equal counts
// take the full budget, credit runs out at one order of magnitude apart.
func scoreSize(p *QueryProfile, c *models.Company) ScoreBreakdown {
	b := breakdown(DimSize)
	if p.EmployeeCount == nil || *p.EmployeeCount <= 0 ||
		c.EmployeeCount == nil || *c.EmployeeCount <= 0 {
		return b
	}

	b.Available = true
	b.InputValue = fmt.Sprintf("%.0f", *p.EmployeeCount)
	b.MatchValue = fmt.Sprintf("%d", *c.EmployeeCount)
	b.InputLabel = b.InputValue + " employees"
	b.MatchLabel = b.MatchValue + " employees"
	b.Score = logRatioScore(*p.EmployeeCount, float64(*c.EmployeeCount), MaxSize)
	return b
}

// scoreRevenue uses the same log-ratio shape as size
func scoreRevenue(p *QueryProfile, c *models.Company) ScoreBreakdown {
	b := breakdown(DimRevenue)
	if p.Revenue == nil || *p.Revenue <= 0 || c.Revenue == nil || *c.Revenue <= 0 {
		return b
	}

	b.Available = true
	b.InputValue = fmt.Sprintf("%.0f", *p.Revenue)
	b.MatchValue = fmt.Sprintf("%.0f", *c.Revenue)
	b.InputLabel = "$" + b.InputValue
	b.MatchLabel = "$" + b.MatchValue
	b.Score = logRatioScore(*p.Revenue, *c.Revenue, MaxRevenue)
	return b
}

// scoreVerticals is Jaccard overlap over vertical tags, scaled to the budget
func scoreVerticals(p *QueryProfile, c *models.Company) ScoreBreakdown {
	return jaccardBreakdown(DimVerticals, MaxVerticals, p.Verticals, c.Verticals)
}

// scoreMarketFocus is an exact categorical match
func scoreMarketFocus(p *QueryProfile, c *models.Company) ScoreBreakdown {
	b := breakdown(DimMarketFocus)
	if p.MarketFocus == nil || c.MarketFocus == nil {
		return b
	}

	b.Available = true
	b.InputValue = *p.MarketFocus
	b.MatchValue = *c.MarketFocus
	b.InputLabel = b.InputValue
	b.MatchLabel = b.MatchValue
	if equalStr(p.MarketFocus, c.MarketFocus) {
		b.Score = MaxMarketFocus
	}
	return b
}

// scoreTechStack is Jaccard overlap over technology tags
func scoreTechStack(p *QueryProfile, c *models.Company) ScoreBreakdown {
	return jaccardBreakdown(DimTechStack, MaxTechStack, p.TechnologyTags, c.TechnologyTags)
}

// jaccardBreakdown scores |A ∩ B| / |A ∪ B| scaled to max. Either side
// being empty makes the dimension unavailable rather than dividing by zero.
func jaccardBreakdown(dim Dimension, max float64, a, b []string) ScoreBreakdown {
	out := breakdown(dim)
	out.InputValue = strings.Join(a, ", ")
	out.MatchValue = strings.Join(b, ", ")
	out.InputLabel = out.InputValue
	out.MatchLabel = out.MatchValue

	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return out
	}

	out.Available = true
	intersection := 0
	for key := range setA {
		if _, ok := setB[key]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	out.Score = max * float64(intersection) / float64(union)
	return out
}

// logRatioScore maps the absolute difference of natural logs onto [0, max]:
// full score at equality, zero from one order of magnitude apart.
func logRatioScore(a, b, max float64) float64 {
	delta := math.Abs(math.Log(a) - math.Log(b))
	return max * math.Max(0, 1-delta/math.Ln10)
}

func breakdown(dim Dimension) ScoreBreakdown {
	return ScoreBreakdown{
		Category: dim,
		MaxScore: dim.MaxScore(),
	}
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.ToLower(strings.TrimSpace(tag))
		if trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return set
}

func equalStr(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(*a), strings.TrimSpace(*b))
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
