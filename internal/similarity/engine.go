package similarity

import (
	"context"
	"sort"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/dealscope/comps-api/internal/models"
)

// TextSimilarity is the description-similarity collaborator. Implementations
// return a bounded similarity in [0, 1] or an error when the judgment is
// unavailable; errors degrade the description dimension, never the request.
type TextSimilarity interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// scoringParallelism bounds the per-request scoring fan-out
const scoringParallelism = 8

// Engine runs the nine dimension scorers over candidates and ranks the
// results. All scorers are pure; the description scorer is the single
// external call and carries its own timeout.
type Engine struct {
	oracle        TextSimilarity
	oracleTimeout time.Duration
}

// NewEngine creates a scoring engine. oracle may be nil, in which case the
// description dimension is unavailable for every candidate.
func NewEngine(oracle TextSimilarity, oracleTimeout time.Duration) *Engine {
	if oracleTimeout <= 0 {
		oracleTimeout = 5 * time.Second
	}
	return &Engine{oracle: oracle, oracleTimeout: oracleTimeout}
}

// ScoreCandidate scores one candidate against the profile across all nine
// dimensions and assembles the explainable match record.
func (e *Engine) ScoreCandidate(ctx context.Context, p *QueryProfile, c *models.Company) SimilarityMatch {
	breakdowns := []ScoreBreakdown{
		scoreIndustry(p, c),
		scoreFundingStage(p, c),
		scoreGeography(p, c),
		scoreSize(p, c),
		scoreRevenue(p, c),
		scoreVerticals(p, c),
		e.scoreDescription(ctx, p, c),
		scoreMarketFocus(p, c),
		scoreTechStack(p, c),
	}

	match := SimilarityMatch{
		Company:        *c,
		ScoreBreakdown: breakdowns,
	}

	available := 0
	for _, b := range breakdowns {
		match.SimilarityScore += b.Score
		if b.Available {
			available++
		}
		if b.Available && b.Score >= b.MaxScore/2 {
			match.MatchingAttributes = append(match.MatchingAttributes, b.Category)
		}
	}
	match.Confidence = 100 * float64(available) / float64(len(Dimensions))
	return match
}

// scoreDescription delegates to the external oracle under a hard timeout.
// A missing oracle, missing text on either side, or any oracle failure
// leaves the dimension unavailable at score 0.
func (e *Engine) scoreDescription(ctx context.Context, p *QueryProfile, c *models.Company) ScoreBreakdown {
	b := breakdown(DimDescription)
	if e.oracle == nil || p.Description == nil || *p.Description == "" || !c.HasDescription() {
		return b
	}

	callCtx, cancel := context.WithTimeout(ctx, e.oracleTimeout)
	defer cancel()

	value, err := e.oracle.Similarity(callCtx, *p.Description, *c.Description)
	if err != nil {
		return b
	}
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}

	b.Available = true
	b.Score = MaxDescription * value
	b.InputValue = truncate(*p.Description, 120)
	b.MatchValue = truncate(*c.Description, 120)
	b.InputLabel = b.InputValue
	b.MatchLabel = b.MatchValue
	return b
}

// Rank scores every candidate, drops those below minScore, sorts by
// (score desc, confidence desc, id asc) and truncates to limit. The id
// tie-break makes the ordering reproducible for caching and tests.
// Candidates are scored in parallel; ordering does not depend on it.
func (e *Engine) Rank(ctx context.Context, p *QueryProfile, candidates []models.Company, minScore float64, limit int) ([]SimilarityMatch, int, error) {
	scored := make([]SimilarityMatch, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoringParallelism)
	for i := range candidates {
		i := i
		g.Go(func() error {
			scored[i] = e.ScoreCandidate(gctx, p, &candidates[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	matches := make([]SimilarityMatch, 0, len(scored))
	for _, m := range scored {
		if m.SimilarityScore >= minScore {
			matches = append(matches, m)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].SimilarityScore != matches[j].SimilarityScore {
			return matches[i].SimilarityScore > matches[j].SimilarityScore
		}
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Company.ID < matches[j].Company.ID
	})

	total := len(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, total, nil
}

// truncate shortens s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
