package services

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dealscope/comps-api/internal/cache"
	apperrors "github.com/dealscope/comps-api/internal/errors"
	"github.com/dealscope/comps-api/internal/logger"
	"github.com/dealscope/comps-api/internal/repository"
	"github.com/dealscope/comps-api/internal/similarity"
)

// similarityServiceImpl implements SimilarityService
type similarityServiceImpl struct {
	repos          *repository.Repositories
	engine         *similarity.Engine
	cache          cache.ResultCache
	candidateLimit int
	log            logger.Logger
	group          singleflight.Group
}

func newSimilarityService(repos *repository.Repositories, engine *similarity.Engine, resultCache cache.ResultCache, candidateLimit int, log logger.Logger) SimilarityService {
	if candidateLimit <= 0 {
		candidateLimit = 500
	}
	return &similarityServiceImpl{
		repos:          repos,
		engine:         engine,
		cache:          resultCache,
		candidateLimit: candidateLimit,
		log:            log,
	}
}

// FindSimilar ranks the corpus against the profile built from the seed
// companies. Results are cached write-through under a normalized key and
// concurrent identical queries coalesce into one computation.
func (s *similarityServiceImpl) FindSimilar(ctx context.Context, req FindSimilarRequest) (*FindSimilarResult, error) {
	seedIDs := dedupeIDs(req.SeedIDs)
	if len(seedIDs) == 0 {
		return nil, apperrors.ValidationError("at least one seed company id is required", nil)
	}

	minScore := DefaultMinScore
	if req.MinScore != nil {
		minScore = clampFloat(*req.MinScore, 0, 100)
	}
	limit := DefaultLimit
	if req.Limit != nil {
		limit = clampInt(*req.Limit, 1, MaxLimit)
	}

	key := cache.Key(seedIDs, minScore, limit)

	if entry, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("result cache read failed", "key", key, "error", err)
	} else if entry != nil {
		return &FindSimilarResult{Matches: entry.Matches, TotalResults: entry.TotalResults, Cached: true}, nil
	}

	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		// The flight is shared by every coalesced waiter, so it must not die
		// with the leader: a caller that cancels or times out abandons the
		// computation, which still completes and caches for the others.
		flightCtx := context.WithoutCancel(ctx)

		// Another flight may have populated the cache while we queued
		if entry, err := s.cache.Get(flightCtx, key); err == nil && entry != nil {
			return entry, nil
		}
		return s.compute(flightCtx, key, seedIDs, minScore, limit)
	})
	if err != nil {
		return nil, err
	}

	entry := value.(*cache.Entry)
	return &FindSimilarResult{Matches: entry.Matches, TotalResults: entry.TotalResults}, nil
}

// compute runs the full pipeline: profile build, candidate selection,
// scoring, ranking, cache write-through.
func (s *similarityServiceImpl) compute(ctx context.Context, key string, seedIDs []int64, minScore float64, limit int) (*cache.Entry, error) {
	seeds, err := s.repos.Company.GetByIDs(ctx, seedIDs)
	if err != nil {
		return nil, err
	}

	profile := similarity.BuildProfile(seeds)

	excluded, err := s.repos.Feedback.ListExcludedMatchIDs(ctx, seedIDs)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repos.Company.QueryCandidates(ctx, s.candidateFilter(&profile, seedIDs, excluded))
	if err != nil {
		return nil, err
	}

	matches, total, err := s.engine.Rank(ctx, &profile, candidates, minScore, limit)
	if err != nil {
		return nil, err
	}

	entry := &cache.Entry{
		Matches:      matches,
		TotalResults: total,
		StoredAt:     time.Now(),
	}
	if err := s.cache.Set(ctx, key, entry, seedIDs); err != nil {
		s.log.Warn("result cache write failed", "key", key, "error", err)
	}

	s.log.Debug("similarity query computed",
		"seeds", seedIDs, "candidates", len(candidates), "matches", total)
	return entry, nil
}

// candidateFilter builds the coarse OR pre-filter from the profile. Each
// condition only reduces volume; none may be tighter than "could plausibly
// clear the score threshold", so a profile offering no usable condition
// ends up with an unfenced scan bounded only by the row cap.
func (s *similarityServiceImpl) candidateFilter(p *similarity.QueryProfile, seedIDs, excluded []int64) repository.CandidateFilter {
	filter := repository.CandidateFilter{
		ExcludeIDs: append(append([]int64(nil), seedIDs...), excluded...),
		Limit:      s.candidateLimit,
	}
	filter.Country = p.Country
	filter.IndustrySector = p.IndustrySector
	if p.Revenue != nil && *p.Revenue > 0 {
		low := *p.Revenue / 10
		high := *p.Revenue * 10
		filter.RevenueLow = &low
		filter.RevenueHigh = &high
	}
	return filter
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func clampFloat(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
