package services

import (
	"context"
	"fmt"

	"github.com/dealscope/comps-api/internal/cache"
	apperrors "github.com/dealscope/comps-api/internal/errors"
	"github.com/dealscope/comps-api/internal/logger"
	"github.com/dealscope/comps-api/internal/models"
	"github.com/dealscope/comps-api/internal/repository"
)

// feedbackServiceImpl implements FeedbackService
type feedbackServiceImpl struct {
	repos *repository.Repositories
	cache cache.ResultCache
	log   logger.Logger
}

func newFeedbackService(repos *repository.Repositories, resultCache cache.ResultCache, log logger.Logger) FeedbackService {
	return &feedbackServiceImpl{repos: repos, cache: resultCache, log: log}
}

// Submit validates both companies exist, upserts the feedback record for
// the ordered (input, match) pair, and invalidates every cached result
// whose seed set contained the input company. The write and invalidation
// complete before Submit returns, so any query started afterwards sees the
// feedback.
func (s *feedbackServiceImpl) Submit(ctx context.Context, inputID, matchID int64, feedbackType models.FeedbackType) error {
	if !feedbackType.Valid() {
		return apperrors.ValidationError(
			fmt.Sprintf("invalid feedback type %q", feedbackType), nil)
	}
	if inputID == matchID {
		return apperrors.ValidationError("input and match company must differ", nil)
	}

	if _, err := s.repos.Company.GetByIDs(ctx, []int64{inputID, matchID}); err != nil {
		return err
	}

	record := &models.FeedbackRecord{
		InputCompanyID: inputID,
		MatchCompanyID: matchID,
		FeedbackType:   feedbackType,
	}
	if err := s.repos.Feedback.Upsert(ctx, record); err != nil {
		return err
	}

	if err := s.cache.InvalidateSeed(ctx, inputID); err != nil {
		// The feedback itself is durable; a stale cache entry would still
		// serve the excluded pair until its TTL, so surface the failure.
		return apperrors.InternalError("failed to invalidate cached results", err).
			WithOperation("feedback.submit")
	}

	s.log.Info("feedback recorded",
		"input_company_id", inputID, "match_company_id", matchID, "type", feedbackType)
	return nil
}
