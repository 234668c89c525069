package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	apperrors "github.com/dealscope/comps-api/internal/errors"
	"github.com/dealscope/comps-api/internal/models"
)

// feedbackRepository implements FeedbackRepository
type feedbackRepository struct {
	db dbExecutor
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db dbExecutor) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Upsert writes a feedback record, replacing any prior record for the same
// ordered (input, match) pair. The unique constraint on the pair makes the
// "one active record" invariant a database guarantee.
func (r *feedbackRepository) Upsert(ctx context.Context, record *models.FeedbackRecord) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	query := `
		INSERT INTO match_feedback (input_company_id, match_company_id, feedback_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (input_company_id, match_company_id)
		DO UPDATE SET feedback_type = EXCLUDED.feedback_type, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		record.InputCompanyID, record.MatchCompanyID, string(record.FeedbackType),
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return apperrors.DatabaseError("failed to upsert feedback", err)
	}
	return nil
}

// GetByPair retrieves the active feedback record for an ordered pair
func (r *feedbackRepository) GetByPair(ctx context.Context, inputID, matchID int64) (*models.FeedbackRecord, error) {
	query := `
		SELECT input_company_id, match_company_id, feedback_type, created_at, updated_at
		FROM match_feedback
		WHERE input_company_id = $1 AND match_company_id = $2
	`

	record := &models.FeedbackRecord{}
	var feedbackType string
	err := r.db.QueryRowContext(ctx, query, inputID, matchID).Scan(
		&record.InputCompanyID, &record.MatchCompanyID, &feedbackType,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound(
				fmt.Sprintf("no feedback for pair (%d, %d)", inputID, matchID), nil)
		}
		return nil, apperrors.DatabaseError("failed to get feedback", err)
	}
	record.FeedbackType = models.FeedbackType(feedbackType)
	return record, nil
}

// ListExcludedMatchIDs returns match ids with an active not_a_match record
// from any of the given input companies.
func (r *feedbackRepository) ListExcludedMatchIDs(ctx context.Context, inputIDs []int64) ([]int64, error) {
	if len(inputIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT match_company_id
		FROM match_feedback
		WHERE input_company_id = ANY($1) AND feedback_type = $2
		ORDER BY match_company_id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(inputIDs), string(models.FeedbackNotAMatch))
	if err != nil {
		return nil, apperrors.DatabaseError("failed to query feedback exclusions", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.DatabaseError("failed to scan feedback exclusion", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError("failed to iterate feedback exclusions", err)
	}
	return ids, nil
}
