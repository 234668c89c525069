package models

import (
	"time"
)

// FeedbackType classifies a user judgment on a suggested match
type FeedbackType string

const (
	FeedbackNotAMatch FeedbackType = "not_a_match"
	FeedbackGoodMatch FeedbackType = "good_match"
)

// Valid reports whether the feedback type is one of the known values
func (t FeedbackType) Valid() bool {
	return t == FeedbackNotAMatch || t == FeedbackGoodMatch
}

// FeedbackRecord is a user judgment on the (input, match) ordered pair.
// At most one record is active per pair; a new submission supersedes the
// prior one. Exclusion is directional: it only affects searches seeded by
// InputCompanyID.
type FeedbackRecord struct {
	InputCompanyID int64        `json:"input_company_id" db:"input_company_id"`
	MatchCompanyID int64        `json:"match_company_id" db:"match_company_id"`
	FeedbackType   FeedbackType `json:"feedback_type" db:"feedback_type"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}
