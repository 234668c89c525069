package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dealscope/comps-api/internal/models"
)

// dbExecutor abstracts *sql.DB and *sql.Tx for repository implementations
type dbExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CandidateFilter narrows the candidate scan before scoring. The conditions
// are combined with OR (coarse volume reducers, never correctness filters)
// and the scan is always capped at Limit rows ordered by id so the scoring
// cost is bounded regardless of corpus size. A filter with no conditions set
// scans the whole corpus up to Limit.
type CandidateFilter struct {
	ExcludeIDs     []int64
	Country        *string
	IndustrySector *string
	RevenueLow     *float64
	RevenueHigh    *float64
	Limit          int
}

// CompanyRepository defines the interface for company data access
type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	// GetByIDs returns the companies for ids; a NOT_FOUND error naming every
	// missing id is returned if any id is absent.
	GetByIDs(ctx context.Context, ids []int64) ([]models.Company, error)
	List(ctx context.Context, limit, offset int) ([]models.Company, error)
	// QueryCandidates performs the bounded candidate scan per CandidateFilter
	QueryCandidates(ctx context.Context, filter CandidateFilter) ([]models.Company, error)
	ListMissingDescription(ctx context.Context, limit int) ([]models.Company, error)
	UpdateDescription(ctx context.Context, id int64, description string) error
}

// FeedbackRepository defines the interface for match feedback data access
type FeedbackRepository interface {
	// Upsert writes the record, superseding any prior record for the same
	// ordered (input, match) pair. The write is durable before return.
	Upsert(ctx context.Context, record *models.FeedbackRecord) error
	GetByPair(ctx context.Context, inputID, matchID int64) (*models.FeedbackRecord, error)
	// ListExcludedMatchIDs returns ids with an active not_a_match record
	// from any of the given input companies.
	ListExcludedMatchIDs(ctx context.Context, inputIDs []int64) ([]int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Repositories groups all repository interfaces
type Repositories struct {
	Company  CompanyRepository
	Feedback FeedbackRepository
	User     UserRepository
}

// NewRepositories creates all repositories over one database handle
func NewRepositories(db dbExecutor) *Repositories {
	return &Repositories{
		Company:  NewCompanyRepository(db),
		Feedback: NewFeedbackRepository(db),
		User:     NewUserRepository(db),
	}
}
