package services

import (
	"context"

	"github.com/dealscope/comps-api/internal/cache"
	"github.com/dealscope/comps-api/internal/enrich"
	"github.com/dealscope/comps-api/internal/logger"
	"github.com/dealscope/comps-api/internal/models"
	"github.com/dealscope/comps-api/internal/repository"
	"github.com/dealscope/comps-api/internal/similarity"
	"github.com/dealscope/comps-api/pkg/config"
)

// Server-side bounds for caller-supplied query parameters. Out-of-range
// values are clamped, not rejected.
const (
	DefaultMinScore = 30.0
	DefaultLimit    = 10
	MaxLimit        = 100
)

// Services contains all application services
type Services struct {
	Similarity SimilarityService
	Feedback   FeedbackService
	Company    CompanyService
	Auth       AuthService
}

// FindSimilarRequest carries a similarity query. MinScore and Limit are
// optional; absent values take the server defaults.
type FindSimilarRequest struct {
	SeedIDs  []int64
	MinScore *float64
	Limit    *int
}

// FindSimilarResult is a ranked similarity response
type FindSimilarResult struct {
	Matches      []similarity.SimilarityMatch
	TotalResults int
	Cached       bool
}

// SimilarityService defines the interface for similarity queries
type SimilarityService interface {
	FindSimilar(ctx context.Context, req FindSimilarRequest) (*FindSimilarResult, error)
}

// FeedbackService defines the interface for match feedback
type FeedbackService interface {
	Submit(ctx context.Context, inputID, matchID int64, feedbackType models.FeedbackType) error
}

// CompanyService defines the interface for company reads and enrichment
type CompanyService interface {
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	List(ctx context.Context, limit, offset int) ([]models.Company, error)
	EnrichDescription(ctx context.Context, id int64) (string, error)
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	RefreshToken(ctx context.Context, token string) (*models.LoginResponse, error)
}

// Deps bundles the injected collaborators the services are built from
type Deps struct {
	Repos     *repository.Repositories
	Cache     cache.ResultCache
	Oracle    similarity.TextSimilarity
	Extractor *enrich.Extractor
	Config    *config.Config
	Logger    logger.Logger
}

// NewServices creates a new Services instance with all dependencies
func NewServices(deps Deps) *Services {
	engine := similarity.NewEngine(deps.Oracle, deps.Config.TextSimTimeout)

	return &Services{
		Similarity: newSimilarityService(deps.Repos, engine, deps.Cache, deps.Config.CandidateLimit, deps.Logger),
		Feedback:   newFeedbackService(deps.Repos, deps.Cache, deps.Logger),
		Company:    newCompanyService(deps.Repos, deps.Extractor),
		Auth:       newAuthService(deps.Repos, deps.Config),
	}
}
