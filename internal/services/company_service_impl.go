package services

import (
	"context"

	"github.com/dealscope/comps-api/internal/enrich"
	apperrors "github.com/dealscope/comps-api/internal/errors"
	"github.com/dealscope/comps-api/internal/models"
	"github.com/dealscope/comps-api/internal/repository"
)

// companyServiceImpl implements CompanyService
type companyServiceImpl struct {
	repos     *repository.Repositories
	extractor *enrich.Extractor
}

func newCompanyService(repos *repository.Repositories, extractor *enrich.Extractor) CompanyService {
	return &companyServiceImpl{repos: repos, extractor: extractor}
}

// GetByID retrieves a company by id
func (s *companyServiceImpl) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	return s.repos.Company.GetByID(ctx, id)
}

// List retrieves a page of the corpus in id order
func (s *companyServiceImpl) List(ctx context.Context, limit, offset int) ([]models.Company, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repos.Company.List(ctx, limit, offset)
}

// EnrichDescription fetches the company website and stores the extracted
// description, returning it.
func (s *companyServiceImpl) EnrichDescription(ctx context.Context, id int64) (string, error) {
	company, err := s.repos.Company.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !company.HasWebsite() {
		return "", apperrors.ValidationError("company has no website to enrich from", nil)
	}

	description, err := s.extractor.FetchDescription(ctx, *company.Website)
	if err != nil {
		return "", apperrors.CollaboratorUnavailable("description extraction failed", err).
			WithOperation("company.enrich")
	}

	if err := s.repos.Company.UpdateDescription(ctx, id, description); err != nil {
		return "", err
	}
	return description, nil
}
