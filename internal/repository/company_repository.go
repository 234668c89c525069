package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	apperrors "github.com/dealscope/comps-api/internal/errors"
	"github.com/dealscope/comps-api/internal/models"
)

const companyColumns = `id, name, website, industry_group, industry_sector, verticals,
	   country, state_region, city, employee_count, revenue, funding_stage,
	   market_focus, technology_tags, description, created_at, updated_at`

// companyRepository implements CompanyRepository
type companyRepository struct {
	db dbExecutor
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db dbExecutor) CompanyRepository {
	return &companyRepository{db: db}
}

// GetByID retrieves a company by ID
func (r *companyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE id = $1`, companyColumns)

	company, err := scanCompany(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound(fmt.Sprintf("company %d not found", id), nil)
		}
		return nil, apperrors.DatabaseError("failed to get company", err)
	}
	return company, nil
}

// GetByIDs retrieves companies by id, failing with NOT_FOUND naming every
// missing id if any id is absent.
func (r *companyRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Company, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM companies WHERE id = ANY($1) ORDER BY id`, companyColumns)

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, apperrors.DatabaseError("failed to query companies", err)
	}
	defer rows.Close()

	companies, err := scanCompanies(rows)
	if err != nil {
		return nil, err
	}

	if len(companies) < uniqueCount(ids) {
		found := make(map[int64]struct{}, len(companies))
		for _, c := range companies {
			found[c.ID] = struct{}{}
		}
		var missing []string
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				missing = append(missing, fmt.Sprintf("%d", id))
			}
		}
		return nil, apperrors.NotFound(
			fmt.Sprintf("companies not found: %s", strings.Join(missing, ", ")), nil)
	}
	return companies, nil
}

// List retrieves companies ordered by id for corpus inspection
func (r *companyRepository) List(ctx context.Context, limit, offset int) ([]models.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies ORDER BY id LIMIT $1 OFFSET $2`, companyColumns)

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to query companies", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

// QueryCandidates performs the bounded candidate scan. Pre-filter conditions
// are OR-ed so a candidate matching any one of them survives; when no
// condition applies the scan is unfenced and only the row cap bounds it.
func (r *companyRepository) QueryCandidates(ctx context.Context, filter CandidateFilter) ([]models.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies`, companyColumns)

	var whereClauses []string
	var args []interface{}
	argIndex := 1

	if len(filter.ExcludeIDs) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("NOT (id = ANY($%d))", argIndex))
		args = append(args, pq.Array(filter.ExcludeIDs))
		argIndex++
	}

	var orClauses []string
	if filter.Country != nil {
		orClauses = append(orClauses, fmt.Sprintf("country = $%d", argIndex))
		args = append(args, *filter.Country)
		argIndex++
	}
	if filter.IndustrySector != nil {
		orClauses = append(orClauses, fmt.Sprintf("industry_sector = $%d", argIndex))
		args = append(args, *filter.IndustrySector)
		argIndex++
	}
	if filter.RevenueLow != nil && filter.RevenueHigh != nil {
		orClauses = append(orClauses, fmt.Sprintf("revenue BETWEEN $%d AND $%d", argIndex, argIndex+1))
		args = append(args, *filter.RevenueLow, *filter.RevenueHigh)
		argIndex += 2
	}
	if len(orClauses) > 0 {
		whereClauses = append(whereClauses, "("+strings.Join(orClauses, " OR ")+")")
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Deterministic ordering with a hard cap keeps worst-case cost fixed
	query += " ORDER BY id"
	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to query candidates", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

// ListMissingDescription retrieves companies with a website but no
// description, in id order, for the enrichment job.
func (r *companyRepository) ListMissingDescription(ctx context.Context, limit int) ([]models.Company, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM companies
		WHERE (description IS NULL OR description = '')
		  AND website IS NOT NULL AND website != ''
		ORDER BY id LIMIT $1`, companyColumns)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to query companies missing descriptions", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

// UpdateDescription sets a company description
func (r *companyRepository) UpdateDescription(ctx context.Context, id int64, description string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE companies SET description = $2, updated_at = NOW() WHERE id = $1`,
		id, description,
	)
	if err != nil {
		return apperrors.DatabaseError("failed to update description", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.DatabaseError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound(fmt.Sprintf("company %d not found", id), nil)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCompany(row rowScanner) (*models.Company, error) {
	company := &models.Company{}
	err := row.Scan(
		&company.ID, &company.Name, &company.Website, &company.IndustryGroup,
		&company.IndustrySector, pq.Array(&company.Verticals), &company.Country,
		&company.StateRegion, &company.City, &company.EmployeeCount,
		&company.Revenue, &company.FundingStage, &company.MarketFocus,
		pq.Array(&company.TechnologyTags), &company.Description,
		&company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return company, nil
}

func scanCompanies(rows *sql.Rows) ([]models.Company, error) {
	var companies []models.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, apperrors.DatabaseError("failed to scan company", err)
		}
		companies = append(companies, *company)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError("failed to iterate companies", err)
	}
	return companies, nil
}

func uniqueCount(ids []int64) int {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}
