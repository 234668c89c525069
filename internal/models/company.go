package models

import (
	"time"
)

// FundingStage ordinals. Stored as a nullable smallint 0..7.
const (
	StagePreSeed = 0
	StageSeed    = 1
	StageSeriesA = 2
	StageSeriesB = 3
	StageSeriesC = 4
	StageSeriesD = 5
	StageLateVC  = 6
	StageIPO     = 7
	MaxStage     = StageIPO
)

// FundingStageLabel returns a display name for a funding stage ordinal.
func FundingStageLabel(stage int) string {
	labels := []string{
		"Pre-Seed", "Seed", "Series A", "Series B",
		"Series C", "Series D", "Late VC", "IPO",
	}
	if stage < 0 || stage >= len(labels) {
		return "Unknown"
	}
	return labels[stage]
}

// Company represents a company record. The similarity engine only reads
// these fields; writes come from the CRUD layer and the enrichment job.
// Every attribute except ID and Name may be absent.
type Company struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Website        *string   `json:"website,omitempty" db:"website"`
	IndustryGroup  *string   `json:"industry_group,omitempty" db:"industry_group"`
	IndustrySector *string   `json:"industry_sector,omitempty" db:"industry_sector"`
	Verticals      []string  `json:"verticals" db:"verticals"`
	Country        *string   `json:"country,omitempty" db:"country"`
	StateRegion    *string   `json:"state_region,omitempty" db:"state_region"`
	City           *string   `json:"city,omitempty" db:"city"`
	EmployeeCount  *int64    `json:"employee_count,omitempty" db:"employee_count"`
	Revenue        *float64  `json:"revenue,omitempty" db:"revenue"`
	FundingStage   *int      `json:"funding_stage,omitempty" db:"funding_stage"`
	MarketFocus    *string   `json:"market_focus,omitempty" db:"market_focus"`
	TechnologyTags []string  `json:"technology_tags" db:"technology_tags"`
	Description    *string   `json:"description,omitempty" db:"description"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// HasDescription reports whether the company carries a non-empty description
func (c *Company) HasDescription() bool {
	return c.Description != nil && *c.Description != ""
}

// HasWebsite reports whether the company carries a non-empty website URL
func (c *Company) HasWebsite() bool {
	return c.Website != nil && *c.Website != ""
}
