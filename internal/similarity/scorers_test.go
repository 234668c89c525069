package similarity

import (
	"math"
	"testing"

	"github.com/dealscope/comps-api/internal/models"
)

func TestScoreIndustry(t *testing.T) {
	tests := []struct {
		name          string
		profile       QueryProfile
		candidate     models.Company
		wantScore     float64
		wantAvailable bool
	}{
		{
			name:          "both sector and group match",
			profile:       QueryProfile{IndustrySector: strPtr("Software"), IndustryGroup: strPtr("Technology")},
			candidate:     models.Company{IndustrySector: strPtr("software"), IndustryGroup: strPtr("Technology")},
			wantScore:     MaxIndustry,
			wantAvailable: true,
		},
		{
			name:          "only sector matches",
			profile:       QueryProfile{IndustrySector: strPtr("Software"), IndustryGroup: strPtr("Technology")},
			candidate:     models.Company{IndustrySector: strPtr("Software"), IndustryGroup: strPtr("Healthcare")},
			wantScore:     MaxIndustry / 2,
			wantAvailable: true,
		},
		{
			name:          "no overlap",
			profile:       QueryProfile{IndustrySector: strPtr("Software")},
			candidate:     models.Company{IndustrySector: strPtr("Mining")},
			wantScore:     0,
			wantAvailable: true,
		},
		{
			name:          "candidate missing both fields",
			profile:       QueryProfile{IndustrySector: strPtr("Software")},
			candidate:     models.Company{},
			wantScore:     0,
			wantAvailable: false,
		},
		{
			name:          "profile missing both fields",
			profile:       QueryProfile{},
			candidate:     models.Company{IndustrySector: strPtr("Software")},
			wantScore:     0,
			wantAvailable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := scoreIndustry(&tt.profile, &tt.candidate)
			if b.Score != tt.wantScore {
				t.Errorf("Expected score %.1f, got %.1f", tt.wantScore, b.Score)
			}
			if b.Available != tt.wantAvailable {
				t.Errorf("Expected available=%v, got %v", tt.wantAvailable, b.Available)
			}
		})
	}
}

func TestScoreFundingStage(t *testing.T) {
	tests := []struct {
		name      string
		profile   *int
		candidate *int
		wantScore float64
	}{
		{"same stage", intPtr(models.StageSeriesB), intPtr(models.StageSeriesB), MaxFundingStage},
		{"one apart", intPtr(models.StageSeriesA), intPtr(models.StageSeriesB), MaxFundingStage * 6 / 7},
		{"full range apart", intPtr(models.StagePreSeed), intPtr(models.StageIPO), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := QueryProfile{FundingStage: tt.profile}
			c := models.Company{FundingStage: tt.candidate}
			b := scoreFundingStage(&p, &c)
			if math.Abs(b.Score-tt.wantScore) > 1e-9 {
				t.Errorf("Expected score %.4f, got %.4f", tt.wantScore, b.Score)
			}
			if !b.Available {
				t.Error("Expected dimension to be available")
			}
		})
	}

	b := scoreFundingStage(&QueryProfile{}, &models.Company{FundingStage: intPtr(models.StageSeed)})
	if b.Available || b.Score != 0 {
		t.Error("Expected unavailable zero score when profile stage is nil")
	}
}

func TestScoreGeography(t *testing.T) {
	tests := []struct {
		name          string
		profile       QueryProfile
		candidate     models.Company
		wantScore     float64
		wantAvailable bool
	}{
		{
			name:          "country state and city all match",
			profile:       QueryProfile{Country: strPtr("US"), StateRegion: strPtr("CA"), City: strPtr("San Francisco")},
			candidate:     models.Company{Country: strPtr("US"), StateRegion: strPtr("CA"), City: strPtr("san francisco")},
			wantScore:     MaxGeography,
			wantAvailable: true,
		},
		{
			name:          "country and state match",
			profile:       QueryProfile{Country: strPtr("US"), StateRegion: strPtr("CA"), City: strPtr("San Francisco")},
			candidate:     models.Company{Country: strPtr("US"), StateRegion: strPtr("CA"), City: strPtr("San Jose")},
			wantScore:     7,
			wantAvailable: true,
		},
		{
			name:          "country only",
			profile:       QueryProfile{Country: strPtr("US"), StateRegion: strPtr("CA")},
			candidate:     models.Company{Country: strPtr("US"), StateRegion: strPtr("NY")},
			wantScore:     4,
			wantAvailable: true,
		},
		{
			name:          "different countries score zero",
			profile:       QueryProfile{Country: strPtr("US"), StateRegion: strPtr("CA"), City: strPtr("San Francisco")},
			candidate:     models.Company{Country: strPtr("DE"), StateRegion: strPtr("CA"), City: strPtr("San Francisco")},
			wantScore:     0,
			wantAvailable: true,
		},
		{
			name:          "missing country is unavailable",
			profile:       QueryProfile{StateRegion: strPtr("CA")},
			candidate:     models.Company{Country: strPtr("US")},
			wantScore:     0,
			wantAvailable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := scoreGeography(&tt.profile, &tt.candidate)
			if b.Score != tt.wantScore {
				t.Errorf("Expected score %.1f, got %.1f", tt.wantScore, b.Score)
			}
			if b.Available != tt.wantAvailable {
				t.Errorf("Expected available=%v, got %v", tt.wantAvailable, b.Available)
			}
		})
	}
}

func TestScoreSize(t *testing.T) {
	p := QueryProfile{EmployeeCount: floatPtr(500)}
	c := models.Company{EmployeeCount: int64Ptr(550)}

	b := scoreSize(&p, &c)
	if !b.Available {
		t.Fatal("Expected dimension to be available")
	}
	want := MaxSize * (1 - math.Abs(math.Log(500)-math.Log(550))/math.Ln10)
	if math.Abs(b.Score-want) > 1e-9 {
		t.Errorf("Expected score %.4f, got %.4f", want, b.Score)
	}
	// 500 vs 550 is a near match, most of the budget survives
	if b.Score < 11 {
		t.Errorf("Expected near-full credit for a 10%% difference, got %.2f", b.Score)
	}
}

func TestScoreSize_OrderOfMagnitudeApart(t *testing.T) {
	p := QueryProfile{EmployeeCount: floatPtr(50)}
	c := models.Company{EmployeeCount: int64Ptr(5000)}

	b := scoreSize(&p, &c)
	if b.Score != 0 {
		t.Errorf("Expected zero score two orders of magnitude apart, got %.4f", b.Score)
	}
	if !b.Available {
		t.Error("Expected dimension to remain available")
	}
}

func TestScoreSize_NonPositiveUnavailable(t *testing.T) {
	p := QueryProfile{EmployeeCount: floatPtr(100)}
	c := models.Company{EmployeeCount: int64Ptr(0)}

	b := scoreSize(&p, &c)
	if b.Available || b.Score != 0 {
		t.Error("Expected unavailable zero score for non-positive employee count")
	}
}

func TestScoreRevenue_Symmetric(t *testing.T) {
	p := QueryProfile{Revenue: floatPtr(2000000)}
	c := models.Company{Revenue: floatPtr(6000000)}

	forward := scoreRevenue(&p, &c)

	p2 := QueryProfile{Revenue: floatPtr(6000000)}
	c2 := models.Company{Revenue: floatPtr(2000000)}
	reverse := scoreRevenue(&p2, &c2)

	if math.Abs(forward.Score-reverse.Score) > 1e-9 {
		t.Errorf("Expected symmetric scores, got %.6f vs %.6f", forward.Score, reverse.Score)
	}
}

func TestJaccardScoring(t *testing.T) {
	tests := []struct {
		name          string
		a, b          []string
		wantScore     float64
		wantAvailable bool
	}{
		{"identical sets", []string{"fintech", "payments"}, []string{"Payments", "Fintech"}, MaxVerticals, true},
		{"half overlap", []string{"fintech", "payments"}, []string{"fintech", "lending"}, MaxVerticals / 3, true},
		{"disjoint sets", []string{"fintech"}, []string{"mining"}, 0, true},
		{"candidate empty", []string{"fintech"}, nil, 0, false},
		{"both empty", nil, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := jaccardBreakdown(DimVerticals, MaxVerticals, tt.a, tt.b)
			if math.Abs(b.Score-tt.wantScore) > 1e-9 {
				t.Errorf("Expected score %.4f, got %.4f", tt.wantScore, b.Score)
			}
			if b.Available != tt.wantAvailable {
				t.Errorf("Expected available=%v, got %v", tt.wantAvailable, b.Available)
			}
		})
	}
}

func TestScoreMarketFocus(t *testing.T) {
	p := QueryProfile{MarketFocus: strPtr("B2B")}

	b := scoreMarketFocus(&p, &models.Company{MarketFocus: strPtr("b2b")})
	if b.Score != MaxMarketFocus || !b.Available {
		t.Errorf("Expected full score for case-insensitive match, got %.1f available=%v", b.Score, b.Available)
	}

	b = scoreMarketFocus(&p, &models.Company{MarketFocus: strPtr("B2C")})
	if b.Score != 0 || !b.Available {
		t.Errorf("Expected zero score for mismatch, got %.1f available=%v", b.Score, b.Available)
	}

	b = scoreMarketFocus(&p, &models.Company{})
	if b.Available {
		t.Error("Expected unavailable dimension when candidate has no market focus")
	}
}
