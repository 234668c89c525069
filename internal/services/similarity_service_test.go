package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dealscope/comps-api/internal/cache"
	apperrors "github.com/dealscope/comps-api/internal/errors"
	"github.com/dealscope/comps-api/internal/logger"
	"github.com/dealscope/comps-api/internal/models"
	"github.com/dealscope/comps-api/internal/repository"
	"github.com/dealscope/comps-api/internal/similarity"
)

type fakeCompanyRepo struct {
	mu         sync.Mutex
	companies  map[int64]models.Company
	queryCalls int
	queryDelay time.Duration
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id int64) (*models.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("company %d not found", id), nil)
	}
	return &c, nil
}

func (r *fakeCompanyRepo) GetByIDs(_ context.Context, ids []int64) ([]models.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Company, 0, len(ids))
	for _, id := range ids {
		c, ok := r.companies[id]
		if !ok {
			return nil, apperrors.NotFound(fmt.Sprintf("company %d not found", id), nil)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCompanyRepo) List(_ context.Context, limit, offset int) ([]models.Company, error) {
	return nil, nil
}

func (r *fakeCompanyRepo) QueryCandidates(ctx context.Context, filter repository.CandidateFilter) ([]models.Company, error) {
	r.mu.Lock()
	r.queryCalls++
	delay := r.queryDelay
	r.mu.Unlock()
	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, apperrors.DatabaseError("candidate scan interrupted", ctx.Err())
		case <-time.After(delay):
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	excluded := make(map[int64]struct{}, len(filter.ExcludeIDs))
	for _, id := range filter.ExcludeIDs {
		excluded[id] = struct{}{}
	}
	out := make([]models.Company, 0, len(r.companies))
	for id, c := range r.companies {
		if _, ok := excluded[id]; ok {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeCompanyRepo) ListMissingDescription(_ context.Context, limit int) ([]models.Company, error) {
	return nil, nil
}

func (r *fakeCompanyRepo) UpdateDescription(_ context.Context, id int64, description string) error {
	return nil
}

type fakeFeedbackRepo struct {
	mu      sync.Mutex
	records map[[2]int64]models.FeedbackRecord
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{records: make(map[[2]int64]models.FeedbackRecord)}
}

func (r *fakeFeedbackRepo) Upsert(_ context.Context, record *models.FeedbackRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[[2]int64{record.InputCompanyID, record.MatchCompanyID}] = *record
	return nil
}

func (r *fakeFeedbackRepo) GetByPair(_ context.Context, inputID, matchID int64) (*models.FeedbackRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[[2]int64{inputID, matchID}]
	if !ok {
		return nil, apperrors.NotFound("feedback not found", nil)
	}
	return &rec, nil
}

func (r *fakeFeedbackRepo) ListExcludedMatchIDs(_ context.Context, inputIDs []int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int64
	for _, inputID := range inputIDs {
		for pair, rec := range r.records {
			if pair[0] == inputID && rec.FeedbackType == models.FeedbackNotAMatch {
				out = append(out, pair[1])
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

type fakeUserRepo struct{}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return nil, apperrors.NotFound("user not found", nil)
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return nil, apperrors.NotFound("user not found", nil)
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error { return nil }

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func int64Ptr(i int64) *int64     { return &i }
func floatPtr(f float64) *float64 { return &f }

func testCompany(id int64) models.Company {
	return models.Company{
		ID:             id,
		Name:           fmt.Sprintf("Company %d", id),
		IndustrySector: strPtr("Software"),
		Country:        strPtr("US"),
		MarketFocus:    strPtr("B2B"),
		Verticals:      []string{"fintech", "payments"},
		TechnologyTags: []string{"go", "postgres"},
		EmployeeCount:  int64Ptr(500),
		Revenue:        floatPtr(2000000),
		FundingStage:   intPtr(models.StageSeriesB),
	}
}

type testEnv struct {
	companyRepo  *fakeCompanyRepo
	feedbackRepo *fakeFeedbackRepo
	cache        *cache.MemoryCache
	similarity   SimilarityService
	feedback     FeedbackService
}

func newTestEnv(companies ...models.Company) *testEnv {
	companyRepo := &fakeCompanyRepo{companies: make(map[int64]models.Company)}
	for _, c := range companies {
		companyRepo.companies[c.ID] = c
	}
	feedbackRepo := newFakeFeedbackRepo()
	repos := &repository.Repositories{
		Company:  companyRepo,
		Feedback: feedbackRepo,
		User:     &fakeUserRepo{},
	}
	resultCache := cache.NewMemoryCache(time.Minute)
	engine := similarity.NewEngine(nil, time.Second)
	log := logger.NewNop()

	return &testEnv{
		companyRepo:  companyRepo,
		feedbackRepo: feedbackRepo,
		cache:        resultCache,
		similarity:   newSimilarityService(repos, engine, resultCache, 500, log),
		feedback:     newFeedbackService(repos, resultCache, log),
	}
}

func matchIDs(result *FindSimilarResult) []int64 {
	ids := make([]int64, 0, len(result.Matches))
	for _, m := range result.Matches {
		ids = append(ids, m.Company.ID)
	}
	return ids
}

func TestFindSimilar_ExcludesSeedsAndRanks(t *testing.T) {
	env := newTestEnv(testCompany(1), testCompany(2), testCompany(3))

	result, err := env.similarity.FindSimilar(context.Background(), FindSimilarRequest{SeedIDs: []int64{1}})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}

	ids := matchIDs(result)
	if len(ids) != 2 {
		t.Fatalf("Expected 2 matches, got %v", ids)
	}
	for _, id := range ids {
		if id == 1 {
			t.Error("Expected the seed company to be excluded from its own results")
		}
	}
	if result.TotalResults != 2 {
		t.Errorf("Expected total 2, got %d", result.TotalResults)
	}
	if result.Cached {
		t.Error("Expected first query to be a cache miss")
	}
}

func TestFindSimilar_SecondCallServedFromCache(t *testing.T) {
	env := newTestEnv(testCompany(1), testCompany(2))

	first, err := env.similarity.FindSimilar(context.Background(), FindSimilarRequest{SeedIDs: []int64{1}})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	second, err := env.similarity.FindSimilar(context.Background(), FindSimilarRequest{SeedIDs: []int64{1}})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}

	if first.Cached || !second.Cached {
		t.Errorf("Expected miss then hit, got cached=%v then %v", first.Cached, second.Cached)
	}
	if env.companyRepo.queryCalls != 1 {
		t.Errorf("Expected a single candidate scan, got %d", env.companyRepo.queryCalls)
	}
	if len(second.Matches) != len(first.Matches) {
		t.Error("Expected identical matches from the cache")
	}
}

func TestFindSimilar_SeedOrderSharesCacheEntry(t *testing.T) {
	env := newTestEnv(testCompany(1), testCompany(2), testCompany(3))

	ctx := context.Background()
	if _, err := env.similarity.FindSimilar(ctx, FindSimilarRequest{SeedIDs: []int64{1, 2}}); err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	result, err := env.similarity.FindSimilar(ctx, FindSimilarRequest{SeedIDs: []int64{2, 1}})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}

	if !result.Cached {
		t.Error("Expected permuted seed ids to hit the same cache entry")
	}
}

func TestFindSimilar_HighThresholdReturnsEmpty(t *testing.T) {
	env := newTestEnv(testCompany(1), testCompany(2))

	minScore := 95.0
	result, err := env.similarity.FindSimilar(context.Background(), FindSimilarRequest{
		SeedIDs:  []int64{1},
		MinScore: &minScore,
	})
	if err != nil {
		t.Fatalf("Expected no error for an empty result, got %v", err)
	}
	if len(result.Matches) != 0 || result.TotalResults != 0 {
		t.Errorf("Expected empty result above threshold, got %d matches total=%d",
			len(result.Matches), result.TotalResults)
	}
}

func TestFindSimilar_ClampsParameters(t *testing.T) {
	env := newTestEnv(testCompany(1), testCompany(2))

	minScore := -5.0
	limit := 1000
	result, err := env.similarity.FindSimilar(context.Background(), FindSimilarRequest{
		SeedIDs:  []int64{1},
		MinScore: &minScore,
		Limit:    &limit,
	})
	if err != nil {
		t.Fatalf("Expected clamped parameters to be accepted, got %v", err)
	}
	if len(result.Matches) != 1 {
		t.Errorf("Expected 1 match, got %d", len(result.Matches))
	}
}

func TestFindSimilar_NoSeeds(t *testing.T) {
	env := newTestEnv()

	_, err := env.similarity.FindSimilar(context.Background(), FindSimilarRequest{})
	if apperrors.CodeOf(err) != apperrors.ErrCodeValidationError {
		t.Errorf("Expected VALIDATION_ERROR, got %v", err)
	}
}

func TestFindSimilar_UnknownSeed(t *testing.T) {
	env := newTestEnv(testCompany(1))

	_, err := env.similarity.FindSimilar(context.Background(), FindSimilarRequest{SeedIDs: []int64{1, 99}})
	if !apperrors.IsNotFound(err) {
		t.Errorf("Expected NOT_FOUND for unknown seed, got %v", err)
	}
}

func TestFindSimilar_ConcurrentQueriesCoalesce(t *testing.T) {
	env := newTestEnv(testCompany(1), testCompany(2), testCompany(3))
	env.companyRepo.queryDelay = 50 * time.Millisecond

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.similarity.FindSimilar(context.Background(), FindSimilarRequest{SeedIDs: []int64{1}})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatalf("FindSimilar failed: %v", err)
		}
	}
	env.companyRepo.mu.Lock()
	calls := env.companyRepo.queryCalls
	env.companyRepo.mu.Unlock()
	if calls != 1 {
		t.Errorf("Expected concurrent identical queries to coalesce into one scan, got %d", calls)
	}
}

func TestFindSimilar_LeaderCancellationDoesNotFailWaiters(t *testing.T) {
	env := newTestEnv(testCompany(1), testCompany(2), testCompany(3))
	env.companyRepo.queryDelay = 50 * time.Millisecond

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var waiterResult *FindSimilarResult
	var waiterErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		// The leader abandons mid-scan; its own outcome is irrelevant here
		env.similarity.FindSimilar(leaderCtx, FindSimilarRequest{SeedIDs: []int64{1}})
	}()
	time.Sleep(10 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		waiterResult, waiterErr = env.similarity.FindSimilar(context.Background(), FindSimilarRequest{SeedIDs: []int64{1}})
	}()
	time.Sleep(10 * time.Millisecond)

	cancelLeader()
	wg.Wait()

	if waiterErr != nil {
		t.Fatalf("Expected the waiter to get the shared result despite leader cancellation, got %v", waiterErr)
	}
	if len(waiterResult.Matches) != 2 {
		t.Errorf("Expected 2 matches for the waiter, got %d", len(waiterResult.Matches))
	}

	// The completed flight was cached for later callers too
	later, err := env.similarity.FindSimilar(context.Background(), FindSimilarRequest{SeedIDs: []int64{1}})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if !later.Cached {
		t.Error("Expected the abandoned flight's result to have been cached")
	}
}

func TestFeedback_ExclusionIsDirectional(t *testing.T) {
	env := newTestEnv(testCompany(1), testCompany(2), testCompany(3))
	ctx := context.Background()

	if err := env.feedback.Submit(ctx, 1, 2, models.FeedbackNotAMatch); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	forward, err := env.similarity.FindSimilar(ctx, FindSimilarRequest{SeedIDs: []int64{1}})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	for _, id := range matchIDs(forward) {
		if id == 2 {
			t.Error("Expected company 2 excluded from searches seeded by company 1")
		}
	}

	// The reverse direction is unaffected
	reverse, err := env.similarity.FindSimilar(ctx, FindSimilarRequest{SeedIDs: []int64{2}})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	found := false
	for _, id := range matchIDs(reverse) {
		if id == 1 {
			found = true
		}
	}
	if !found {
		t.Error("Expected company 1 still returned for searches seeded by company 2")
	}
}

func TestFeedback_InvalidatesCachedResults(t *testing.T) {
	env := newTestEnv(testCompany(1), testCompany(2), testCompany(3))
	ctx := context.Background()

	if _, err := env.similarity.FindSimilar(ctx, FindSimilarRequest{SeedIDs: []int64{1}}); err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}

	if err := env.feedback.Submit(ctx, 1, 2, models.FeedbackNotAMatch); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	result, err := env.similarity.FindSimilar(ctx, FindSimilarRequest{SeedIDs: []int64{1}})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if result.Cached {
		t.Error("Expected feedback to invalidate the cached result")
	}
	for _, id := range matchIDs(result) {
		if id == 2 {
			t.Error("Expected excluded company absent after invalidation")
		}
	}
}

func TestFeedback_GoodMatchSupersedesExclusion(t *testing.T) {
	env := newTestEnv(testCompany(1), testCompany(2))
	ctx := context.Background()

	if err := env.feedback.Submit(ctx, 1, 2, models.FeedbackNotAMatch); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := env.feedback.Submit(ctx, 1, 2, models.FeedbackGoodMatch); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	result, err := env.similarity.FindSimilar(ctx, FindSimilarRequest{SeedIDs: []int64{1}})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	found := false
	for _, id := range matchIDs(result) {
		if id == 2 {
			found = true
		}
	}
	if !found {
		t.Error("Expected good_match to supersede the earlier exclusion")
	}
}

func TestFeedback_Validation(t *testing.T) {
	env := newTestEnv(testCompany(1), testCompany(2))
	ctx := context.Background()

	if err := env.feedback.Submit(ctx, 1, 2, "maybe"); apperrors.CodeOf(err) != apperrors.ErrCodeValidationError {
		t.Errorf("Expected VALIDATION_ERROR for unknown feedback type, got %v", err)
	}
	if err := env.feedback.Submit(ctx, 1, 1, models.FeedbackNotAMatch); apperrors.CodeOf(err) != apperrors.ErrCodeValidationError {
		t.Errorf("Expected VALIDATION_ERROR for a self pair, got %v", err)
	}
	if err := env.feedback.Submit(ctx, 1, 99, models.FeedbackNotAMatch); !apperrors.IsNotFound(err) {
		t.Errorf("Expected NOT_FOUND for unknown company, got %v", err)
	}
}
