package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dealscope/comps-api/internal/similarity"
)

// Entry is a cached ranked result for one normalized query
type Entry struct {
	Matches      []similarity.SimilarityMatch `json:"matches"`
	TotalResults int                          `json:"total_results"`
	StoredAt     time.Time                    `json:"stored_at"`
}

// ResultCache memoizes ranked similarity results for a bounded time.
// Implementations must be safe for concurrent use. Set records the seed ids
// behind the key so InvalidateSeed can drop every entry whose query included
// that seed.
type ResultCache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry, seedIDs []int64) error
	InvalidateSeed(ctx context.Context, seedID int64) error
}

// Key builds the normalized, order-independent cache key for a query
func Key(seedIDs []int64, minScore float64, limit int) string {
	sorted := make([]int64, len(seedIDs))
	copy(sorted, seedIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}

	var b strings.Builder
	b.WriteString("sim:v1:")
	b.WriteString(strings.Join(parts, ","))
	b.WriteString(":")
	b.WriteString(strconv.FormatFloat(minScore, 'g', -1, 64))
	b.WriteString(":")
	b.WriteString(strconv.Itoa(limit))
	return b.String()
}

// seedIndexKey is the key of the per-seed invalidation index
func seedIndexKey(seedID int64) string {
	return "sim:seed:" + strconv.FormatInt(seedID, 10)
}
