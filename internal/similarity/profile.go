package similarity

import (
	"sort"
	"strings"

	"github.com/dealscope/comps-api/internal/models"
)

// QueryProfile is the combined comparison target derived from one or more
// seed companies. Nil pointer fields and empty sets mean the attribute was
// absent across every seed; the matching dimension then scores 0 with
// available=false for every candidate.
type QueryProfile struct {
	SeedIDs        []int64
	IndustryGroup  *string
	IndustrySector *string
	Country        *string
	StateRegion    *string
	City           *string
	MarketFocus    *string
	FundingStage   *int
	EmployeeCount  *float64
	Revenue        *float64
	Verticals      []string
	TechnologyTags []string
	Description    *string
}

// BuildProfile combines seed companies into a single query profile.
// Single-valued categorical fields take the mode across seeds with ties
// broken by the lowest seed id; set fields take the union; numeric fields
// the arithmetic mean of non-null values. The description comes from the
// lowest-id seed that has one.
func BuildProfile(seeds []models.Company) QueryProfile {
	ordered := make([]models.Company, len(seeds))
	copy(ordered, seeds)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	p := QueryProfile{SeedIDs: make([]int64, 0, len(ordered))}
	for _, s := range ordered {
		p.SeedIDs = append(p.SeedIDs, s.ID)
	}

	p.IndustryGroup = modeString(ordered, func(c models.Company) *string { return c.IndustryGroup })
	p.IndustrySector = modeString(ordered, func(c models.Company) *string { return c.IndustrySector })
	p.Country = modeString(ordered, func(c models.Company) *string { return c.Country })
	p.StateRegion = modeString(ordered, func(c models.Company) *string { return c.StateRegion })
	p.City = modeString(ordered, func(c models.Company) *string { return c.City })
	p.MarketFocus = modeString(ordered, func(c models.Company) *string { return c.MarketFocus })
	p.FundingStage = modeInt(ordered, func(c models.Company) *int { return c.FundingStage })

	p.EmployeeCount = meanOf(ordered, func(c models.Company) *float64 {
		if c.EmployeeCount == nil {
			return nil
		}
		v := float64(*c.EmployeeCount)
		return &v
	})
	p.Revenue = meanOf(ordered, func(c models.Company) *float64 { return c.Revenue })

	p.Verticals = unionOf(ordered, func(c models.Company) []string { return c.Verticals })
	p.TechnologyTags = unionOf(ordered, func(c models.Company) []string { return c.TechnologyTags })

	for _, s := range ordered {
		if s.HasDescription() {
			p.Description = s.Description
			break
		}
	}

	return p
}

// modeString picks the most frequent non-empty value. Seeds are already in
// ascending id order, so on a tie the value first contributed by the lowest
// seed id wins because later entries only replace on a strictly higher count.
func modeString(seeds []models.Company, get func(models.Company) *string) *string {
	type entry struct {
		display string
		count   int
	}
	var order []string
	counts := make(map[string]*entry)

	for _, s := range seeds {
		v := get(s)
		if v == nil || strings.TrimSpace(*v) == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(*v))
		e, ok := counts[key]
		if !ok {
			e = &entry{display: strings.TrimSpace(*v)}
			counts[key] = e
			order = append(order, key)
		}
		e.count++
	}

	var best *entry
	for _, key := range order {
		e := counts[key]
		if best == nil || e.count > best.count {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	return &best.display
}

func modeInt(seeds []models.Company, get func(models.Company) *int) *int {
	type entry struct {
		value int
		count int
	}
	var order []int
	counts := make(map[int]*entry)

	for _, s := range seeds {
		v := get(s)
		if v == nil {
			continue
		}
		e, ok := counts[*v]
		if !ok {
			e = &entry{value: *v}
			counts[*v] = e
			order = append(order, *v)
		}
		e.count++
	}

	var best *entry
	for _, key := range order {
		e := counts[key]
		if best == nil || e.count > best.count {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	return &best.value
}

func meanOf(seeds []models.Company, get func(models.Company) *float64) *float64 {
	var sum float64
	var n int
	for _, s := range seeds {
		if v := get(s); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

// unionOf merges tag sets across seeds, deduplicating case-insensitively.
// The result is sorted so profiles built from the same seeds are identical
// regardless of input order.
func unionOf(seeds []models.Company, get func(models.Company) []string) []string {
	seen := make(map[string]string)
	for _, s := range seeds {
		for _, tag := range get(s) {
			trimmed := strings.TrimSpace(tag)
			if trimmed == "" {
				continue
			}
			key := strings.ToLower(trimmed)
			if _, ok := seen[key]; !ok {
				seen[key] = trimmed
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for _, display := range seen {
		out = append(out, display)
	}
	sort.Strings(out)
	return out
}
