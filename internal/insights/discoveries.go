package insights

import (
	"slices"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

// YearCount is the number of species for one year value.
type YearCount struct {
	Year    int `json:"year"`
	Species int `json:"species"`
}

// DiscoveryView summarizes who named the species and when.
type DiscoveryView struct {
	TopNamers []Count     `json:"top_namers"`
	ByAge     []YearCount `json:"by_fossil_age"`
	ByYear    []YearCount `json:"by_discovery_year"`
}

// Discoveries returns the top n namers (all of them when n < 0), species per
// period_to (oldest first) and species per discovery year (earliest first).
func Discoveries(t *dataset.Table, n int) DiscoveryView {
	namers := countBy(t, func(r dataset.Record) string { return r.NamedBy })
	if n >= 0 && len(namers) > n {
		namers = namers[:n]
	}
	byAge := countYears(t, func(r dataset.Record) int { return r.PeriodTo })
	slices.Reverse(byAge)
	return DiscoveryView{
		TopNamers: namers,
		ByAge:     byAge,
		ByYear:    countYears(t, func(r dataset.Record) int { return r.Discovered }),
	}
}

// countYears tallies an integer key, ascending by key.
func countYears(t *dataset.Table, key func(dataset.Record) int) []YearCount {
	counts := map[int]int{}
	for i := 0; i < t.Len(); i++ {
		counts[key(t.At(i))]++
	}
	out := make([]YearCount, 0, len(counts))
	for y, c := range counts {
		out = append(out, YearCount{Year: y, Species: c})
	}
	slices.SortFunc(out, func(a, b YearCount) int { return a.Year - b.Year })
	return out
}
