package insights

import (
	"slices"
	"strings"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

// Taxonomy markers and types used by the size queries.
const (
	theropodMarker    = "Theropoda"
	dromaeosaurMarker = "Paraves"
	sauropodMarker    = "Sauropodomorpha"
	largeTheropodType = "large theropod"
	// sizeBucketWidth is the inclusive span of a BySize bucket.
	sizeBucketWidth = 0.99
)

// SizeView holds length statistics. Records of length 0 (unknown) are
// excluded from every aggregate.
type SizeView struct {
	Measured           int              `json:"measured"`
	Average            float64          `json:"average"`
	LargestLength      float64          `json:"largest_length"`
	Largest            []dataset.Record `json:"largest"`
	SmallestLength     float64          `json:"smallest_length"`
	Smallest           []dataset.Record `json:"smallest"`
	LargestTheropod    []dataset.Record `json:"largest_theropod"`
	LargestDromaeosaur []dataset.Record `json:"largest_dromaeosaur"`
	Sauropods          []SizePoint      `json:"sauropod_timeline"`
}

// SizePoint is the average length of the records ending at one period_to.
type SizePoint struct {
	PeriodTo int     `json:"period_to"`
	Average  float64 `json:"average"`
}

// Sizes computes the length statistics.
func Sizes(t *dataset.Table) SizeView {
	measured := t.Filter(func(r dataset.Record) bool { return r.Length != 0 })
	out := SizeView{
		Measured:           measured.Len(),
		Largest:            []dataset.Record{},
		Smallest:           []dataset.Record{},
		LargestTheropod:    []dataset.Record{},
		LargestDromaeosaur: []dataset.Record{},
	}
	if measured.Len() == 0 {
		out.Sauropods = []SizePoint{}
		return out
	}
	var total float64
	out.LargestLength, out.SmallestLength = measured.At(0).Length, measured.At(0).Length
	for i := 0; i < measured.Len(); i++ {
		l := measured.At(i).Length
		total += l
		out.LargestLength = max(out.LargestLength, l)
		out.SmallestLength = min(out.SmallestLength, l)
	}
	out.Average = total / float64(measured.Len())
	out.Largest = measured.Filter(func(r dataset.Record) bool { return r.Length == out.LargestLength }).Records()
	out.Smallest = measured.Filter(func(r dataset.Record) bool { return r.Length == out.SmallestLength }).Records()
	out.LargestTheropod = longest(measured.Filter(taxonomyContains(theropodMarker)))
	out.LargestDromaeosaur = longest(measured.Filter(taxonomyContains(dromaeosaurMarker)))
	out.Sauropods = averageByPeriodTo(measured.Filter(taxonomyContains(sauropodMarker)))
	return out
}

// BySize returns measured records whose length falls in [n, n+0.99].
func BySize(t *dataset.Table, n float64) []dataset.Record {
	return t.Filter(func(r dataset.Record) bool {
		return r.Length != 0 && r.Length >= n && r.Length <= n+sizeBucketWidth
	}).Records()
}

// TopLargeTheropods returns up to n measured large theropods, longest first.
func TopLargeTheropods(t *dataset.Table, n int) []dataset.Record {
	recs := t.Filter(func(r dataset.Record) bool {
		return r.Length != 0 && r.Type == largeTheropodType
	}).Records()
	slices.SortStableFunc(recs, func(a, b dataset.Record) int {
		switch {
		case a.Length > b.Length:
			return -1
		case a.Length < b.Length:
			return 1
		}
		return 0
	})
	if n >= 0 && len(recs) > n {
		recs = recs[:n]
	}
	return recs
}

func taxonomyContains(marker string) func(dataset.Record) bool {
	return func(r dataset.Record) bool { return strings.Contains(r.Taxonomy, marker) }
}

func longest(t *dataset.Table) []dataset.Record {
	if t.Len() == 0 {
		return []dataset.Record{}
	}
	top := t.At(0).Length
	for i := 1; i < t.Len(); i++ {
		top = max(top, t.At(i).Length)
	}
	return t.Filter(func(r dataset.Record) bool { return r.Length == top }).Records()
}

func averageByPeriodTo(t *dataset.Table) []SizePoint {
	sums := map[int]float64{}
	counts := map[int]int{}
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		sums[r.PeriodTo] += r.Length
		counts[r.PeriodTo]++
	}
	out := make([]SizePoint, 0, len(sums))
	for to, sum := range sums {
		out = append(out, SizePoint{PeriodTo: to, Average: sum / float64(counts[to])})
	}
	// oldest first
	slices.SortFunc(out, func(a, b SizePoint) int { return b.PeriodTo - a.PeriodTo })
	return out
}
