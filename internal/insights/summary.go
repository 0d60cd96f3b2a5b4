// Package insights answers read-only questions about a normalized dinosaur
// table: how long dinosaurs lived, which groups dominate, how big they got
// and who named them. Every function is pure and safe for concurrent use on
// a shared table.
package insights

import (
	"slices"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

// KPExtinctionMYA is the age, in millions of years, used as the K-P
// extinction boundary. Species whose fossils end later than this are counted
// as survivors of the event window.
const KPExtinctionMYA = 67

// Overview holds the headline numbers of the table.
type Overview struct {
	Species      int      `json:"species"`
	MillionYears int      `json:"million_years"`
	MajorGroups  int      `json:"major_groups"`
	Countries    []string `json:"countries"`
}

// Summary computes the headline numbers. Countries are listed in the order
// they first appear.
func Summary(t *dataset.Table) Overview {
	out := Overview{Species: t.Len(), Countries: []string{}}
	if t.Len() == 0 {
		return out
	}
	groups := map[string]struct{}{}
	countries := map[string]struct{}{}
	maxFrom, minTo := t.At(0).PeriodFrom, t.At(0).PeriodTo
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		maxFrom = max(maxFrom, r.PeriodFrom)
		minTo = min(minTo, r.PeriodTo)
		groups[r.MajorGroup] = struct{}{}
		if _, seen := countries[r.LivedIn]; !seen {
			countries[r.LivedIn] = struct{}{}
			out.Countries = append(out.Countries, r.LivedIn)
		}
	}
	out.MillionYears = maxFrom - minTo
	out.MajorGroups = len(groups)
	return out
}

// TimelineView lists the oldest fossils and the species still present near
// the K-P boundary.
type TimelineView struct {
	MillionYears int              `json:"million_years"`
	OldestFrom   int              `json:"oldest_from"`
	Oldest       []dataset.Record `json:"oldest"`
	Survivors    []dataset.Record `json:"kp_survivors"`
}

// Timeline returns every record sharing the maximum period_from, and every
// record whose period_to is below KPExtinctionMYA.
func Timeline(t *dataset.Table) TimelineView {
	out := TimelineView{Oldest: []dataset.Record{}, Survivors: []dataset.Record{}}
	if t.Len() == 0 {
		return out
	}
	out.MillionYears = Summary(t).MillionYears
	for i := 0; i < t.Len(); i++ {
		out.OldestFrom = max(out.OldestFrom, t.At(i).PeriodFrom)
	}
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		if r.PeriodFrom == out.OldestFrom {
			out.Oldest = append(out.Oldest, r)
		}
		if r.PeriodTo < KPExtinctionMYA {
			out.Survivors = append(out.Survivors, r)
		}
	}
	return out
}

// Count is a label with the number of species carrying it.
type Count struct {
	Key     string `json:"key"`
	Species int    `json:"species"`
}

// countBy tallies keys, ordering by descending count then ascending key.
func countBy(t *dataset.Table, key func(dataset.Record) string) []Count {
	idx := map[string]int{}
	out := []Count{}
	for i := 0; i < t.Len(); i++ {
		k := key(t.At(i))
		if j, ok := idx[k]; ok {
			out[j].Species++
			continue
		}
		idx[k] = len(out)
		out = append(out, Count{Key: k, Species: 1})
	}
	slices.SortStableFunc(out, func(a, b Count) int {
		if a.Species != b.Species {
			return b.Species - a.Species
		}
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})
	return out
}
