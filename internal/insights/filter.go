package insights

import (
	"strings"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

// Query narrows the table. Zero fields match everything; text matching
// ignores case.
type Query struct {
	// Name matches as a substring.
	Name  string
	Group string
	// Period matches as a substring, e.g. "Jurassic".
	Period    string
	LivedIn   string
	MinLength *float64
	MaxLength *float64
}

// Match reports whether r satisfies q.
func (q Query) Match(r dataset.Record) bool {
	if q.Name != "" && !containsFold(r.Name, q.Name) {
		return false
	}
	if q.Group != "" && !strings.EqualFold(r.MajorGroup, q.Group) {
		return false
	}
	if q.Period != "" && !containsFold(r.Period, q.Period) {
		return false
	}
	if q.LivedIn != "" && !strings.EqualFold(r.LivedIn, q.LivedIn) {
		return false
	}
	if q.MinLength != nil && r.Length < *q.MinLength {
		return false
	}
	if q.MaxLength != nil && r.Length > *q.MaxLength {
		return false
	}
	return true
}

// Filter returns the records matching q in table order.
func Filter(t *dataset.Table, q Query) []dataset.Record {
	return t.Filter(q.Match).Records()
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
