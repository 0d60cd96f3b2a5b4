package insights

import (
	"strings"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

// GroupStat describes one major group.
type GroupStat struct {
	Group   string `json:"group"`
	Species int    `json:"species"`
	// From is the oldest period_from in the group, To the youngest period_to.
	From     int     `json:"from"`
	To       int     `json:"to"`
	Measured int     `json:"measured"`
	Largest  float64 `json:"largest"`
	Average  float64 `json:"average"`
	Smallest float64 `json:"smallest"`
}

// GroupDetail is a single group with its members and where they were found.
type GroupDetail struct {
	GroupStat
	Locations []Count          `json:"locations"`
	Members   []dataset.Record `json:"members"`
}

// Groups returns one entry per major group, largest groups first. Size
// statistics only consider records with a non-zero length.
func Groups(t *dataset.Table) []GroupStat {
	counts := countBy(t, func(r dataset.Record) string { return r.MajorGroup })
	out := make([]GroupStat, 0, len(counts))
	for _, c := range counts {
		out = append(out, groupStat(c.Key, t.Filter(func(r dataset.Record) bool { return r.MajorGroup == c.Key })))
	}
	return out
}

// Group looks up a major group by name, ignoring case.
func Group(t *dataset.Table, name string) (GroupDetail, bool) {
	var group string
	for i := 0; i < t.Len(); i++ {
		if strings.EqualFold(t.At(i).MajorGroup, name) {
			group = t.At(i).MajorGroup
			break
		}
	}
	if group == "" {
		return GroupDetail{}, false
	}
	members := t.Filter(func(r dataset.Record) bool { return r.MajorGroup == group })
	return GroupDetail{
		GroupStat: groupStat(group, members),
		Locations: countBy(members, func(r dataset.Record) string { return r.LivedIn }),
		Members:   members.Records(),
	}, true
}

func groupStat(name string, members *dataset.Table) GroupStat {
	s := GroupStat{Group: name, Species: members.Len()}
	var total float64
	for i := 0; i < members.Len(); i++ {
		r := members.At(i)
		if i == 0 {
			s.From, s.To = r.PeriodFrom, r.PeriodTo
		}
		s.From = max(s.From, r.PeriodFrom)
		s.To = min(s.To, r.PeriodTo)
		if r.Length == 0 {
			continue
		}
		if s.Measured == 0 {
			s.Largest, s.Smallest = r.Length, r.Length
		}
		s.Measured++
		total += r.Length
		s.Largest = max(s.Largest, r.Length)
		s.Smallest = min(s.Smallest, r.Length)
	}
	if s.Measured > 0 {
		s.Average = total / float64(s.Measured)
	}
	return s
}
