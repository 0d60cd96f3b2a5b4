package insights

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

// ColumnStats are the descriptive statistics of one numeric column.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	// Std is the sample standard deviation; 0 with fewer than two values.
	Std float64 `json:"std"`
	Min float64 `json:"min"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	Max float64 `json:"max"`
}

// Description holds the stats of every numeric column in table order.
type Description struct {
	Columns []ColumnStats `json:"columns"`
}

var numericColumns = []struct {
	name string
	get  func(dataset.Record) float64
}{
	{dataset.ColLength, func(r dataset.Record) float64 { return r.Length }},
	{dataset.ColPeriodFrom, func(r dataset.Record) float64 { return float64(r.PeriodFrom) }},
	{dataset.ColPeriodTo, func(r dataset.Record) float64 { return float64(r.PeriodTo) }},
	{dataset.ColDiscovered, func(r dataset.Record) float64 { return float64(r.Discovered) }},
}

// Describe computes count, mean, std, min, quartiles and max for the numeric
// columns. Quartiles interpolate linearly between closest ranks.
func Describe(t *dataset.Table) Description {
	out := Description{Columns: make([]ColumnStats, 0, len(numericColumns))}
	for _, col := range numericColumns {
		vals := make([]float64, t.Len())
		for i := range vals {
			vals[i] = col.get(t.At(i))
		}
		out.Columns = append(out.Columns, stats(col.name, vals))
	}
	return out
}

func stats(name string, vals []float64) ColumnStats {
	s := ColumnStats{Column: name, Count: len(vals)}
	if len(vals) == 0 {
		return s
	}
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	s.Mean = sum / float64(len(sorted))
	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			sq += (v - s.Mean) * (v - s.Mean)
		}
		s.Std = math.Sqrt(sq / float64(len(sorted)-1))
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P25 = quantile(sorted, 0.25)
	s.P50 = quantile(sorted, 0.5)
	s.P75 = quantile(sorted, 0.75)
	return s
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// String renders the description in the column-per-statistic layout of a
// dataframe describe.
func (d Description) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s", "")
	for _, c := range d.Columns {
		fmt.Fprintf(&b, " %12s", c.Column)
	}
	b.WriteByte('\n')
	rows := []struct {
		label string
		get   func(ColumnStats) float64
	}{
		{"count", func(c ColumnStats) float64 { return float64(c.Count) }},
		{"mean", func(c ColumnStats) float64 { return c.Mean }},
		{"std", func(c ColumnStats) float64 { return c.Std }},
		{"min", func(c ColumnStats) float64 { return c.Min }},
		{"25%", func(c ColumnStats) float64 { return c.P25 }},
		{"50%", func(c ColumnStats) float64 { return c.P50 }},
		{"75%", func(c ColumnStats) float64 { return c.P75 }},
		{"max", func(c ColumnStats) float64 { return c.Max }},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%-6s", row.label)
		for _, c := range d.Columns {
			fmt.Fprintf(&b, " %12.6f", row.get(c))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
