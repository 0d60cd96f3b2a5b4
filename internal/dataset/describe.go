package dataset

import (
	"fmt"
	"strings"
)

// ColumnInfo describes one column of a table: its name, how many cells hold a
// value and the storage type.
type ColumnInfo struct {
	Name    string `json:"name"`
	NonNull int    `json:"non_null"`
	Dtype   string `json:"dtype"`
}

// Shape is the before/after summary of a table.
type Shape struct {
	Rows    int          `json:"rows"`
	Columns []ColumnInfo `json:"columns"`
}

// DescribeRaw summarizes a raw table. Every raw column is text.
func DescribeRaw(t *RawTable) Shape {
	s := Shape{Rows: t.Len()}
	for _, h := range t.Header {
		s.Columns = append(s.Columns, ColumnInfo{Name: h, NonNull: t.NonNull(h), Dtype: "object"})
	}
	return s
}

// DescribeTable summarizes a normalized table. Every column is non-null.
func DescribeTable(t *Table) Shape {
	s := Shape{Rows: t.Len()}
	for _, c := range Columns {
		s.Columns = append(s.Columns, ColumnInfo{Name: c, NonNull: t.Len(), Dtype: columnDtype(c)})
	}
	return s
}

func columnDtype(c string) string {
	switch c {
	case ColLength:
		return "float64"
	case ColPeriodFrom, ColPeriodTo, ColDiscovered:
		return "int"
	default:
		return "object"
	}
}

// String renders the shape as a fixed-width column listing.
func (s Shape) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d entries\n", s.Rows)
	fmt.Fprintf(&b, "Data columns (total %d columns):\n", len(s.Columns))
	fmt.Fprintf(&b, " %-3s %-12s %-15s %s\n", "#", "Column", "Non-Null Count", "Dtype")
	for i, c := range s.Columns {
		fmt.Fprintf(&b, " %-3d %-12s %-15s %s\n", i, c.Name, fmt.Sprintf("%d non-null", c.NonNull), c.Dtype)
	}
	return b.String()
}
