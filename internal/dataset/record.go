// Package dataset defines the dinosaur record model, the raw scraped table and
// the ordered normalization pipeline that turns one into the other.
package dataset

import (
	"strconv"
	"strings"
)

// Record is one normalized dinosaur entry.
type Record struct {
	// Index is the row index of the source table. It is not one of the
	// ordered columns; exports write it as the leading unnamed column.
	Index      int     `json:"index"`
	Name       string  `json:"name"`
	Species    string  `json:"species"`
	Type       string  `json:"type"`
	Length     float64 `json:"length"`
	Diet       string  `json:"diet"`
	Period     string  `json:"period"`
	PeriodFrom int     `json:"period_from"`
	PeriodTo   int     `json:"period_to"`
	LivedIn    string  `json:"lived_in"`
	Discovered int     `json:"discovered"`
	MajorGroup string  `json:"major_group"`
	Taxonomy   string  `json:"taxonomy"`
	NamedBy    string  `json:"named_by"`
	Link       string  `json:"link"`
	Image      string  `json:"image"`
}

// Column names of the normalized table.
const (
	ColName       = "name"
	ColSpecies    = "species"
	ColType       = "type"
	ColLength     = "length"
	ColDiet       = "diet"
	ColPeriod     = "period"
	ColPeriodFrom = "period_from"
	ColPeriodTo   = "period_to"
	ColLivedIn    = "lived_in"
	ColDiscovered = "discovered"
	ColMajorGroup = "major_group"
	ColTaxonomy   = "taxonomy"
	ColNamedBy    = "named_by"
	ColLink       = "link"
	ColImage      = "image"
)

// Columns is the fixed, ordered schema handed to the presentation layer.
var Columns = []string{
	ColName,
	ColSpecies,
	ColType,
	ColLength,
	ColDiet,
	ColPeriod,
	ColPeriodFrom,
	ColPeriodTo,
	ColLivedIn,
	ColDiscovered,
	ColMajorGroup,
	ColTaxonomy,
	ColNamedBy,
	ColLink,
	ColImage,
}

// Values returns the record's cells in Columns order, formatted for flat files.
func (r Record) Values() []string {
	return []string{
		r.Name,
		r.Species,
		r.Type,
		FormatLength(r.Length),
		r.Diet,
		r.Period,
		strconv.Itoa(r.PeriodFrom),
		strconv.Itoa(r.PeriodTo),
		r.LivedIn,
		strconv.Itoa(r.Discovered),
		r.MajorGroup,
		r.Taxonomy,
		r.NamedBy,
		r.Link,
		r.Image,
	}
}

// FormatLength renders a length the way float columns are written in the
// source CSVs: always with a fractional part ("8.0", "12.5").
func FormatLength(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

// Table is the normalized, immutable dataset. It is built once by the
// pipeline and only read afterwards.
type Table struct {
	records []Record
}

// NewTable copies records into a new Table.
func NewTable(records []Record) *Table {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Table{records: cp}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns the i-th record.
func (t *Table) At(i int) Record {
	return t.records[i]
}

// Records returns a copy of all records in table order.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	cp := make([]Record, len(t.records))
	copy(cp, t.records)
	return cp
}

// Filter returns a table of the records for which keep reports true, in
// table order.
func (t *Table) Filter(keep func(Record) bool) *Table {
	out := &Table{records: []Record{}}
	if t == nil {
		return out
	}
	for _, r := range t.records {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}

// Find returns the first record with the given name.
func (t *Table) Find(name string) (Record, bool) {
	if t == nil {
		return Record{}, false
	}
	for _, r := range t.records {
		if r.Name == name {
			return r, true
		}
	}
	return Record{}, false
}
