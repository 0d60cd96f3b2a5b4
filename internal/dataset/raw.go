package dataset

import (
	"errors"
	"fmt"
)

// Raw column names of the scraped source table.
const (
	RawLink     = "link"
	RawName     = "name"
	RawDiet     = "diet"
	RawPeriod   = "period"
	RawLivedIn  = "lived_in"
	RawType     = "type"
	RawLength   = "length"
	RawTaxonomy = "taxonomy"
	RawNamedBy  = "named_by"
	RawSpecies  = "species"
	RawImage    = "image"
)

// RequiredRawColumns must be present in every source table. The image column
// is added by enrichment and is required only by the normalization pipeline.
var RequiredRawColumns = []string{
	RawLink,
	RawName,
	RawDiet,
	RawPeriod,
	RawLivedIn,
	RawType,
	RawLength,
	RawTaxonomy,
	RawNamedBy,
	RawSpecies,
}

// ErrMissingColumn is returned when a required column is absent from a table.
var ErrMissingColumn = errors.New("missing column")

// naTokens mirrors the cell values the source tooling reads as missing.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a raw cell counts as a missing value.
func IsMissing(v string) bool {
	_, ok := naTokens[v]
	return ok
}

// RawRow is one row of the raw table. Values align with RawTable.Header.
type RawRow struct {
	// Index is the source row label ("" when the file carried no index column).
	Index  string
	Values []string
}

// RawTable is the scraped source table: string cells, any of which may be
// missing.
type RawTable struct {
	Header []string
	Rows   []RawRow

	pos map[string]int
}

// NewRawTable builds a RawTable from a header and rows. Rows shorter than the
// header are padded with missing cells.
func NewRawTable(header []string, rows []RawRow) *RawTable {
	t := &RawTable{
		Header: append([]string(nil), header...),
		Rows:   make([]RawRow, len(rows)),
	}
	for i, r := range rows {
		vals := make([]string, len(header))
		copy(vals, r.Values)
		t.Rows[i] = RawRow{Index: r.Index, Values: vals}
	}
	t.reindex()
	return t
}

func (t *RawTable) reindex() {
	t.pos = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, dup := t.pos[h]; !dup {
			t.pos[h] = i
		}
	}
}

// Len returns the number of rows.
func (t *RawTable) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the header contains name.
func (t *RawTable) HasColumn(name string) bool {
	_, ok := t.pos[name]
	return ok
}

// Require returns ErrMissingColumn for the first absent column.
func (t *RawTable) Require(columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
	}
	return nil
}

// Get returns the cell at row i, column name, and whether it holds a value.
func (t *RawTable) Get(i int, name string) (string, bool) {
	p, ok := t.pos[name]
	if !ok {
		return "", false
	}
	v := t.Rows[i].Values[p]
	if IsMissing(v) {
		return "", false
	}
	return v, true
}

// Column returns every cell of a column, missing cells as "".
func (t *RawTable) Column(name string) ([]string, error) {
	if err := t.Require(name); err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i], _ = t.Get(i, name)
	}
	return out, nil
}

// WithColumn returns a copy of the table with the column set to values. An
// existing column of that name is replaced in place; otherwise it is appended.
func (t *RawTable) WithColumn(name string, values []string) (*RawTable, error) {
	if len(values) != len(t.Rows) {
		return nil, fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	header := append([]string(nil), t.Header...)
	p, exists := t.pos[name]
	if !exists {
		header = append(header, name)
		p = len(header) - 1
	}
	rows := make([]RawRow, len(t.Rows))
	for i, r := range t.Rows {
		vals := make([]string, len(header))
		copy(vals, r.Values)
		vals[p] = values[i]
		rows[i] = RawRow{Index: r.Index, Values: vals}
	}
	out := &RawTable{Header: header, Rows: rows}
	out.reindex()
	return out, nil
}

// NonNull counts the present cells of a column.
func (t *RawTable) NonNull(name string) int {
	n := 0
	for i := range t.Rows {
		if _, ok := t.Get(i, name); ok {
			n++
		}
	}
	return n
}
