package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const utf8BOM = "\uFEFF"

// ReadRawCSV reads a scraped source table. A leading unnamed header cell marks
// an index column; its values become RawRow.Index. Required columns are
// checked; the image column is optional here.
func ReadRawCSV(r io.Reader) (*RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	hasIndex := len(header) > 0 && isIndexHeader(header[0])
	if hasIndex {
		header = header[1:]
	}

	var rows []RawRow
	line := 1
	for {
		rec, err := cr.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		row := RawRow{}
		if hasIndex {
			row.Index = rec[0]
			rec = rec[1:]
		}
		row.Values = rec
		rows = append(rows, row)
	}

	t := NewRawTable(header, rows)
	if err := t.Require(RequiredRawColumns...); err != nil {
		return nil, fmt.Errorf("read raw csv: %w", err)
	}
	return t, nil
}

func isIndexHeader(h string) bool {
	return h == "" || strings.HasPrefix(h, "Unnamed: ")
}

// WriteRawCSV writes a raw table with a leading unnamed index column. Rows
// without an index are labelled by position.
func WriteRawCSV(w io.Writer, t *RawTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, t.Header...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		idx := row.Index
		if idx == "" {
			idx = strconv.Itoa(i)
		}
		if err := cw.Write(append([]string{idx}, row.Values...)); err != nil {
			return fmt.Errorf("write row %s: %w", idx, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteCSV writes the normalized table: a leading unnamed index column
// followed by Columns in order.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, Columns...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range t.Records() {
		if err := cw.Write(append([]string{strconv.Itoa(r.Index)}, r.Values()...)); err != nil {
			return fmt.Errorf("write record %d: %w", r.Index, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
