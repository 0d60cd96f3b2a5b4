package dataset

import (
	"bytes"
	"fmt"
)

// Format is an export encoding of the normalized table.
type Format string

// Export formats.
const (
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// Formats lists every export format.
var Formats = []Format{FormatCSV, FormatHTML}

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// FileName is the download name of the export.
func (f Format) FileName() string {
	return "dino_df." + string(f)
}

// ContentType is the media type of the export.
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// Render encodes the table in format f.
func Render(t *Table, f Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(&buf, t)
	case FormatHTML:
		err = WriteHTML(&buf, t)
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
