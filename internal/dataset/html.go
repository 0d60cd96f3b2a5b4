package dataset

import (
	"fmt"
	"html/template"
	"io"
)

var htmlTable = template.Must(template.New("table").Parse(`<table border="1" class="dataframe">
  <thead>
    <tr style="text-align: right;">
      <th></th>
{{- range .Columns}}
      <th>{{.}}</th>
{{- end}}
    </tr>
  </thead>
  <tbody>
{{- range .Rows}}
    <tr>
      <th>{{.Index}}</th>
{{- range .Cells}}
      <td>{{.}}</td>
{{- end}}
    </tr>
{{- end}}
  </tbody>
</table>
`))

type htmlRow struct {
	Index int
	Cells []string
}

// WriteHTML renders the normalized table as an HTML table with the same
// leading index column as the CSV export.
func WriteHTML(w io.Writer, t *Table) error {
	records := t.Records()
	rows := make([]htmlRow, len(records))
	for i, r := range records {
		rows[i] = htmlRow{Index: r.Index, Cells: r.Values()}
	}
	data := struct {
		Columns []string
		Rows    []htmlRow
	}{Columns: Columns, Rows: rows}
	if err := htmlTable.Execute(w, data); err != nil {
		return fmt.Errorf("render html table: %w", err)
	}
	return nil
}
