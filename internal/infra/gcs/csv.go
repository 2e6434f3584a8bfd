package gcs

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
)

// EncodeCSV renders a table as CSV: one header row of column names,
// then one record per row. Cells are rendered with dataset.RenderText,
// so decimals keep their exact value, timestamps come out RFC 3339 UTC
// and nulls become empty cells. The encoding loses the column types on
// purpose; loaders re-derive them, which keeps a CSV written by any
// tool loadable.
func EncodeCSV(tab *dataset.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(tab.Columns); err != nil {
		return nil, fmt.Errorf("EncodeCSV: writing header: %w", err)
	}
	record := make([]string, len(tab.Columns))
	for i, row := range tab.Rows {
		for c, cell := range row {
			record[c] = dataset.RenderText(cell)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("EncodeCSV: writing row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("EncodeCSV: flush: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses CSV bytes into an all-text table: the first record
// names the columns, every following record is one row. Raw feeds must
// survive the round trip byte for byte, so no cell is coerced here;
// canonicalization and stabilization own the typing. An empty object
// decodes as an empty table.
func DecodeCSV(data []byte) (*dataset.Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("DecodeCSV: %w", err)
	}
	if len(records) == 0 {
		return dataset.NewTyped(nil, nil), nil
	}

	columns := records[0]
	tab := dataset.NewTyped(columns, dataset.TextTypes(len(columns)))
	for _, record := range records[1:] {
		cells := make([]any, len(record))
		for c, v := range record {
			cells[c] = v
		}
		tab.Rows = append(tab.Rows, cells)
	}
	return tab, nil
}
