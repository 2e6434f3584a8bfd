// Package dataset provides the ordered tabular carrier passed between
// the reconciliation core and its loaders and sinks. A Table preserves
// row order and knows the stable type of each column, which is all a
// schema-defined sink needs to persist it without special-casing.
package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ColumnType is the stable persisted type of one column.
type ColumnType int

const (
	Text      ColumnType = iota // string cells
	Numeric                     // decimal.NullDecimal cells
	Timestamp                   // *time.Time cells, always UTC
)

// String returns the lower-case name of the column type.
func (c ColumnType) String() string {
	switch c {
	case Numeric:
		return "numeric"
	case Timestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// Classify derives a column's stable type from its name: amount columns
// are numeric, *_at columns are timestamps, everything else is text.
// The rule covers both plain and origin-prefixed column names.
func Classify(column string) ColumnType {
	switch {
	case strings.Contains(column, "amount"):
		return Numeric
	case strings.HasSuffix(column, "_at"):
		return Timestamp
	default:
		return Text
	}
}

// ClassifyAll applies Classify to every column name.
func ClassifyAll(columns []string) []ColumnType {
	types := make([]ColumnType, len(columns))
	for i, c := range columns {
		types[i] = Classify(c)
	}
	return types
}

// TextTypes returns n Text column types; raw feeds persist every cell
// verbatim as text so that messy input survives the storage round trip.
func TextTypes(n int) []ColumnType {
	return make([]ColumnType, n)
}

// Table is an ordered set of rows over named, typed columns.
type Table struct {
	Columns []string
	Types   []ColumnType
	Rows    [][]any

	index map[string]int
}

// New creates an empty table whose column types come from Classify.
func New(columns ...string) *Table {
	return NewTyped(columns, ClassifyAll(columns))
}

// NewTyped creates an empty table with explicit column types. It panics
// if the types do not align with the columns; that is a programming
// error, not input data.
func NewTyped(columns []string, types []ColumnType) *Table {
	if len(columns) != len(types) {
		panic(fmt.Sprintf("dataset: %d columns with %d types", len(columns), len(types)))
	}
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return &Table{
		Columns: append([]string(nil), columns...),
		Types:   append([]ColumnType(nil), types...),
		index:   index,
	}
}

// Append adds one row. It panics if the cell count does not match the
// column count.
func (t *Table) Append(cells ...any) {
	if len(cells) != len(t.Columns) {
		panic(fmt.Sprintf("dataset: appending %d cells to %d columns", len(cells), len(t.Columns)))
	}
	t.Rows = append(t.Rows, cells)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of the named column, or -1 if absent.
func (t *Table) Index(column string) int {
	if t.index == nil {
		t.index = make(map[string]int, len(t.Columns))
		for i, c := range t.Columns {
			t.index[c] = i
		}
	}
	if i, ok := t.index[column]; ok {
		return i
	}
	return -1
}

// Value returns the cell at (row, column), or nil if the column is
// absent.
func (t *Table) Value(row int, column string) any {
	i := t.Index(column)
	if i < 0 {
		return nil
	}
	return t.Rows[row][i]
}

// Records converts the rows into ordered string-keyed maps for
// consumers that access cells by column name.
func (t *Table) Records() []map[string]any {
	records := make([]map[string]any, len(t.Rows))
	for r, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for c, col := range t.Columns {
			rec[col] = row[c]
		}
		records[r] = rec
	}
	return records
}

// RenderText renders one cell as text without normalizing it: strings
// keep their exact bytes, decimals their exact value, timestamps come
// out RFC 3339 in UTC, and nulls become the empty string. Every text
// serialization of a table (CSV cells, STRING columns) goes through
// this one function so the backends agree.
func RenderText(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case decimal.NullDecimal:
		if !v.Valid {
			return ""
		}
		return v.Decimal.String()
	case decimal.Decimal:
		return v.String()
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.UTC().Format(time.RFC3339)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
