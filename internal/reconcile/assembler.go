package reconcile

import (
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/normalize"
)

// Stabilize returns a copy of the table in which every cell carries its
// column's stable type: numeric columns hold decimal.NullDecimal,
// timestamp columns hold *time.Time in UTC, everything else holds
// string. Column types are re-derived from the column names, so a table
// assembled from any loader converges to the same shape the engine
// produces. Stabilize is idempotent: applied to its own output it
// returns an equal table.
func Stabilize(t *dataset.Table) *dataset.Table {
	types := dataset.ClassifyAll(t.Columns)
	out := dataset.NewTyped(t.Columns, types)
	for _, row := range t.Rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = stabilizeCell(types[i], cell)
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// StabilizeOutcome stabilizes all four partitions.
func StabilizeOutcome(o *Outcome) *Outcome {
	return &Outcome{
		Matched:         Stabilize(o.Matched),
		Discrepant:      Stabilize(o.Discrepant),
		SourceOnly:      Stabilize(o.SourceOnly),
		CounterpartOnly: Stabilize(o.CounterpartOnly),
	}
}

// stabilizeCell coerces one cell to its column's stable type. The text
// branch renders without re-normalizing: canonicalization already
// trimmed and case-folded, and doing it twice could change legitimate
// data.
func stabilizeCell(typ dataset.ColumnType, cell any) any {
	switch typ {
	case dataset.Numeric:
		return normalize.Amount(cell)
	case dataset.Timestamp:
		return normalize.Timestamp(cell)
	default:
		return dataset.RenderText(cell)
	}
}
