package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
)

func cellsEqual(a, b any) bool {
	switch av := a.(type) {
	case decimal.NullDecimal:
		bv, ok := b.(decimal.NullDecimal)
		if !ok {
			return false
		}
		if av.Valid != bv.Valid {
			return false
		}
		return !av.Valid || av.Decimal.Equal(bv.Decimal)
	case *time.Time:
		bv, ok := b.(*time.Time)
		if !ok {
			return false
		}
		if av == nil || bv == nil {
			return av == nil && bv == nil
		}
		return av.Equal(*bv)
	default:
		return a == b
	}
}

func assertTablesEqual(t *testing.T, got, want *dataset.Table) {
	t.Helper()
	if len(got.Columns) != len(want.Columns) {
		t.Fatalf("column count = %d, want %d", len(got.Columns), len(want.Columns))
	}
	for i := range want.Columns {
		if got.Columns[i] != want.Columns[i] {
			t.Fatalf("column %d = %q, want %q", i, got.Columns[i], want.Columns[i])
		}
		if got.Types[i] != want.Types[i] {
			t.Fatalf("type of %q = %v, want %v", want.Columns[i], got.Types[i], want.Types[i])
		}
	}
	if got.Len() != want.Len() {
		t.Fatalf("row count = %d, want %d", got.Len(), want.Len())
	}
	for r := 0; r < want.Len(); r++ {
		for c, col := range want.Columns {
			if !cellsEqual(got.Rows[r][c], want.Rows[r][c]) {
				t.Errorf("row %d column %q = %#v, want %#v", r, col, got.Rows[r][c], want.Rows[r][c])
			}
		}
	}
}

func TestStabilizeCoercesLooseCells(t *testing.T) {
	in := dataset.New("record_id", "amount", "occurred_at")
	in.Append("T1", "100.50", "2024-05-17T10:00:00Z")
	in.Append("T2", 105.5, time.Date(2024, 5, 17, 18, 0, 0, 0, time.FixedZone("PHT", 8*3600)))
	in.Append("T3", nil, nil)
	in.Append("T4", "not a number", "not a time")

	out := Stabilize(in)

	if out.Len() != 4 {
		t.Fatalf("row count = %d, want 4", out.Len())
	}

	amt := out.Value(0, "amount").(decimal.NullDecimal)
	if !amt.Valid || !amt.Decimal.Equal(decimal.RequireFromString("100.50")) {
		t.Errorf("row 0 amount = %v, want 100.50", amt)
	}
	amt = out.Value(1, "amount").(decimal.NullDecimal)
	if !amt.Valid || !amt.Decimal.Equal(decimal.RequireFromString("105.5")) {
		t.Errorf("row 1 amount = %v, want 105.5", amt)
	}
	for _, row := range []int{2, 3} {
		amt = out.Value(row, "amount").(decimal.NullDecimal)
		if amt.Valid {
			t.Errorf("row %d amount = %v, want null", row, amt)
		}
	}

	ts := out.Value(0, "occurred_at").(*time.Time)
	if ts == nil || !ts.Equal(time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("row 0 occurred_at = %v, want 2024-05-17T10:00:00Z", ts)
	}
	ts = out.Value(1, "occurred_at").(*time.Time)
	if ts == nil || ts.Location() != time.UTC {
		t.Fatalf("row 1 occurred_at = %v, want UTC instant", ts)
	}
	if !ts.Equal(time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("row 1 occurred_at = %v, want 10:00 UTC", ts)
	}
	for _, row := range []int{2, 3} {
		if ts := out.Value(row, "occurred_at").(*time.Time); ts != nil {
			t.Errorf("row %d occurred_at = %v, want nil", row, ts)
		}
	}

	if got := out.Value(3, "record_id"); got != "T4" {
		t.Errorf("record_id = %v, want T4", got)
	}
}

func TestStabilizeTextCellsKeepTheirValue(t *testing.T) {
	in := dataset.New("partner_name", "note")
	in.Append("  Mixed Case GmbH  ", nil)
	in.Append(decimal.NullDecimal{Decimal: decimal.RequireFromString("7.5"), Valid: true},
		time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	out := Stabilize(in)

	// Text stabilization renders a string but never re-normalizes:
	// casing and padding already decided upstream must survive.
	if got := out.Value(0, "partner_name"); got != "  Mixed Case GmbH  " {
		t.Errorf("partner_name = %q, want original spacing kept", got)
	}
	if got := out.Value(0, "note"); got != "" {
		t.Errorf("nil text cell = %q, want empty string", got)
	}
	if got := out.Value(1, "partner_name"); got != "7.5" {
		t.Errorf("decimal text cell = %q, want \"7.5\"", got)
	}
	if got := out.Value(1, "note"); got != "2024-01-02T03:04:05Z" {
		t.Errorf("time text cell = %q, want RFC 3339", got)
	}
}

func TestStabilizeIsIdempotent(t *testing.T) {
	in := dataset.New("record_id", "amount", "created_at")
	in.Append("T1", "19.99", "2024-02-29")
	in.Append("T2", 3, "05/17/2024 06:30:00 PM")
	in.Append("T3", nil, nil)

	once := Stabilize(in)
	twice := Stabilize(once)
	assertTablesEqual(t, twice, once)
}

func TestStabilizeOutcomeIsIdempotent(t *testing.T) {
	out := Reconcile(
		[]domain.CanonicalTransaction{
			sourceTx("T1", "A1", "100.00", "success", "PHP"),
			sourceTx("T2", "A1", "20.00", "pending", "PHP"),
		},
		[]domain.CanonicalTransaction{
			counterpartTx("P1", "T1", "A1", "105.00", "success", "PHP"),
			counterpartTx("P2", "T9", "A9", "1.00", "failed", "PHP"),
		},
	)

	once := StabilizeOutcome(out)
	twice := StabilizeOutcome(once)

	assertTablesEqual(t, twice.Matched, once.Matched)
	assertTablesEqual(t, twice.Discrepant, once.Discrepant)
	assertTablesEqual(t, twice.SourceOnly, once.SourceOnly)
	assertTablesEqual(t, twice.CounterpartOnly, once.CounterpartOnly)

	// The engine already emits canonical cells, so stabilizing its
	// output must not change anything either.
	assertTablesEqual(t, once.Matched, out.Matched)
	assertTablesEqual(t, once.SourceOnly, out.SourceOnly)
}
