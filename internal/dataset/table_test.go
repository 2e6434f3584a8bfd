package dataset

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		column string
		want   ColumnType
	}{
		{"amount", Numeric},
		{"source_amount", Numeric},
		{"counterpart_amount", Numeric},
		{"occurred_at", Timestamp},
		{"source_created_at", Timestamp},
		{"updated_at", Timestamp},
		{"record_id", Text},
		{"status", Text},
		{"currency_code", Text},
		{"partner_name", Text},
	}
	for _, tt := range tests {
		if got := Classify(tt.column); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.column, got, tt.want)
		}
	}
}

func TestTablePreservesRowOrder(t *testing.T) {
	tab := New("record_id", "amount")
	for _, id := range []string{"T3", "T1", "T2"} {
		tab.Append(id, nil)
	}

	if tab.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tab.Len())
	}
	for i, want := range []string{"T3", "T1", "T2"} {
		if got := tab.Value(i, "record_id"); got != want {
			t.Errorf("row %d = %v, want %v", i, got, want)
		}
	}
}

func TestTableIndexAndValue(t *testing.T) {
	tab := New("record_id", "status")
	tab.Append("T1", "success")

	if got := tab.Index("status"); got != 1 {
		t.Errorf("Index(status) = %d, want 1", got)
	}
	if got := tab.Index("nope"); got != -1 {
		t.Errorf("Index(nope) = %d, want -1", got)
	}
	if got := tab.Value(0, "nope"); got != nil {
		t.Errorf("Value of absent column = %v, want nil", got)
	}
}

func TestTableRecords(t *testing.T) {
	tab := New("record_id", "amount")
	tab.Append("T1", "100.00")
	tab.Append("T2", nil)

	recs := tab.Records()
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if recs[0]["record_id"] != "T1" || recs[0]["amount"] != "100.00" {
		t.Errorf("record 0 = %v", recs[0])
	}
	if recs[1]["amount"] != nil {
		t.Errorf("record 1 amount = %v, want nil", recs[1]["amount"])
	}
}

func TestNewTypedPanicsOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewTyped with mismatched lengths should panic")
		}
	}()
	NewTyped([]string{"a", "b"}, []ColumnType{Text})
}

func TestAppendPanicsOnWidthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Append with wrong cell count should panic")
		}
	}()
	New("a", "b").Append("only one")
}
