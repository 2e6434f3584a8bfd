package gcs

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
)

func TestEncodeCSVRendersTypedCells(t *testing.T) {
	ts := time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC)
	tab := dataset.NewTyped(
		[]string{"record_id", "amount", "occurred_at"},
		[]dataset.ColumnType{dataset.Text, dataset.Numeric, dataset.Timestamp},
	)
	tab.Append("T1", decimal.NewNullDecimal(decimal.RequireFromString("100.25")), &ts)
	tab.Append("T2", decimal.NullDecimal{}, nil)

	data, err := EncodeCSV(tab)
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	want := "record_id,amount,occurred_at\n" +
		"T1,100.25,2024-01-31T09:30:00Z\n" +
		"T2,,\n"
	if string(data) != want {
		t.Errorf("EncodeCSV = %q, want %q", data, want)
	}
}

func TestDecodeCSVIsAllText(t *testing.T) {
	data := []byte("record_id,amount\nT1,100.50\nT2,\n")

	tab, err := DecodeCSV(data)
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if len(tab.Columns) != 2 || tab.Columns[0] != "record_id" {
		t.Fatalf("columns = %v", tab.Columns)
	}
	for i, typ := range tab.Types {
		if typ != dataset.Text {
			t.Errorf("column %d type = %v, want Text", i, typ)
		}
	}
	if tab.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tab.Len())
	}
	if got := tab.Value(0, "amount"); got != "100.50" {
		t.Errorf("amount = %v (%T), want string 100.50", got, got)
	}
	if got := tab.Value(1, "amount"); got != "" {
		t.Errorf("empty cell = %v, want empty string", got)
	}
}

func TestDecodeCSVEmptyObject(t *testing.T) {
	tab, err := DecodeCSV(nil)
	if err != nil {
		t.Fatalf("DecodeCSV(nil): %v", err)
	}
	if tab.Len() != 0 {
		t.Errorf("rows = %d, want 0", tab.Len())
	}
}

func TestDecodeCSVRejectsRaggedRows(t *testing.T) {
	if _, err := DecodeCSV([]byte("a,b\nonly-one\n")); err == nil {
		t.Error("ragged row should fail to decode")
	}
}

func TestCSVRoundTripPreservesCellText(t *testing.T) {
	tab := dataset.NewTyped(
		[]string{"record_id", "partner_name", "amount"},
		dataset.TextTypes(3),
	)
	tab.Append("T1", "Comma, Inc.", "100.50")
	tab.Append("T2", "line\nbreak", "-0.01")
	tab.Append("T3", `quote "Q"`, "")

	data, err := EncodeCSV(tab)
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	back, err := DecodeCSV(data)
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if back.Len() != tab.Len() {
		t.Fatalf("rows = %d, want %d", back.Len(), tab.Len())
	}
	for i := range tab.Rows {
		for _, col := range tab.Columns {
			if got, want := back.Value(i, col), tab.Value(i, col); got != want {
				t.Errorf("row %d %s = %q, want %q", i, col, got, want)
			}
		}
	}
}

func TestObjectPath(t *testing.T) {
	period, err := domain.ParsePeriod("20240131")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		want string
	}{
		{"source_transactions", "raw/20240131/source_transactions_20240131.csv"},
		{"accounts", "raw/20240131/accounts_20240131.csv"},
		{"cleaned_source_transactions", "cleaned/20240131/cleaned_source_transactions_20240131.csv"},
		{"reconciled_transactions", "reconciled/20240131/reconciled_transactions_20240131.csv"},
	}
	for _, tt := range tests {
		if got := ObjectPath(tt.name, period); got != tt.want {
			t.Errorf("ObjectPath(%s) = %s, want %s", tt.name, got, tt.want)
		}
	}
}
