package bigquery

import (
	"fmt"
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/shopspring/decimal"
	"google.golang.org/api/googleapi"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
)

func typedTable() *dataset.Table {
	return dataset.NewTyped(
		[]string{"record_id", "amount", "occurred_at"},
		[]dataset.ColumnType{dataset.Text, dataset.Numeric, dataset.Timestamp},
	)
}

func TestConfigQualified(t *testing.T) {
	cfg := Config{ProjectID: "proj", DatasetID: "reconciliation"}
	want := "`proj.reconciliation.cleaned_accounts_20240131`"
	if got := cfg.qualified("cleaned_accounts_20240131"); got != want {
		t.Errorf("qualified = %s, want %s", got, want)
	}
}

func TestCreateTableDDL(t *testing.T) {
	got := createTableDDL("`proj.ds.t_20240131`", typedTable())
	want := "CREATE OR REPLACE TABLE `proj.ds.t_20240131` (\n" +
		"  record_id STRING,\n" +
		"  amount NUMERIC,\n" +
		"  occurred_at TIMESTAMP,\n" +
		"  row_seq INT64 NOT NULL\n" +
		")"
	if got != want {
		t.Errorf("createTableDDL =\n%s\nwant\n%s", got, want)
	}
}

func TestStorageSchemaAppendsOrderColumn(t *testing.T) {
	schema := storageSchema(typedTable())
	if len(schema) != 4 {
		t.Fatalf("schema has %d fields, want 4", len(schema))
	}
	last := schema[3]
	if last.Name != orderColumn || last.Type != bigquery.IntegerFieldType || !last.Required {
		t.Errorf("last field = %+v, want required %s INT64", last, orderColumn)
	}
	if schema[0].Type != bigquery.StringFieldType || schema[1].Type != bigquery.NumericFieldType || schema[2].Type != bigquery.TimestampFieldType {
		t.Errorf("field types = %v %v %v", schema[0].Type, schema[1].Type, schema[2].Type)
	}
}

func TestLogicalColumnsDropsOrderColumn(t *testing.T) {
	schema := bigquery.Schema{
		{Name: "record_id", Type: bigquery.StringFieldType},
		{Name: "amount", Type: bigquery.NumericFieldType},
		{Name: "occurred_at", Type: bigquery.TimestampFieldType},
		{Name: orderColumn, Type: bigquery.IntegerFieldType, Required: true},
	}

	columns, types := logicalColumns(schema)
	if len(columns) != 3 || columns[0] != "record_id" || columns[2] != "occurred_at" {
		t.Fatalf("columns = %v", columns)
	}
	want := []dataset.ColumnType{dataset.Text, dataset.Numeric, dataset.Timestamp}
	for i, typ := range want {
		if types[i] != typ {
			t.Errorf("type %d = %v, want %v", i, types[i], typ)
		}
	}
}

func TestInsertValue(t *testing.T) {
	ts := time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC)

	rat, ok := insertValue(dataset.Numeric, "100.25").(*big.Rat)
	if !ok || rat.Cmp(big.NewRat(401, 4)) != 0 {
		t.Errorf("numeric 100.25 = %v, want 401/4", rat)
	}
	if v := insertValue(dataset.Numeric, "not-a-number"); v != nil {
		t.Errorf("invalid numeric = %v, want nil", v)
	}
	if v := insertValue(dataset.Numeric, decimal.NullDecimal{}); v != nil {
		t.Errorf("null numeric = %v, want nil", v)
	}

	got, ok := insertValue(dataset.Timestamp, "2024-01-31T09:30:00Z").(time.Time)
	if !ok || !got.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got, ts)
	}
	if v := insertValue(dataset.Timestamp, nil); v != nil {
		t.Errorf("null timestamp = %v, want nil", v)
	}

	if v := insertValue(dataset.Text, nil); v != "" {
		t.Errorf("null text = %v, want empty string", v)
	}
	if v := insertValue(dataset.Text, "settled"); v != "settled" {
		t.Errorf("text = %v", v)
	}
}

func TestCellValue(t *testing.T) {
	d := cellValue(dataset.Numeric, big.NewRat(401, 4)).(decimal.NullDecimal)
	if !d.Valid || !d.Decimal.Equal(decimal.RequireFromString("100.25")) {
		t.Errorf("numeric cell = %v, want 100.25", d)
	}
	if d := cellValue(dataset.Numeric, nil).(decimal.NullDecimal); d.Valid {
		t.Errorf("NULL numeric cell = %v, want invalid", d)
	}

	ts := time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC)
	got := cellValue(dataset.Timestamp, ts).(*time.Time)
	if got == nil || !got.Equal(ts) {
		t.Errorf("timestamp cell = %v, want %v", got, ts)
	}
	if got := cellValue(dataset.Timestamp, nil).(*time.Time); got != nil {
		t.Errorf("NULL timestamp cell = %v, want nil", got)
	}

	if got := cellValue(dataset.Text, nil); got != "" {
		t.Errorf("NULL text cell = %v, want empty string", got)
	}
	if got := cellValue(dataset.Text, "settled"); got != "settled" {
		t.Errorf("text cell = %v", got)
	}
}

func TestInsertThenCellValueRoundTrip(t *testing.T) {
	stored := insertValue(dataset.Numeric, "250.75")
	back := cellValue(dataset.Numeric, stored).(decimal.NullDecimal)
	if !back.Valid || !back.Decimal.Equal(decimal.RequireFromString("250.75")) {
		t.Errorf("round trip = %v, want 250.75", back)
	}
}

func TestIsNotFound(t *testing.T) {
	notFound := &googleapi.Error{Code: 404, Message: "Not found: Table"}
	if !isNotFound(fmt.Errorf("metadata: %w", notFound)) {
		t.Error("wrapped 404 should report not found")
	}
	if isNotFound(&googleapi.Error{Code: 500}) {
		t.Error("500 should not report not found")
	}
	if isNotFound(fmt.Errorf("plain failure")) {
		t.Error("non-api error should not report not found")
	}
}
