package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/normalize"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/store"
)

// orderColumn is a bookkeeping column appended to every stored table.
// SELECT has no defined row order, and loaders must return rows exactly
// as stored, so stores number the rows and loads sort by that number
// and strip it.
const orderColumn = "row_seq"

// insertBatchSize caps rows per streaming insert request.
const insertBatchSize = 500

// StoreTableWithClient replaces the leaf table with the given rows
// using the provided BigQuery client. The replace is a CREATE OR
// REPLACE TABLE so a re-run of the same period never appends.
func StoreTableWithClient(ctx context.Context, client *bigquery.Client, cfg Config, leaf string, tab *dataset.Table) error {
	if len(tab.Columns) == 0 {
		return fmt.Errorf("StoreTable: %s: table has no columns", leaf)
	}

	q := client.Query(createTableDDL(cfg.qualified(leaf), tab))
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("StoreTable: running create for %s: %w", leaf, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("StoreTable: waiting for create of %s: %w", leaf, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("StoreTable: create of %s: %w", leaf, err)
	}

	savers := make([]*bigquery.ValuesSaver, 0, len(tab.Rows))
	schema := storageSchema(tab)
	for i, row := range tab.Rows {
		values := make([]bigquery.Value, 0, len(row)+1)
		for c, cell := range row {
			values = append(values, insertValue(tab.Types[c], cell))
		}
		values = append(values, int64(i))
		savers = append(savers, &bigquery.ValuesSaver{Schema: schema, Row: values})
	}

	inserter := client.DatasetInProject(cfg.ProjectID, cfg.DatasetID).Table(leaf).Inserter()
	for start := 0; start < len(savers); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(savers) {
			end = len(savers)
		}
		if err := inserter.Put(ctx, savers[start:end]); err != nil {
			return fmt.Errorf("StoreTable: inserting rows %d-%d of %s: %w", start, end-1, leaf, err)
		}
	}
	return nil
}

// LoadTableWithClient reads the leaf table back in stored row order
// using the provided BigQuery client. Columns and types come from the
// table's own schema, so the load is faithful to whatever was stored
// rather than to current naming conventions. A missing table reports
// store.ErrNotFound.
func LoadTableWithClient(ctx context.Context, client *bigquery.Client, cfg Config, leaf string) (*dataset.Table, error) {
	md, err := client.DatasetInProject(cfg.ProjectID, cfg.DatasetID).Table(leaf).Metadata(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("LoadTable: %s.%s: %w", cfg.DatasetID, leaf, store.ErrNotFound)
		}
		return nil, fmt.Errorf("LoadTable: reading metadata of %s: %w", leaf, err)
	}
	columns, types := logicalColumns(md.Schema)
	if len(columns) == 0 {
		return dataset.NewTyped(nil, nil), nil
	}

	q := client.Query(fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s",
		strings.Join(columns, ", "), cfg.qualified(leaf), orderColumn,
	))
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadTable: query read of %s: %w", leaf, err)
	}

	tab := dataset.NewTyped(columns, types)
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("LoadTable: iterating %s: %w", leaf, err)
		}
		cells := make([]any, len(columns))
		for i := range columns {
			cells[i] = cellValue(types[i], row[i])
		}
		tab.Rows = append(tab.Rows, cells)
	}
	return tab, nil
}

// createTableDDL builds the CREATE OR REPLACE TABLE statement for one
// period table, with the order column appended after the logical ones.
func createTableDDL(qualified string, tab *dataset.Table) string {
	cols := make([]string, 0, len(tab.Columns)+1)
	for i, col := range tab.Columns {
		cols = append(cols, col+" "+ddlType(tab.Types[i]))
	}
	cols = append(cols, orderColumn+" INT64 NOT NULL")
	return fmt.Sprintf("CREATE OR REPLACE TABLE %s (\n  %s\n)", qualified, strings.Join(cols, ",\n  "))
}

func ddlType(t dataset.ColumnType) string {
	switch t {
	case dataset.Numeric:
		return "NUMERIC"
	case dataset.Timestamp:
		return "TIMESTAMP"
	default:
		return "STRING"
	}
}

// storageSchema is the insert-time schema matching createTableDDL.
func storageSchema(tab *dataset.Table) bigquery.Schema {
	schema := make(bigquery.Schema, 0, len(tab.Columns)+1)
	for i, col := range tab.Columns {
		schema = append(schema, &bigquery.FieldSchema{Name: col, Type: fieldType(tab.Types[i])})
	}
	schema = append(schema, &bigquery.FieldSchema{Name: orderColumn, Type: bigquery.IntegerFieldType, Required: true})
	return schema
}

func fieldType(t dataset.ColumnType) bigquery.FieldType {
	switch t {
	case dataset.Numeric:
		return bigquery.NumericFieldType
	case dataset.Timestamp:
		return bigquery.TimestampFieldType
	default:
		return bigquery.StringFieldType
	}
}

// logicalColumns maps a stored schema back to table columns and types,
// dropping the order column.
func logicalColumns(schema bigquery.Schema) ([]string, []dataset.ColumnType) {
	var columns []string
	var types []dataset.ColumnType
	for _, field := range schema {
		if field.Name == orderColumn {
			continue
		}
		columns = append(columns, field.Name)
		types = append(types, columnType(field.Type))
	}
	return columns, types
}

func columnType(t bigquery.FieldType) dataset.ColumnType {
	switch t {
	case bigquery.NumericFieldType, bigquery.BigNumericFieldType, bigquery.FloatFieldType:
		return dataset.Numeric
	case bigquery.TimestampFieldType:
		return dataset.Timestamp
	default:
		return dataset.Text
	}
}

// insertValue converts one table cell to the BigQuery value for its
// column type. Invalid numerics and timestamps store as NULL, matching
// how canonicalization degrades them.
func insertValue(typ dataset.ColumnType, cell any) bigquery.Value {
	switch typ {
	case dataset.Numeric:
		d := normalize.Amount(cell)
		if !d.Valid {
			return nil
		}
		return d.Decimal.Rat()
	case dataset.Timestamp:
		t := normalize.Timestamp(cell)
		if t == nil {
			return nil
		}
		return *t
	default:
		return dataset.RenderText(cell)
	}
}

// cellValue converts one value read from BigQuery back to the cell
// representation the rest of the pipeline works on. NUMERIC comes back
// as *big.Rat and TIMESTAMP as time.Time; both re-enter through
// normalize so every loader yields the same cell types.
func cellValue(typ dataset.ColumnType, v bigquery.Value) any {
	switch typ {
	case dataset.Numeric:
		return normalize.Amount(v)
	case dataset.Timestamp:
		return normalize.Timestamp(v)
	default:
		s, ok := v.(string)
		if !ok {
			return ""
		}
		return s
	}
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
