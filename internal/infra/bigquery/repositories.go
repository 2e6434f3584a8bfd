// Package bigquery persists period tables and the run ledger in a
// BigQuery dataset. Tables are replaced whole per period; the ledger
// is append-then-update via DML so a run row can be closed in place.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/store"
)

// Config locates the dataset all tables and the run ledger live in.
type Config struct {
	ProjectID string
	DatasetID string
}

func (c Config) qualified(table string) string {
	return fmt.Sprintf("`%s.%s.%s`", c.ProjectID, c.DatasetID, table)
}

// TableStore reads and writes period tables. It holds a shared BigQuery
// client so repeated stores against one dataset reuse the connection.
type TableStore struct {
	client *bigquery.Client
	cfg    Config
}

var (
	_ store.Sink   = (*TableStore)(nil)
	_ store.Loader = (*TableStore)(nil)
)

// NewTableStore creates a store for the configured dataset.
func NewTableStore(ctx context.Context, cfg Config) (*TableStore, error) {
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewTableStore: creating client: %w", err)
	}
	return &TableStore{client: client, cfg: cfg}, nil
}

// Close closes the BigQuery client connection.
func (s *TableStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Name identifies the backend in logs and errors.
func (s *TableStore) Name() string { return "bigquery" }

// Store delegates to StoreTableWithClient with the shared client.
func (s *TableStore) Store(ctx context.Context, name string, period domain.Period, tab *dataset.Table) error {
	return StoreTableWithClient(ctx, s.client, s.cfg, store.Address(name, period), tab)
}

// Load delegates to LoadTableWithClient with the shared client.
func (s *TableStore) Load(ctx context.Context, name string, period domain.Period) (*dataset.Table, error) {
	return LoadTableWithClient(ctx, s.client, s.cfg, store.Address(name, period))
}

// RunLedger records stage runs in the reconciliation_runs table. It
// holds a shared BigQuery client like TableStore does.
type RunLedger struct {
	client *bigquery.Client
	cfg    Config
}

var _ store.RunLedger = (*RunLedger)(nil)

// NewRunLedger creates a ledger writing to the configured dataset.
func NewRunLedger(ctx context.Context, cfg Config) (*RunLedger, error) {
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewRunLedger: creating client: %w", err)
	}
	return &RunLedger{client: client, cfg: cfg}, nil
}

// Close closes the BigQuery client connection.
func (l *RunLedger) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}

// StartRun delegates to StartRunWithClient with the shared client.
func (l *RunLedger) StartRun(ctx context.Context, stage string, period domain.Period) (string, error) {
	return StartRunWithClient(ctx, l.client, l.cfg, stage, period)
}

// MarkRunSucceeded delegates to MarkRunSucceededWithClient with the shared client.
func (l *RunLedger) MarkRunSucceeded(ctx context.Context, runID string, counts store.RunCounts) error {
	return MarkRunSucceededWithClient(ctx, l.client, l.cfg, runID, counts)
}

// MarkRunFailed delegates to MarkRunFailedWithClient with the shared client.
func (l *RunLedger) MarkRunFailed(ctx context.Context, runID string, runErr error) error {
	return MarkRunFailedWithClient(ctx, l.client, l.cfg, runID, runErr)
}
