// Package store defines the boundary contracts between pipeline stages
// and the storage backends that feed and persist them. Implementations
// live under internal/infra.
package store

import (
	"context"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
)

// Address is the physical leaf name of a logical table for one period,
// shared by every backend: BigQuery tables and GCS objects both end in
// {name}_{period}.
func Address(name string, period domain.Period) string {
	return name + "_" + period.String()
}

// Loader reads one logical table for a period. Implementations must
// preserve row order and return ErrNotFound (possibly wrapped) when the
// period has no object at all; an existing but empty object loads as a
// zero-row table.
type Loader interface {
	Load(ctx context.Context, name string, period domain.Period) (*dataset.Table, error)
}

// Sink persists one logical table for a period with replace-if-exists
// semantics: storing the same (name, period) twice keeps only the
// second table, never an append.
type Sink interface {
	// Name identifies the backend in logs and errors, e.g. "bigquery".
	Name() string
	Store(ctx context.Context, name string, period domain.Period, tab *dataset.Table) error
}

// RunCounts carries per-table row counts into the run ledger, keyed by
// the logical table name each stage wrote.
type RunCounts map[string]int

// Total sums all counts.
func (c RunCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// RunLedger records stage executions for auditing. A run is opened
// before the first load and closed exactly once, as succeeded or
// failed.
type RunLedger interface {
	StartRun(ctx context.Context, stage string, period domain.Period) (runID string, err error)
	MarkRunSucceeded(ctx context.Context, runID string, counts RunCounts) error
	MarkRunFailed(ctx context.Context, runID string, runErr error) error
}

// NopLedger is a RunLedger that records nothing, for runs without a
// ledger backend configured.
type NopLedger struct{}

var _ RunLedger = NopLedger{}

func (NopLedger) StartRun(context.Context, string, domain.Period) (string, error) {
	return "", nil
}

func (NopLedger) MarkRunSucceeded(context.Context, string, RunCounts) error { return nil }

func (NopLedger) MarkRunFailed(context.Context, string, error) error { return nil }
