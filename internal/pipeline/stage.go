package pipeline

import (
	"context"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
)

// Stage is one period-scoped unit of pipeline work. Stages are wired
// with their dependencies at construction and run sequentially by the
// automation runner, or individually by their command.
type Stage interface {
	Name() string
	Execute(ctx context.Context, period domain.Period) error
}

// RawFeeds is one period's worth of raw input tables, one per entity.
// All cells are text; the mess is the cleanse stage's problem.
type RawFeeds struct {
	Accounts                *dataset.Table
	SourceTransactions      *dataset.Table
	CounterpartTransactions *dataset.Table
}

// ByEntity returns the feeds keyed by entity kind, in processing order.
func (f *RawFeeds) ByEntity() map[domain.EntityKind]*dataset.Table {
	return map[domain.EntityKind]*dataset.Table{
		domain.EntityAccounts:                f.Accounts,
		domain.EntitySourceTransactions:      f.SourceTransactions,
		domain.EntityCounterpartTransactions: f.CounterpartTransactions,
	}
}

// FeedSource produces one period's raw feeds. The synthetic generator
// implements it; a real upstream extractor would slot in the same way.
type FeedSource interface {
	Feeds(period domain.Period) (*RawFeeds, error)
}
