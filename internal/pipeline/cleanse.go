package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/logger"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/store"
)

// CleanseStage loads a period's raw feeds, canonicalizes them, and
// stores the cleaned tables on every sink.
type CleanseStage struct {
	Loader store.Loader
	Sinks  []store.Sink
	Ledger store.RunLedger
}

var _ Stage = (*CleanseStage)(nil)

func (s *CleanseStage) Name() string { return "cleanse" }

// Execute processes all three entities for the period. A missing raw
// dataset or a failed cleaned export aborts the whole run: downstream
// reconciliation must never see a partially cleaned period.
func (s *CleanseStage) Execute(ctx context.Context, period domain.Period) error {
	log := logger.FromContext(ctx)

	runID, err := s.Ledger.StartRun(ctx, s.Name(), period)
	if err != nil {
		return fmt.Errorf("CleanseStage: start run: %w", err)
	}

	counts := store.RunCounts{}
	for _, entity := range domain.Entities() {
		cleaned, err := s.cleanseEntity(ctx, entity, period)
		if err != nil {
			s.Ledger.MarkRunFailed(ctx, runID, err)
			return err
		}
		counts[entity.Cleaned()] = cleaned.Len()
		log.Info().
			Str("stage", s.Name()).
			Str("period", period.String()).
			Str("entity", string(entity)).
			Int("rows", cleaned.Len()).
			Msg("entity cleaned")
	}

	if err := s.Ledger.MarkRunSucceeded(ctx, runID, counts); err != nil {
		return fmt.Errorf("CleanseStage: close run: %w", err)
	}
	return nil
}

func (s *CleanseStage) cleanseEntity(ctx context.Context, entity domain.EntityKind, period domain.Period) (*dataset.Table, error) {
	raw, err := s.Loader.Load(ctx, entity.Raw(), period)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &store.MissingInputError{Name: entity.Raw(), Period: period, Err: err}
		}
		return nil, fmt.Errorf("CleanseStage: load %s: %w", store.Address(entity.Raw(), period), err)
	}

	records := rawRecords(raw)
	var cleaned *dataset.Table
	if entity == domain.EntityAccounts {
		cleaned = AccountTable(AccountsFromRaw(records))
	} else {
		cleaned = TransactionTable(TransactionsFromRaw(entity, records))
	}

	for _, sink := range s.Sinks {
		if err := sink.Store(ctx, entity.Cleaned(), period, cleaned); err != nil {
			return nil, &store.SinkFailureError{Sink: sink.Name(), Name: entity.Cleaned(), Period: period, Err: err}
		}
	}
	return cleaned, nil
}
