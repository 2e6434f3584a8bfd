package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/logger"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/reconcile"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/store"
)

// ReconcileStage loads a period's cleaned transaction feeds, joins them
// into the four partitions, and exports each partition to every sink.
type ReconcileStage struct {
	Loader store.Loader
	Sinks  []store.Sink
	Ledger store.RunLedger
}

var _ Stage = (*ReconcileStage)(nil)

func (s *ReconcileStage) Name() string { return "reconcile" }

// Execute reconciles one period. A failed partition export is fatal for
// that partition only; the remaining partitions still export, and the
// collected failures fail the run afterwards.
func (s *ReconcileStage) Execute(ctx context.Context, period domain.Period) error {
	log := logger.FromContext(ctx)

	runID, err := s.Ledger.StartRun(ctx, s.Name(), period)
	if err != nil {
		return fmt.Errorf("ReconcileStage: start run: %w", err)
	}

	source, err := s.loadCleaned(ctx, domain.EntitySourceTransactions, period)
	if err != nil {
		s.Ledger.MarkRunFailed(ctx, runID, err)
		return err
	}
	counterpart, err := s.loadCleaned(ctx, domain.EntityCounterpartTransactions, period)
	if err != nil {
		s.Ledger.MarkRunFailed(ctx, runID, err)
		return err
	}

	outcome := reconcile.StabilizeOutcome(reconcile.Reconcile(source, counterpart))

	counts := store.RunCounts{}
	var exportErrs []error
	for _, part := range outcome.Partitions() {
		name := part.Name.Reconciled()
		counts[name] = part.Table.Len()
		for _, sink := range s.Sinks {
			if err := sink.Store(ctx, name, period, part.Table); err != nil {
				failure := &store.SinkFailureError{Sink: sink.Name(), Name: name, Period: period, Err: err}
				log.Error().
					Str("stage", s.Name()).
					Str("period", period.String()).
					Str("partition", string(part.Name)).
					Err(failure).
					Msg("partition export failed")
				exportErrs = append(exportErrs, failure)
			}
		}
		log.Info().
			Str("stage", s.Name()).
			Str("period", period.String()).
			Str("partition", string(part.Name)).
			Int("rows", part.Table.Len()).
			Msg("partition reconciled")
	}

	if len(exportErrs) > 0 {
		err := errors.Join(exportErrs...)
		s.Ledger.MarkRunFailed(ctx, runID, err)
		return err
	}

	if err := s.Ledger.MarkRunSucceeded(ctx, runID, counts); err != nil {
		return fmt.Errorf("ReconcileStage: close run: %w", err)
	}
	return nil
}

func (s *ReconcileStage) loadCleaned(ctx context.Context, entity domain.EntityKind, period domain.Period) ([]domain.CanonicalTransaction, error) {
	tab, err := s.Loader.Load(ctx, entity.Cleaned(), period)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &store.MissingInputError{Name: entity.Cleaned(), Period: period, Err: err}
		}
		return nil, fmt.Errorf("ReconcileStage: load %s: %w", store.Address(entity.Cleaned(), period), err)
	}
	return TransactionsFromCleaned(rawRecords(tab)), nil
}
