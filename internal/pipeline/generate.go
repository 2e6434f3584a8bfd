package pipeline

import (
	"context"
	"fmt"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/logger"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/store"
)

// GenerateStage produces a period's raw feeds and stores them on every
// sink, giving the cleanse stage something to chew on.
type GenerateStage struct {
	Source FeedSource
	Sinks  []store.Sink
	Ledger store.RunLedger
}

var _ Stage = (*GenerateStage)(nil)

func (s *GenerateStage) Name() string { return "generate" }

func (s *GenerateStage) Execute(ctx context.Context, period domain.Period) error {
	log := logger.FromContext(ctx)

	runID, err := s.Ledger.StartRun(ctx, s.Name(), period)
	if err != nil {
		return fmt.Errorf("GenerateStage: start run: %w", err)
	}

	feeds, err := s.Source.Feeds(period)
	if err != nil {
		err = fmt.Errorf("GenerateStage: feeds for %s: %w", period, err)
		s.Ledger.MarkRunFailed(ctx, runID, err)
		return err
	}

	counts := store.RunCounts{}
	for _, entity := range domain.Entities() {
		tab := feeds.ByEntity()[entity]
		for _, sink := range s.Sinks {
			if err := sink.Store(ctx, entity.Raw(), period, tab); err != nil {
				failure := &store.SinkFailureError{Sink: sink.Name(), Name: entity.Raw(), Period: period, Err: err}
				s.Ledger.MarkRunFailed(ctx, runID, failure)
				return failure
			}
		}
		counts[entity.Raw()] = tab.Len()
		log.Info().
			Str("stage", s.Name()).
			Str("period", period.String()).
			Str("entity", string(entity)).
			Int("rows", tab.Len()).
			Msg("feed generated")
	}

	if err := s.Ledger.MarkRunSucceeded(ctx, runID, counts); err != nil {
		return fmt.Errorf("GenerateStage: close run: %w", err)
	}
	return nil
}
