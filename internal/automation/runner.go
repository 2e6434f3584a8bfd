package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/logger"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/notify"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/pipeline"
)

// Runner executes a plan's stages in order. A stage failure stops the
// run, fires one notification, and leaves the remaining stages for a
// later backfill.
type Runner struct {
	plan     *Plan
	stages   map[string]pipeline.Stage
	notifier notify.Notifier
}

// NewRunner wires a validated plan to its stage implementations. Every
// stage the plan names must resolve here, so a typo in the plan file
// fails at startup instead of during the night run.
func NewRunner(plan *Plan, stages []pipeline.Stage, notifier notify.Notifier) (*Runner, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("NewRunner: %w", err)
	}

	index := make(map[string]pipeline.Stage, len(stages))
	for _, stage := range stages {
		index[stage.Name()] = stage
	}
	for _, spec := range plan.Stages {
		if _, ok := index[spec.Name]; !ok {
			return nil, fmt.Errorf("NewRunner: plan names unknown stage %q", spec.Name)
		}
	}

	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Runner{plan: plan, stages: index, notifier: notifier}, nil
}

// RunOnce executes the planned stages for one period, stopping at the
// first failure. Notification delivery problems are logged but never
// mask the stage failure itself.
func (r *Runner) RunOnce(ctx context.Context, period domain.Period) error {
	log := logger.FromContext(ctx)

	for i, spec := range r.plan.Stages {
		stage := r.stages[spec.Name]
		log.Info().
			Str("stage", spec.Name).
			Str("period", period.String()).
			Msg("stage starting")

		if err := stage.Execute(ctx, period); err != nil {
			log.Error().
				Str("stage", spec.Name).
				Str("period", period.String()).
				Err(err).
				Msg("stage failed, skipping remaining stages")
			if nerr := r.notifier.NotifyFailure(ctx, spec.Name, period, err); nerr != nil {
				log.Error().
					Str("stage", spec.Name).
					Err(nerr).
					Msg("failure notification not delivered")
			}
			return fmt.Errorf("stage %s: %w", spec.Name, err)
		}

		log.Info().
			Str("stage", spec.Name).
			Str("period", period.String()).
			Msg("stage finished")

		if i < len(r.plan.Stages)-1 && spec.Delay() > 0 {
			select {
			case <-time.After(spec.Delay()):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// Run blocks until ctx is cancelled, executing the plan at its
// scheduled time each day. Every run processes the previous calendar
// day in loc; a failed run is logged and the loop keeps going, since
// the next day's run must still happen.
func (r *Runner) Run(ctx context.Context, loc *time.Location) error {
	log := logger.FromContext(ctx)

	for {
		next, err := r.plan.NextRun(time.Now(), loc)
		if err != nil {
			return fmt.Errorf("Run: %w", err)
		}
		log.Info().
			Time("next_run", next).
			Msg("waiting for next scheduled run")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case now := <-timer.C:
			period := domain.YesterdayIn(now, loc)
			if err := r.RunOnce(ctx, period); err != nil {
				log.Error().
					Str("period", period.String()).
					Err(err).
					Msg("scheduled run failed")
			}
		}
	}
}
