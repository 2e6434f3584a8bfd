// Command automate runs the pipeline on a daily schedule: generate,
// cleanse and reconcile for yesterday's period, with failure mail when
// SMTP is configured. It is the long-running counterpart of the
// single-shot stage commands.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/automation"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/config"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/generator"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/infra/bigquery"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/infra/gcs"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/logger"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/notify"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/pipeline"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/store"
)

func main() {
	log := logger.New()

	var planPath string
	flag.StringVar(&planPath, "plan", "automation.yaml", "path to the automation plan")
	flag.Parse()

	plan, err := automation.LoadPlan(planPath)
	if err != nil {
		log.Fatal().Err(err).Str("plan", planPath).Msg("Failed to load automation plan")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.RequireBucket(); err != nil {
		log.Fatal().Err(err).Msg("Missing GCS configuration")
	}
	if err := cfg.RequireBigQuery(); err != nil {
		log.Fatal().Err(err).Msg("Missing BigQuery configuration")
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve home timezone")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	objects, err := gcs.NewObjectStore(ctx, cfg.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS store")
	}
	defer objects.Close()

	bqCfg := bigquery.Config{ProjectID: cfg.ProjectID, DatasetID: cfg.DatasetID}
	tables, err := bigquery.NewTableStore(ctx, bqCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery store")
	}
	defer tables.Close()

	ledger, err := bigquery.NewRunLedger(ctx, bqCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create run ledger")
	}
	defer ledger.Close()

	genCfg := generator.DefaultConfig()
	genCfg.Location = loc
	sinks := []store.Sink{objects, tables}

	stages := []pipeline.Stage{
		&pipeline.GenerateStage{Source: generator.New(genCfg), Sinks: sinks, Ledger: ledger},
		&pipeline.CleanseStage{Loader: objects, Sinks: sinks, Ledger: ledger},
		&pipeline.ReconcileStage{Loader: objects, Sinks: sinks, Ledger: ledger},
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.SMTP.Complete() {
		notifier = &notify.SMTP{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			Username:   cfg.SMTP.Username,
			Password:   cfg.SMTP.Password,
			From:       cfg.SMTP.From,
			Recipients: cfg.SMTP.Recipients,
		}
	} else {
		log.Warn().Msg("SMTP configuration incomplete, failure notification disabled")
	}

	runner, err := automation.NewRunner(plan, stages, notifier)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build automation runner")
	}

	log.Info().
		Str("plan", planPath).
		Str("schedule", plan.Schedule.Time).
		Str("timezone", cfg.Timezone).
		Msg("Starting automation service")

	// Cancel the run loop on interrupt so in-flight stages stop at the
	// next context check.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("Shutting down automation service...")
		cancel()
	}()

	if err := runner.Run(ctx, loc); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Automation service failed")
	}

	log.Info().Msg("Automation service exited")
}
