// Command cleanse canonicalizes one period's raw feeds and stores the
// cleaned tables on GCS and BigQuery.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/config"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/infra/bigquery"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/infra/gcs"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/logger"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/pipeline"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/store"
)

func main() {
	log := logger.New()

	var (
		periodArg string
		from      string
	)

	flag.StringVar(&periodArg, "period", "", "period to cleanse as YYYYMMDD (defaults to yesterday)")
	flag.StringVar(&from, "from", "gcs", "backend to load raw feeds from: gcs or bigquery")
	flag.Parse()

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

	period := domain.YesterdayIn(time.Now(), loc)
	if periodArg != "" {
		period, err = domain.ParsePeriod(periodArg)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -period")
		}
	}

	ctx := context.Background()
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

	var loader store.Loader
	switch from {
	case "gcs":
		loader = objects
	case "bigquery":
		loader = tables
	default:
		log.Fatal().Str("from", from).Msg("Invalid -from, want gcs or bigquery")
	}

	stage := &pipeline.CleanseStage{
		Loader: loader,
		Sinks:  []store.Sink{objects, tables},
		Ledger: ledger,
	}

	log.Info().
		Str("period", period.String()).
		Str("from", from).
		Msg("Cleansing raw feeds")

	if err := stage.Execute(ctx, period); err != nil {
		log.Fatal().Err(err).Str("period", period.String()).Msg("Cleanse stage failed")
	}

	log.Info().Str("period", period.String()).Msg("Cleanse stage completed")
}
