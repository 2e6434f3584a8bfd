// Command generate produces one period's synthetic raw feeds and
// stores them on GCS and BigQuery, ready for the cleanse stage.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/config"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/generator"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/infra/bigquery"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/infra/gcs"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/logger"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/pipeline"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/store"
)

func main() {
	log := logger.New()

	var (
		periodArg    string
		seed         int64
		transactions int
	)

	flag.StringVar(&periodArg, "period", "", "period to generate as YYYYMMDD (defaults to yesterday)")
	flag.Int64Var(&seed, "seed", 0, "random seed; 0 seeds from the clock")
	flag.IntVar(&transactions, "transactions", 0, "override the source transaction count")
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

	genCfg := generator.DefaultConfig()
	genCfg.Seed = seed
	genCfg.Location = loc
	if transactions > 0 {
		genCfg.Transactions = transactions
	}

	stage := &pipeline.GenerateStage{
		Source: generator.New(genCfg),
		Sinks:  []store.Sink{objects, tables},
		Ledger: ledger,
	}

	log.Info().
		Str("period", period.String()).
		Int64("seed", seed).
		Msg("Generating raw feeds")

	if err := stage.Execute(ctx, period); err != nil {
		log.Fatal().Err(err).Str("period", period.String()).Msg("Generate stage failed")
	}

	log.Info().Str("period", period.String()).Msg("Generate stage completed")
}
