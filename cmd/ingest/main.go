// Command ingest uploads a local raw feed CSV into a period's raw
// namespace on GCS and BigQuery, standing in for the synthetic
// generator when a real upstream export is available.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/config"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/infra/bigquery"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/infra/gcs"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/logger"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/store"
)

func main() {
	log := logger.New()

	var (
		periodArg string
		entityArg string
		filePath  string
	)

	flag.StringVar(&periodArg, "period", "", "period the feed belongs to as YYYYMMDD (required)")
	flag.StringVar(&entityArg, "entity", "", "feed entity: accounts, source_transactions or counterpart_transactions (required)")
	flag.StringVar(&filePath, "file", "", "path to the local CSV file (required)")
	flag.Parse()

	if periodArg == "" || entityArg == "" || filePath == "" {
		log.Fatal().Msg("Usage: ingest -period YYYYMMDD -entity ENTITY -file /path/to/feed.csv")
	}

	period, err := domain.ParsePeriod(periodArg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -period")
	}

	entity := domain.EntityKind(entityArg)
	if !entity.Valid() {
		log.Fatal().Str("entity", entityArg).Msg("Invalid -entity, want accounts, source_transactions or counterpart_transactions")
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

	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", filePath).Msg("Failed to read feed file")
	}

	tab, err := gcs.DecodeCSV(data)
	if err != nil {
		log.Fatal().Err(err).Str("file", filePath).Msg("Failed to parse feed CSV")
	}
	if err := checkColumns(entity, tab); err != nil {
		log.Fatal().Err(err).Str("file", filePath).Msg("Feed CSV does not match the entity layout")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	objects, err := gcs.NewObjectStore(ctx, cfg.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS store")
	}
	defer objects.Close()

	tables, err := bigquery.NewTableStore(ctx, bigquery.Config{ProjectID: cfg.ProjectID, DatasetID: cfg.DatasetID})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery store")
	}
	defer tables.Close()

	log.Info().
		Str("period", period.String()).
		Str("entity", string(entity)).
		Int("rows", tab.Len()).
		Msg("Ingesting raw feed")

	for _, sink := range []store.Sink{objects, tables} {
		if err := sink.Store(ctx, entity.Raw(), period, tab); err != nil {
			log.Fatal().Err(err).Str("sink", sink.Name()).Msg("Failed to store raw feed")
		}
	}

	log.Info().
		Str("period", period.String()).
		Str("entity", string(entity)).
		Int("rows", tab.Len()).
		Msg("Raw feed ingested")
}

// checkColumns verifies the uploaded header carries every column of the
// entity's raw layout. Extra columns pass through untouched; the
// canonicalization pipeline ignores them.
func checkColumns(entity domain.EntityKind, tab *dataset.Table) error {
	have := make(map[string]bool, len(tab.Columns))
	for _, c := range tab.Columns {
		have[c] = true
	}
	for _, want := range entity.RawColumns() {
		if !have[want] {
			return fmt.Errorf("missing column %q", want)
		}
	}
	return nil
}
