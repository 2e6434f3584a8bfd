package bigquery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/store"
)

// runsTable is created by the bigquery migrations, not by the ledger
// itself, so it survives across runs.
const runsTable = "reconciliation_runs"

// maxErrorMessageLen bounds what lands in the error_message column;
// wrapped pipeline errors can be arbitrarily long.
const maxErrorMessageLen = 2000

// StartRunWithClient inserts a RUNNING row into reconciliation_runs and
// returns the generated run_id. The ledger uses DML instead of the
// streaming inserter because closed runs are updated in place, and rows
// in the streaming buffer reject UPDATE.
func StartRunWithClient(ctx context.Context, client *bigquery.Client, cfg Config, stage string, period domain.Period) (string, error) {
	runID := uuid.NewString()

	q := client.Query(fmt.Sprintf(`
		INSERT %s (
			run_id,
			stage,
			period,
			started_ts,
			status
		)
		VALUES (
			@run_id,
			@stage,
			@period,
			@started_ts,
			@status
		)
	`, cfg.qualified(runsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "stage", Value: stage},
		{Name: "period", Value: period.Date},
		{Name: "started_ts", Value: time.Now().UTC()},
		{Name: "status", Value: "RUNNING"},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("StartRun: running insert query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("StartRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return "", fmt.Errorf("StartRun: job error: %w", err)
	}

	return runID, nil
}

// MarkRunSucceededWithClient sets status=SUCCESS, finished_ts and the
// per-table row counts as a JSON text column.
func MarkRunSucceededWithClient(ctx context.Context, client *bigquery.Client, cfg Config, runID string, counts store.RunCounts) error {
	rowCounts, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("MarkRunSucceeded: encoding row counts: %w", err)
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    row_counts = @row_counts
		WHERE run_id = @run_id
	`, cfg.qualified(runsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now().UTC()},
		{Name: "row_counts", Value: string(rowCounts)},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkRunSucceeded: running update query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkRunSucceeded: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkRunSucceeded: job error: %w", err)
	}

	return nil
}

// MarkRunFailedWithClient sets status=FAILED, finished_ts and the
// truncated failure message.
func MarkRunFailedWithClient(ctx context.Context, client *bigquery.Client, cfg Config, runID string, runErr error) error {
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		if len(errMsg) > maxErrorMessageLen {
			errMsg = errMsg[:maxErrorMessageLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, cfg.qualified(runsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now().UTC()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkRunFailed: running update query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkRunFailed: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkRunFailed: job error: %w", err)
	}

	return nil
}
