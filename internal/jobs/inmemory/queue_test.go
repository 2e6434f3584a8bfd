package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/jobs"
)

func mustPeriod(t *testing.T, s string) domain.Period {
	t.Helper()
	p, err := domain.ParsePeriod(s)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// waitForStatus polls the store until the job reaches the wanted status
// or the deadline passes. Queue work is asynchronous, so tests observe
// results through the store rather than through the handler.
func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.BackfillJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, want)
	return nil
}

func TestQueueProcessesPublishedJobs(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 2, store)
	defer queue.Close()

	var mu sync.Mutex
	seen := make(map[string]bool)
	handler := func(ctx context.Context, job jobs.Job) error {
		backfill := job.(*jobs.BackfillJob)
		mu.Lock()
		seen[backfill.Period.String()] = true
		mu.Unlock()
		return nil
	}
	if err := queue.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	periods := []string{"20240129", "20240130", "20240131"}
	ids := make([]string, 0, len(periods))
	for _, p := range periods {
		job := &jobs.BackfillJob{Period: mustPeriod(t, p), Stages: []string{"cleanse", "reconcile"}}
		if err := queue.PublishBackfill(context.Background(), job); err != nil {
			t.Fatalf("PublishBackfill(%s): %v", p, err)
		}
		ids = append(ids, job.JobID)
	}

	for i, id := range ids {
		job := waitForStatus(t, store, id, jobs.JobStatusCompleted)
		if job.StartedAt == nil || job.CompletedAt == nil {
			t.Errorf("job %s missing timestamps: %+v", id, job)
		}
		mu.Lock()
		if !seen[periods[i]] {
			t.Errorf("handler never saw period %s", periods[i])
		}
		mu.Unlock()
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	var mu sync.Mutex
	attempts := 0
	handler := func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return fmt.Errorf("transient failure")
		}
		return nil
	}
	if err := queue.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.BackfillJob{Period: mustPeriod(t, "20240131"), Stages: []string{"cleanse"}}
	if err := queue.PublishBackfill(context.Background(), job); err != nil {
		t.Fatalf("PublishBackfill: %v", err)
	}

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if done.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", done.RetryCount)
	}
	mu.Lock()
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	mu.Unlock()
}

func TestQueueFailsJobAfterMaxRetries(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	handler := func(ctx context.Context, job jobs.Job) error {
		return fmt.Errorf("period inputs are gone")
	}
	if err := queue.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.BackfillJob{
		Period:     mustPeriod(t, "20240131"),
		Stages:     []string{"reconcile"},
		MaxRetries: 1,
	}
	if err := queue.PublishBackfill(context.Background(), job); err != nil {
		t.Fatalf("PublishBackfill: %v", err)
	}

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if failed.Error == "" {
		t.Error("failed job should carry the handler error")
	}
	if failed.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", failed.RetryCount)
	}
}

func TestQueueRejectsPublishAfterClose(t *testing.T) {
	queue := NewQueue(1, 1, NewStore())
	if err := queue.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	job := &jobs.BackfillJob{Period: mustPeriod(t, "20240131")}
	if err := queue.PublishBackfill(context.Background(), job); err == nil {
		t.Error("publish on a closed queue should fail")
	}
}

func TestStoreSaveAndGetCopies(t *testing.T) {
	store := NewStore()

	if err := store.SaveJob(context.Background(), &jobs.BackfillJob{}); err == nil {
		t.Error("saving a job without an ID should fail")
	}

	job := &jobs.BackfillJob{JobID: "j1", Period: mustPeriod(t, "20240131"), Status: jobs.JobStatusPending}
	if err := store.SaveJob(context.Background(), job); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}

	got, err := store.GetJob(context.Background(), "j1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	got.Status = jobs.JobStatusFailed

	again, err := store.GetJob(context.Background(), "j1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if again.Status != jobs.JobStatusPending {
		t.Errorf("stored job mutated through a returned copy: %v", again.Status)
	}

	if _, err := store.GetJob(context.Background(), "missing"); err == nil {
		t.Error("GetJob of unknown ID should fail")
	}
}

func TestStoreListJobsFilters(t *testing.T) {
	store := NewStore()
	seed := []*jobs.BackfillJob{
		{JobID: "j1", Period: mustPeriod(t, "20240130"), Status: jobs.JobStatusCompleted},
		{JobID: "j2", Period: mustPeriod(t, "20240131"), Status: jobs.JobStatusCompleted},
		{JobID: "j3", Period: mustPeriod(t, "20240131"), Status: jobs.JobStatusFailed},
	}
	for _, j := range seed {
		if err := store.SaveJob(context.Background(), j); err != nil {
			t.Fatalf("SaveJob(%s): %v", j.JobID, err)
		}
	}

	byPeriod, err := store.ListJobs(context.Background(), jobs.JobFilter{Period: "20240131"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(byPeriod) != 2 {
		t.Errorf("period filter returned %d jobs, want 2", len(byPeriod))
	}

	failed, err := store.ListJobs(context.Background(), jobs.JobFilter{Status: jobs.JobStatusFailed})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(failed) != 1 || failed[0].JobID != "j3" {
		t.Errorf("status filter = %v", failed)
	}

	limited, err := store.ListJobs(context.Background(), jobs.JobFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit 2 returned %d jobs", len(limited))
	}

	offset, err := store.ListJobs(context.Background(), jobs.JobFilter{Offset: 5})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(offset) != 0 {
		t.Errorf("offset beyond end returned %d jobs", len(offset))
	}
}

func TestStoreUpdateJobStatus(t *testing.T) {
	store := NewStore()
	job := &jobs.BackfillJob{JobID: "j1", Period: mustPeriod(t, "20240131"), Status: jobs.JobStatusRunning}
	if err := store.SaveJob(context.Background(), job); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}

	if err := store.UpdateJobStatus(context.Background(), "j1", jobs.JobStatusFailed, "stage cleanse failed"); err != nil {
		t.Fatalf("UpdateJobStatus: %v", err)
	}
	got, err := store.GetJob(context.Background(), "j1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != jobs.JobStatusFailed || got.Error != "stage cleanse failed" {
		t.Errorf("job after update = %+v", got)
	}

	if err := store.UpdateJobStatus(context.Background(), "missing", jobs.JobStatusFailed, ""); err == nil {
		t.Error("updating unknown job should fail")
	}
}
