// Package jobs defines the asynchronous job contracts used by backfill
// runs. The queue abstraction keeps publishers and consumers decoupled
// from the queue implementation, so the in-memory queue can later give
// way to Cloud Tasks or Pub/Sub without touching callers.
package jobs

import (
	"context"
	"time"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
)

// JobType identifies what kind of work a job carries.
type JobType string

const (
	// JobTypeBackfillPeriod reprocesses one historical period.
	JobTypeBackfillPeriod JobType = "backfill_period"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed and exhausted its retries.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and will run again.
	JobStatusRetrying JobStatus = "retrying"
)

// BackfillJob reprocesses the named stages for one period. Stages run
// in the order given and the job fails on the first stage that fails.
type BackfillJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Period is the calendar day to reprocess.
	Period domain.Period `json:"period"`

	// Stages names the pipeline stages to run, in order.
	Stages []string `json:"stages"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was published.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job finished, in success or failure.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds failure details for failed and retrying jobs.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is the generic view of a queued job.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *BackfillJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *BackfillJob) GetType() JobType {
	return JobTypeBackfillPeriod
}

// GetStatus implements the Job interface.
func (j *BackfillJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher enqueues jobs.
type Publisher interface {
	// PublishBackfill enqueues a period reprocessing job.
	PublishBackfill(ctx context.Context, job *BackfillJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer drains jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs, calling the handler for each one.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to finish.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error marks the job failed
// and eligible for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so callers can watch a backfill progress
// and audit it afterwards.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *BackfillJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*BackfillJob, error)

	// ListJobs retrieves jobs matching the filter.
	ListJobs(ctx context.Context, filter JobFilter) ([]*BackfillJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter selects jobs when listing.
type JobFilter struct {
	// Period filters jobs by period in YYYYMMDD form.
	Period string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
