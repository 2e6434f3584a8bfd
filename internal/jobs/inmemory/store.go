package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/jobs"
)

// Store is an in-memory JobStore. Jobs are lost on restart; a backfill
// that must survive one needs a database-backed store instead.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.BackfillJob
}

// NewStore creates an empty in-memory job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.BackfillJob),
	}
}

// SaveJob implements the JobStore interface. The stored job is a copy,
// so the caller's mutations never leak in.
func (s *Store) SaveJob(ctx context.Context, job *jobs.BackfillJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy

	return nil
}

// GetJob implements the JobStore interface.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.BackfillJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs implements the JobStore interface.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.BackfillJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*jobs.BackfillJob

	for _, job := range s.jobs {
		if filter.Period != "" && job.Period.String() != filter.Period {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}

		jobCopy := *job
		result = append(result, &jobCopy)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.BackfillJob{}, nil
		}
		result = result[filter.Offset:]
	}

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// UpdateJobStatus implements the JobStore interface.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}

	return nil
}

var _ jobs.JobStore = (*Store)(nil)
