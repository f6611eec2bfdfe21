// Package memory provides the process-local JobRegistry.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Harsh-BH/csvflag/internal/domain"
	"github.com/Harsh-BH/csvflag/internal/repository"
)

// Ensure JobRegistry implements repository.JobRegistry.
var _ repository.JobRegistry = (*JobRegistry)(nil)

// JobRegistry keeps job records in a map guarded by a RWMutex. Records are
// stored and returned by value so callers never share state with the map.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
	now  func() time.Time
}

// NewJobRegistry creates an empty registry.
func NewJobRegistry() *JobRegistry {
	return &JobRegistry{
		jobs: make(map[string]domain.Job),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *JobRegistry) Put(_ context.Context, job *domain.Job) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("memory: put job: missing id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("memory: put job %s: %w", job.ID, domain.ErrJobExists)
	}
	r.jobs[job.ID] = *job
	return nil
}

func (r *JobRegistry) Get(_ context.Context, id string) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &job, nil
}

func (r *JobRegistry) UpdateState(_ context.Context, id string, tr domain.Transition) error {
	if !tr.State.IsTerminal() {
		return fmt.Errorf("%w: to %s", domain.ErrInvalidTransition, tr.State)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	if job.State != domain.StatePending {
		return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, job.State, tr.State)
	}
	r.jobs[id] = tr.Apply(job, r.now())
	return nil
}

func (r *JobRegistry) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	return nil
}

// Len returns the number of tracked jobs.
func (r *JobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
