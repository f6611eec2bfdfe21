package repository

import (
	"context"

	"github.com/Harsh-BH/csvflag/internal/domain"
)

// JobRegistry defines the interface for job status bookkeeping.
// Implementations must be safe for concurrent use, and a reader must never
// observe a partially updated job.
type JobRegistry interface {
	// Put inserts a new job record. IDs are never reused: registering an
	// existing ID returns domain.ErrJobExists and leaves the record intact.
	Put(ctx context.Context, job *domain.Job) error

	// Get returns a copy of the job, or domain.ErrJobNotFound.
	Get(ctx context.Context, id string) (*domain.Job, error)

	// UpdateState moves a pending job to a terminal state. It returns
	// domain.ErrInvalidTransition when the job already left StatePending.
	UpdateState(ctx context.Context, id string, tr domain.Transition) error

	// Remove deletes the job record. Removing an unknown id is not an error.
	Remove(ctx context.Context, id string) error
}
