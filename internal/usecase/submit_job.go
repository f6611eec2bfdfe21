package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/csvflag/internal/domain"
	"github.com/Harsh-BH/csvflag/internal/metrics"
	"github.com/Harsh-BH/csvflag/internal/repository"
	"github.com/Harsh-BH/csvflag/internal/storage"
)

const csvExtension = ".csv"

// Scheduler accepts background work without blocking the caller.
type Scheduler interface {
	Schedule(task *domain.Task) error
}

// SubmitJobUsecase validates an upload, registers a pending job and hands
// the transformation to the worker pool.
type SubmitJobUsecase struct {
	repo      repository.JobRegistry
	store     *storage.ArtifactStore
	scheduler Scheduler
	maxBytes  int64
	logger    *zap.Logger
}

// NewSubmitJobUsecase creates a new SubmitJobUsecase.
func NewSubmitJobUsecase(repo repository.JobRegistry, store *storage.ArtifactStore, scheduler Scheduler, maxBytes int64, logger *zap.Logger) *SubmitJobUsecase {
	return &SubmitJobUsecase{
		repo:      repo,
		store:     store,
		scheduler: scheduler,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// Execute spools the upload, creates a pending job and schedules it. The job
// is visible in the registry before the ID is returned. Validation failures
// create no job.
func (uc *SubmitJobUsecase) Execute(ctx context.Context, r io.Reader, filename string) (*domain.SubmitResponse, error) {
	if !strings.HasSuffix(filename, csvExtension) {
		metrics.SubmitRejected.WithLabelValues("extension").Inc()
		return nil, fmt.Errorf("%w: uploaded file is empty or not a CSV", domain.ErrInvalidInput)
	}

	spoolPath, size, err := uc.store.Spool(r, uc.maxBytes)
	if err != nil {
		if errors.Is(err, domain.ErrPayloadTooLarge) {
			metrics.SubmitRejected.WithLabelValues("too_large").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	if size == 0 {
		uc.discardSpool(spoolPath)
		metrics.SubmitRejected.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("%w: uploaded file is empty or not a CSV", domain.ErrInvalidInput)
	}

	// Generate UUIDv7 (time-ordered)
	jobID, err := uuid.NewV7()
	if err != nil {
		uc.discardSpool(spoolPath)
		return nil, fmt.Errorf("generate UUIDv7: %w", err)
	}
	id := jobID.String()

	now := time.Now().UTC()
	job := &domain.Job{
		ID:         id,
		State:      domain.StatePending,
		Filename:   filename,
		OutputPath: uc.store.ArtifactPath(id),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.repo.Put(ctx, job); err != nil {
		uc.discardSpool(spoolPath)
		uc.logger.Error("Failed to register job", zap.Error(err), zap.String("job_id", id))
		return nil, fmt.Errorf("register job: %w", err)
	}

	if err := uc.scheduler.Schedule(&domain.Task{JobID: id, SpoolPath: spoolPath}); err != nil {
		uc.logger.Error("Failed to schedule job", zap.Error(err), zap.String("job_id", id))
		// Retract the job so it never lingers as pending.
		if rmErr := uc.repo.Remove(context.WithoutCancel(ctx), id); rmErr != nil {
			uc.logger.Error("Failed to retract unscheduled job", zap.Error(rmErr), zap.String("job_id", id))
		}
		uc.discardSpool(spoolPath)
		metrics.SubmitRejected.WithLabelValues("scheduling").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrSchedulingFailure, err)
	}

	metrics.JobsSubmitted.Inc()
	uc.logger.Info("Job submitted successfully",
		zap.String("job_id", id),
		zap.String("filename", filename),
		zap.Int64("size_bytes", size),
	)

	return &domain.SubmitResponse{ID: id}, nil
}

func (uc *SubmitJobUsecase) discardSpool(path string) {
	if err := uc.store.RemoveSpool(path); err != nil {
		uc.logger.Warn("Failed to remove spooled upload", zap.Error(err), zap.String("path", path))
	}
}
