package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/csvflag/internal/domain"
	"github.com/Harsh-BH/csvflag/internal/metrics"
	"github.com/Harsh-BH/csvflag/internal/publisher"
	"github.com/Harsh-BH/csvflag/internal/repository"
	"github.com/Harsh-BH/csvflag/internal/storage"
	"github.com/Harsh-BH/csvflag/internal/transform"
)

// ProcessJobUsecase runs the background transformation for one job and
// performs its single terminal transition.
type ProcessJobUsecase struct {
	repo         repository.JobRegistry
	store        *storage.ArtifactStore
	transformer  *transform.FileTransformer
	publisher    publisher.Publisher
	retainFailed bool
	logger       *zap.Logger
}

// NewProcessJobUsecase creates a new ProcessJobUsecase. When retainFailed is
// false a failed job is removed from the registry instead of being marked
// FAILED, so later lookups report it as unknown.
func NewProcessJobUsecase(
	repo repository.JobRegistry,
	store *storage.ArtifactStore,
	transformer *transform.FileTransformer,
	pub publisher.Publisher,
	retainFailed bool,
	logger *zap.Logger,
) *ProcessJobUsecase {
	return &ProcessJobUsecase{
		repo:         repo,
		store:        store,
		transformer:  transformer,
		publisher:    pub,
		retainFailed: retainFailed,
		logger:       logger,
	}
}

// Process transforms the spooled upload into the job's artifact:
// open spool → write artifact → commit → mark COMPLETED.
// Any failure marks the job FAILED and discards the partial artifact.
func (uc *ProcessJobUsecase) Process(ctx context.Context, task *domain.Task) (err error) {
	start := time.Now()
	// Registry writes must land even when ctx was cancelled mid-run.
	bookkeeping := context.WithoutCancel(ctx)

	defer func() {
		if rmErr := uc.store.RemoveSpool(task.SpoolPath); rmErr != nil {
			uc.logger.Warn("Failed to remove spooled upload", zap.Error(rmErr), zap.String("job_id", task.JobID))
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			uc.fail(bookkeeping, task.JobID, err, start)
		}
	}()

	res, err := uc.transform(ctx, task)
	if err != nil {
		uc.fail(bookkeeping, task.JobID, err, start)
		return err
	}

	tr := domain.Transition{
		State:      domain.StateCompleted,
		OutputPath: uc.store.ArtifactPath(task.JobID),
		Rows:       res.Rows,
	}
	if err := uc.repo.UpdateState(bookkeeping, task.JobID, tr); err != nil {
		uc.logger.Error("Failed to mark job completed", zap.Error(err), zap.String("job_id", task.JobID))
		if !errors.Is(err, domain.ErrInvalidTransition) {
			// The record would stay PENDING forever; withdraw the job and its artifact.
			uc.discardArtifact(task.JobID)
			uc.retract(bookkeeping, task.JobID)
		}
		metrics.JobsFinished.WithLabelValues(string(domain.StateFailed)).Inc()
		return fmt.Errorf("mark completed: %w", err)
	}

	elapsed := time.Since(start)
	metrics.JobsFinished.WithLabelValues(string(domain.StateCompleted)).Inc()
	metrics.ProcessingDuration.WithLabelValues(string(domain.StateCompleted)).Observe(elapsed.Seconds())
	metrics.RowsProcessed.Add(float64(res.Rows))

	uc.logger.Info("File processing completed",
		zap.String("job_id", task.JobID),
		zap.Int("rows", res.Rows),
		zap.Int("skipped_blank", res.Skipped),
		zap.Duration("elapsed", elapsed),
	)

	uc.publish(bookkeeping, &domain.JobEvent{
		JobID:      task.JobID,
		State:      domain.StateCompleted,
		Rows:       res.Rows,
		FinishedAt: time.Now().UTC(),
	})
	return nil
}

func (uc *ProcessJobUsecase) transform(ctx context.Context, task *domain.Task) (transform.Result, error) {
	if err := ctx.Err(); err != nil {
		return transform.Result{}, fmt.Errorf("processing cancelled: %w", err)
	}

	in, err := uc.store.OpenSpool(task.SpoolPath)
	if err != nil {
		return transform.Result{}, err
	}
	defer in.Close()

	out, err := uc.store.Create(task.JobID)
	if err != nil {
		return transform.Result{}, err
	}
	defer out.Abort()

	res, err := uc.transformer.Run(ctx, in, out)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return res, fmt.Errorf("processing cancelled: %w", err)
		}
		return res, err
	}
	if err := out.Commit(); err != nil {
		return res, err
	}
	return res, nil
}

// fail records the job's failure. The failure is absorbed here: no caller is
// waiting on the background task.
func (uc *ProcessJobUsecase) fail(ctx context.Context, jobID string, cause error, start time.Time) {
	uc.logger.Error("Error processing file", zap.String("job_id", jobID), zap.Error(cause))

	metrics.JobsFinished.WithLabelValues(string(domain.StateFailed)).Inc()
	metrics.ProcessingDuration.WithLabelValues(string(domain.StateFailed)).Observe(time.Since(start).Seconds())

	if !uc.retainFailed {
		uc.retract(ctx, jobID)
	} else {
		tr := domain.Transition{State: domain.StateFailed, Error: cause.Error()}
		if err := uc.repo.UpdateState(ctx, jobID, tr); err != nil {
			uc.logger.Error("Failed to mark job failed", zap.Error(err), zap.String("job_id", jobID))
			// A job that already finished keeps its state; anything else must not stay PENDING.
			if !errors.Is(err, domain.ErrInvalidTransition) {
				uc.retract(ctx, jobID)
			}
		}
	}

	uc.publish(ctx, &domain.JobEvent{
		JobID:      jobID,
		State:      domain.StateFailed,
		Error:      cause.Error(),
		FinishedAt: time.Now().UTC(),
	})
}

// retract removes the job record so later lookups report it as unknown.
func (uc *ProcessJobUsecase) retract(ctx context.Context, jobID string) {
	if err := uc.repo.Remove(ctx, jobID); err != nil {
		uc.logger.Error("Failed to remove job", zap.Error(err), zap.String("job_id", jobID))
	}
}

func (uc *ProcessJobUsecase) discardArtifact(jobID string) {
	if err := uc.store.RemoveArtifact(uc.store.ArtifactPath(jobID)); err != nil {
		uc.logger.Warn("Failed to remove orphaned artifact", zap.Error(err), zap.String("job_id", jobID))
	}
}

func (uc *ProcessJobUsecase) publish(ctx context.Context, event *domain.JobEvent) {
	if err := uc.publisher.Publish(ctx, event); err != nil {
		metrics.EventPublishFailures.Inc()
		uc.logger.Warn("Failed to publish job event", zap.Error(err), zap.String("job_id", event.JobID))
	}
}
