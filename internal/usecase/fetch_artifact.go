package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Harsh-BH/csvflag/internal/domain"
	"github.com/Harsh-BH/csvflag/internal/storage"
)

// FetchArtifactUsecase gates artifact downloads on the job's state. It only
// reads the registry and never changes a job.
type FetchArtifactUsecase struct {
	jobs   *GetJobUsecase
	store  *storage.ArtifactStore
	logger *zap.Logger
}

// NewFetchArtifactUsecase creates a new FetchArtifactUsecase.
func NewFetchArtifactUsecase(jobs *GetJobUsecase, store *storage.ArtifactStore, logger *zap.Logger) *FetchArtifactUsecase {
	return &FetchArtifactUsecase{
		jobs:   jobs,
		store:  store,
		logger: logger,
	}
}

// Execute returns the completed artifact for id. The caller must close the
// artifact body.
func (uc *FetchArtifactUsecase) Execute(ctx context.Context, id string) (*domain.Artifact, error) {
	job, err := uc.jobs.Execute(ctx, id)
	if err != nil {
		return nil, err
	}

	switch job.State {
	case domain.StatePending:
		return nil, domain.ErrNotReady
	case domain.StateFailed:
		return nil, fmt.Errorf("%w: %s", domain.ErrProcessingFailed, job.Error)
	case domain.StateCompleted:
		body, size, err := uc.store.Open(job.OutputPath)
		if err != nil {
			uc.logger.Warn("Artifact unavailable for completed job", zap.String("job_id", id), zap.Error(err))
			return nil, err
		}
		return &domain.Artifact{Name: domain.ArtifactName, Size: size, Body: body}, nil
	}
	return nil, fmt.Errorf("job %s in unknown state %q", id, job.State)
}
