// Package redis provides a JobRegistry backed by Redis, for deployments that
// want job status to outlive a single process.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Harsh-BH/csvflag/internal/domain"
	"github.com/Harsh-BH/csvflag/internal/repository"
)

var _ repository.JobRegistry = (*redisJobRegistry)(nil)

const (
	jobKeyPrefix = "csvflag:job:"

	// Optimistic-lock retries for UpdateState when the key changes under WATCH.
	maxUpdateRetries = 5
)

type redisJobRegistry struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisJobRegistry creates a Redis-backed registry. Records expire after
// ttl; a zero ttl keeps them until removed.
func NewRedisJobRegistry(client *goredis.Client, ttl time.Duration) repository.JobRegistry {
	return &redisJobRegistry{client: client, ttl: ttl}
}

func jobKey(id string) string {
	return jobKeyPrefix + id
}

func (r *redisJobRegistry) Put(ctx context.Context, job *domain.Job) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("redis: put job: missing id")
	}
	data, err := json.Marshal(record(*job))
	if err != nil {
		return fmt.Errorf("redis: marshal job: %w", err)
	}
	// SETNX: an ID is registered once and never overwritten.
	ok, err := r.client.SetNX(ctx, jobKey(job.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis: put job: %w", err)
	}
	if !ok {
		return fmt.Errorf("redis: put job %s: %w", job.ID, domain.ErrJobExists)
	}
	return nil
}

func (r *redisJobRegistry) Get(ctx context.Context, id string) (*domain.Job, error) {
	data, err := r.client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get job: %w", err)
	}
	return decode(data)
}

// UpdateState reads and rewrites the record inside WATCH/MULTI so the
// pending check and the write are atomic with respect to other writers.
func (r *redisJobRegistry) UpdateState(ctx context.Context, id string, tr domain.Transition) error {
	if !tr.State.IsTerminal() {
		return fmt.Errorf("%w: to %s", domain.ErrInvalidTransition, tr.State)
	}
	key := jobKey(id)

	txf := func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return domain.ErrJobNotFound
		}
		if err != nil {
			return err
		}
		job, err := decode(data)
		if err != nil {
			return err
		}
		if job.State != domain.StatePending {
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, job.State, tr.State)
		}

		updated, err := json.Marshal(record(tr.Apply(*job, time.Now().UTC())))
		if err != nil {
			return fmt.Errorf("redis: marshal job: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, updated, goredis.KeepTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, domain.ErrJobNotFound) && !errors.Is(err, domain.ErrInvalidTransition) {
			return fmt.Errorf("redis: update state: %w", err)
		}
		return err
	}
	return fmt.Errorf("redis: update state: too many concurrent writers for %s", id)
}

func (r *redisJobRegistry) Remove(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, jobKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: remove job: %w", err)
	}
	return nil
}

// jobRecord is the stored form of domain.Job. It keeps OutputPath, which the
// API representation hides.
type jobRecord struct {
	ID         string          `json:"id"`
	State      domain.JobState `json:"state"`
	Filename   string          `json:"filename,omitempty"`
	OutputPath string          `json:"output_path,omitempty"`
	Rows       int             `json:"rows,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func record(j domain.Job) jobRecord {
	return jobRecord(j)
}

func decode(data []byte) (*domain.Job, error) {
	var rec jobRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("redis: decode job: %w", err)
	}
	job := domain.Job(rec)
	return &job, nil
}
