package pool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/csvflag/internal/domain"
	"github.com/Harsh-BH/csvflag/internal/pool"
)

type processorFunc func(ctx context.Context, task *domain.Task) error

func (f processorFunc) Process(ctx context.Context, task *domain.Task) error { return f(ctx, task) }

func task(id string) *domain.Task {
	return &domain.Task{JobID: id}
}

// Test: pool processes every scheduled task.
func TestPool_ProcessesTasks(t *testing.T) {
	var done atomic.Int32
	proc := processorFunc(func(ctx context.Context, task *domain.Task) error {
		done.Add(1)
		return nil
	})

	wp := pool.NewWorkerPool(2, 16, proc, 0, zap.NewNop())
	wp.Start(context.Background())

	for i := 0; i < 5; i++ {
		if err := wp.Schedule(task("job")); err != nil {
			t.Fatalf("unexpected schedule error: %v", err)
		}
	}
	wp.Stop()

	if done.Load() != 5 {
		t.Errorf("expected 5 processed tasks, got %d", done.Load())
	}
}

// Test: a full queue rejects work instead of blocking the caller.
func TestPool_QueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	proc := processorFunc(func(ctx context.Context, task *domain.Task) error {
		started <- struct{}{}
		<-release
		return nil
	})

	wp := pool.NewWorkerPool(1, 1, proc, 0, zap.NewNop())
	wp.Start(context.Background())

	if err := wp.Schedule(task("running")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-started
	if err := wp.Schedule(task("queued")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := wp.Schedule(task("rejected")); !errors.Is(err, pool.ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	close(release)
	<-started
	wp.Stop()
}

// Test: Schedule fails after Stop.
func TestPool_ScheduleAfterStop(t *testing.T) {
	wp := pool.NewWorkerPool(1, 1, processorFunc(func(context.Context, *domain.Task) error { return nil }), 0, zap.NewNop())
	wp.Start(context.Background())
	wp.Stop()

	if err := wp.Schedule(task("late")); !errors.Is(err, pool.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
	wp.Stop()
}

// Test: cancelling the pool context reaches in-flight and queued tasks.
func TestPool_CancellationReachesTasks(t *testing.T) {
	var mu sync.Mutex
	var errs []error
	started := make(chan struct{}, 1)
	proc := processorFunc(func(ctx context.Context, task *domain.Task) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		mu.Lock()
		errs = append(errs, ctx.Err())
		mu.Unlock()
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	wp := pool.NewWorkerPool(1, 4, proc, 0, zap.NewNop())
	wp.Start(ctx)

	_ = wp.Schedule(task("a"))
	_ = wp.Schedule(task("b"))
	<-started
	cancel()
	wp.Stop()

	if len(errs) != 2 {
		t.Fatalf("expected 2 cancelled tasks, got %d", len(errs))
	}
	for _, err := range errs {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	}
}

// Test: the per-task timeout bounds a slow task.
func TestPool_TaskTimeout(t *testing.T) {
	result := make(chan error, 1)
	proc := processorFunc(func(ctx context.Context, task *domain.Task) error {
		<-ctx.Done()
		result <- ctx.Err()
		return ctx.Err()
	})

	wp := pool.NewWorkerPool(1, 1, proc, 20*time.Millisecond, zap.NewNop())
	wp.Start(context.Background())
	_ = wp.Schedule(task("slow"))

	select {
	case err := <-result:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected DeadlineExceeded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task was not timed out")
	}
	wp.Stop()
}

// Test: a panicking task does not take the worker down.
func TestPool_RecoversPanic(t *testing.T) {
	var done atomic.Int32
	proc := processorFunc(func(ctx context.Context, task *domain.Task) error {
		if task.JobID == "boom" {
			panic("boom")
		}
		done.Add(1)
		return nil
	})

	wp := pool.NewWorkerPool(1, 4, proc, 0, zap.NewNop())
	wp.Start(context.Background())
	_ = wp.Schedule(task("boom"))
	_ = wp.Schedule(task("ok"))
	wp.Stop()

	if done.Load() != 1 {
		t.Errorf("expected the worker to survive the panic, got %d processed", done.Load())
	}
}
