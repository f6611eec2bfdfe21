package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/csvflag/internal/domain"
	"github.com/Harsh-BH/csvflag/internal/metrics"
)

var (
	// ErrQueueFull is returned by Schedule when every worker is busy and the queue is full.
	ErrQueueFull = errors.New("worker queue is full")

	// ErrPoolClosed is returned by Schedule after Stop has been called.
	ErrPoolClosed = errors.New("worker pool is shutting down")
)

// Processor runs one task. It owns the job's terminal transition.
type Processor interface {
	Process(ctx context.Context, task *domain.Task) error
}

// WorkerPool manages a fixed-size pool of goroutines that process tasks from
// a bounded queue.
type WorkerPool struct {
	size    int
	tasks   chan *domain.Task
	proc    Processor
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool creates a pool of size workers with room for queueSize
// waiting tasks. A positive timeout bounds each task's run time.
func NewWorkerPool(size, queueSize int, proc Processor, timeout time.Duration, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		tasks:   make(chan *domain.Task, queueSize),
		proc:    proc,
		timeout: timeout,
		logger:  logger,
	}
}

// Start launches all worker goroutines. Each task runs with a context derived
// from ctx, so cancelling ctx cancels in-flight work. Call Stop to wait for
// the workers to finish.
func (p *WorkerPool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("pool_size", p.size), zap.Int("queue_size", cap(p.tasks)))

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Schedule hands a task to the pool without blocking.
func (p *WorkerPool) Schedule(task *domain.Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		metrics.QueueDepth.Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop rejects new tasks, lets the workers drain the queue and waits for
// them to exit. Tasks still queued after ctx was cancelled run with a
// cancelled context and fail fast.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Debug("Worker started", zap.Int("worker_id", id))

	for task := range p.tasks {
		metrics.QueueDepth.Dec()
		p.run(ctx, id, task)
	}

	p.logger.Debug("Job channel closed", zap.Int("worker_id", id))
}

func (p *WorkerPool) run(ctx context.Context, id int, task *domain.Task) {
	var (
		taskCtx context.Context
		cancel  context.CancelFunc
	)
	if p.timeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, p.timeout)
	} else {
		taskCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker panic recovered",
				zap.Int("worker_id", id),
				zap.String("job_id", task.JobID),
				zap.Any("panic", r),
			)
		}
	}()

	metrics.WorkersActive.Inc()
	defer metrics.WorkersActive.Dec()

	p.logger.Debug("Worker processing job", zap.Int("worker_id", id), zap.String("job_id", task.JobID))

	if err := p.proc.Process(taskCtx, task); err != nil {
		p.logger.Warn("Job processing failed",
			zap.Int("worker_id", id),
			zap.String("job_id", task.JobID),
			zap.Error(err),
		)
	}
}
