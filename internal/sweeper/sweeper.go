// Package sweeper deletes artifacts that have outlived the retention window.
package sweeper

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Harsh-BH/csvflag/internal/metrics"
)

// Stats summarises one sweep.
type Stats struct {
	Scanned int
	Deleted int
	Failed  int
}

// Sweeper removes regular files directly under root whose modification time
// is older than the retention window. Subdirectories (the work area among
// them) are never entered, and the job registry is never consulted.
type Sweeper struct {
	fs       afero.Fs
	root     string
	window   time.Duration
	interval time.Duration
	onStart  bool
	logger   *zap.Logger
	now      func() time.Time
}

// Option customises a Sweeper.
type Option func(*Sweeper)

// WithClock overrides the time source used to age files.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// WithSweepOnStart makes Run sweep once before waiting for the first tick.
func WithSweepOnStart(enabled bool) Option {
	return func(s *Sweeper) { s.onStart = enabled }
}

// New creates a Sweeper for root on fsys.
func New(fsys afero.Fs, root string, window, interval time.Duration, logger *zap.Logger, opts ...Option) *Sweeper {
	s := &Sweeper{
		fs:       fsys,
		root:     root,
		window:   window,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("Starting retention sweeper",
		zap.String("root", s.root),
		zap.Duration("window", s.window),
		zap.Duration("interval", s.interval),
	)

	if s.onStart {
		s.Sweep(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Retention sweeper stopped")
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one pass. A missing root is logged and treated as empty;
// a file that cannot be inspected or deleted is logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context) Stats {
	var stats Stats

	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Storage root does not exist, skipping sweep", zap.String("root", s.root))
		} else {
			s.logger.Error("Failed to list storage root", zap.String("root", s.root), zap.Error(err))
		}
		return stats
	}

	cutoff := s.now().Add(-s.window)
	for _, info := range entries {
		if ctx.Err() != nil {
			break
		}
		if !info.Mode().IsRegular() {
			continue
		}
		stats.Scanned++

		if !info.ModTime().Before(cutoff) {
			metrics.SweptFiles.WithLabelValues("kept").Inc()
			continue
		}

		path := filepath.Join(s.root, info.Name())
		if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			stats.Failed++
			metrics.SweptFiles.WithLabelValues("failed").Inc()
			s.logger.Error("Failed to delete expired file", zap.String("path", path), zap.Error(err))
			continue
		}
		stats.Deleted++
		metrics.SweptFiles.WithLabelValues("deleted").Inc()
		s.logger.Debug("Deleted expired file", zap.String("path", path), zap.Time("modified", info.ModTime()))
	}

	s.logger.Info("Retention sweep finished",
		zap.Int("scanned", stats.Scanned),
		zap.Int("deleted", stats.Deleted),
		zap.Int("failed", stats.Failed),
	)
	return stats
}
