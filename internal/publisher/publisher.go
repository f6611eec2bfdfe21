package publisher

import (
	"context"

	"github.com/Harsh-BH/csvflag/internal/domain"
)

// Publisher announces jobs that reached a terminal state.
type Publisher interface {
	Publish(ctx context.Context, event *domain.JobEvent) error
	Close() error
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, *domain.JobEvent) error { return nil }

func (Noop) Close() error { return nil }
