package mock

import (
	"context"
	"sync"

	"github.com/Harsh-BH/csvflag/internal/domain"
	"github.com/Harsh-BH/csvflag/internal/repository"
	"github.com/Harsh-BH/csvflag/internal/repository/memory"
)

// Ensure MockJobRegistry implements repository.JobRegistry.
var _ repository.JobRegistry = (*MockJobRegistry)(nil)

// MockJobRegistry wraps the in-memory registry with hooks for injecting
// errors and records every transition for assertions.
type MockJobRegistry struct {
	*memory.JobRegistry

	mu          sync.Mutex
	Transitions []Transition
	Removed     []string

	// Hook functions for injecting errors
	PutFunc         func(ctx context.Context, job *domain.Job) error
	GetFunc         func(ctx context.Context, id string) (*domain.Job, error)
	UpdateStateFunc func(ctx context.Context, id string, tr domain.Transition) error
}

// Transition is one recorded UpdateState call.
type Transition struct {
	ID string
	domain.Transition
}

// NewMockJobRegistry creates a new mock registry.
func NewMockJobRegistry() *MockJobRegistry {
	return &MockJobRegistry{JobRegistry: memory.NewJobRegistry()}
}

func (m *MockJobRegistry) Put(ctx context.Context, job *domain.Job) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, job)
	}
	return m.JobRegistry.Put(ctx, job)
}

func (m *MockJobRegistry) Get(ctx context.Context, id string) (*domain.Job, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return m.JobRegistry.Get(ctx, id)
}

func (m *MockJobRegistry) UpdateState(ctx context.Context, id string, tr domain.Transition) error {
	m.mu.Lock()
	m.Transitions = append(m.Transitions, Transition{ID: id, Transition: tr})
	m.mu.Unlock()
	if m.UpdateStateFunc != nil {
		return m.UpdateStateFunc(ctx, id, tr)
	}
	return m.JobRegistry.UpdateState(ctx, id, tr)
}

func (m *MockJobRegistry) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	m.Removed = append(m.Removed, id)
	m.mu.Unlock()
	return m.JobRegistry.Remove(ctx, id)
}

// RecordedTransitions returns a snapshot of the UpdateState calls so far.
func (m *MockJobRegistry) RecordedTransitions() []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Transition(nil), m.Transitions...)
}

// RemovedIDs returns a snapshot of the Remove calls so far.
func (m *MockJobRegistry) RemovedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Removed...)
}
