// Package tasks is the tasks module. It reacts to project creation by
// creating the project's initial kick-off task; the reaction is registered
// on the event bus at bootstrap, so the projects module never imports it.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ModuleName is the tasks module identifier.
const ModuleName = "tasks"

// Task represents a unit of work inside a project.
type Task struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	Title     string
	CreatedAt time.Time
}

// Store persists tasks.
type Store interface {
	SaveTask(ctx context.Context, task Task) error
}

// Service implements the tasks module operations.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates the tasks service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With("component", "tasks_service"),
	}
}

// CreateInitialTask creates the kick-off task for a freshly created
// project. It is the committing side effect guarded by the handler's
// idempotency key: under at-least-once delivery it must run at most once
// per project.
func (s *Service) CreateInitialTask(ctx context.Context, projectID uuid.UUID, projectName string) (Task, error) {
	task := Task{
		ID:        uuid.New(),
		ProjectID: projectID,
		Title:     fmt.Sprintf("Kick-off: %s", projectName),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.SaveTask(ctx, task); err != nil {
		return Task{}, fmt.Errorf("failed to save initial task: %w", err)
	}

	s.logger.Info("initial task created",
		"task_id", task.ID,
		"project_id", projectID)
	return task, nil
}

// MemoryStore is an in-memory Store for tests and local runs.
type MemoryStore struct {
	mu    sync.Mutex
	tasks []Task
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveTask implements Store.
func (s *MemoryStore) SaveTask(_ context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return nil
}

// Tasks returns a snapshot of the stored tasks.
func (s *MemoryStore) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}
