// Package projects is the projects module's service layer. Its only
// coupling to the rest of the system is the event bus: creating a project
// publishes "projects:project.created" without knowing which modules react.
package projects

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ModuleName is the projects module identifier used as event source.
const ModuleName = "projects"

// EventProjectCreated is published after a project has been persisted.
const EventProjectCreated = "projects:project.created"

// Project represents a customer project.
type Project struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	CreatedAt time.Time
}

// ProjectCreatedPayload is the data carried by EventProjectCreated.
type ProjectCreatedPayload struct {
	ProjectID string `json:"project_id"`
	TenantID  string `json:"tenant_id"`
	Name      string `json:"name"`
}

// Store persists projects.
type Store interface {
	SaveProject(ctx context.Context, project Project) error
}

// Publisher is the slice of the event bus the service needs.
type Publisher interface {
	Publish(ctx context.Context, eventName string, payload any, sourceModule string) error
}

// Service implements the projects module operations.
type Service struct {
	store  Store
	bus    Publisher
	logger *slog.Logger
}

// NewService creates the projects service.
func NewService(store Store, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		bus:    bus,
		logger: logger.With("component", "projects_service"),
	}
}

// CreateProject persists a new project and announces it on the event bus.
// A publish failure is logged but does not fail the creation: secondary
// effects must never break the primary operation.
func (s *Service) CreateProject(ctx context.Context, tenantID uuid.UUID, name string) (Project, error) {
	if name == "" {
		return Project{}, fmt.Errorf("project name must not be empty")
	}

	project := Project{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.SaveProject(ctx, project); err != nil {
		return Project{}, fmt.Errorf("failed to save project: %w", err)
	}

	payload := ProjectCreatedPayload{
		ProjectID: project.ID.String(),
		TenantID:  project.TenantID.String(),
		Name:      project.Name,
	}
	if err := s.bus.Publish(ctx, EventProjectCreated, payload, ModuleName); err != nil {
		s.logger.Error("failed to publish project created event",
			"project_id", project.ID,
			"error", err)
	} else {
		s.logger.Info("project created",
			"project_id", project.ID,
			"tenant_id", project.TenantID)
	}

	return project, nil
}

// MemoryStore is an in-memory Store for tests and local runs; the
// production schema lives in the host application's relational layer.
type MemoryStore struct {
	mu       sync.Mutex
	projects []Project
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveProject implements Store.
func (s *MemoryStore) SaveProject(_ context.Context, project Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append(s.projects, project)
	return nil
}
