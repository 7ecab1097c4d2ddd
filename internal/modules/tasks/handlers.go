package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborcrm/harbor/internal/events"
	"github.com/harborcrm/harbor/internal/modules/projects"
)

// initialTaskKey derives the idempotency key for the initial-task handler:
// one key per project, so a redelivered project.created event cannot create
// a second kick-off task. An undecodable payload yields an empty key, which
// disables idempotency for that event; the handler then fails on the same
// decode error and is retried normally.
func initialTaskKey(evt events.Event) string {
	var payload projects.ProjectCreatedPayload
	if err := evt.UnmarshalData(&payload); err != nil {
		return ""
	}
	return "initial-task-" + payload.ProjectID
}

// handleProjectCreated creates the initial task for a new project.
func (s *Service) handleProjectCreated(ctx context.Context, evt events.Event) error {
	var payload projects.ProjectCreatedPayload
	if err := evt.UnmarshalData(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal project created payload: %w", err)
	}

	projectID, err := uuid.Parse(payload.ProjectID)
	if err != nil {
		return fmt.Errorf("invalid project id %q: %w", payload.ProjectID, err)
	}

	if _, err := s.CreateInitialTask(ctx, projectID, payload.Name); err != nil {
		return err
	}
	return nil
}

// EventHandlers exposes the tasks module's static handler list, consumed
// once at bootstrap.
func (s *Service) EventHandlers() []events.HandlerDescriptor {
	return []events.HandlerDescriptor{
		{
			EventName:      projects.EventProjectCreated,
			Module:         ModuleName,
			HandlerID:      "create_initial_task",
			Handler:        events.HandlerFunc(s.handleProjectCreated),
			Retry:          events.RetryPolicy{MaxAttempts: 3, Backoff: 50 * time.Millisecond},
			Timeout:        time.Second,
			IdempotencyKey: initialTaskKey,
		},
	}
}
