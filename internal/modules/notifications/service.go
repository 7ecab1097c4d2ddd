// Package notifications is the notifications module. It subscribes to
// events from several modules and delivers notifications; it declares no
// idempotency key, so a redelivered event notifies again (a duplicate
// notification is annoying, a swallowed one loses information).
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harborcrm/harbor/internal/events"
	"github.com/harborcrm/harbor/internal/modules/leads"
	"github.com/harborcrm/harbor/internal/modules/projects"
)

// ModuleName is the notifications module identifier.
const ModuleName = "notifications"

// Notifier delivers a notification to the outside world (mail, chat, ...).
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// LogNotifier writes notifications to the log. Stand-in delivery channel
// for local runs.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, subject, body string) error {
	n.Logger.Info("notification sent", "subject", subject, "body", body)
	return nil
}

// Service implements the notifications module operations.
type Service struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewService creates the notifications service.
func NewService(notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		notifier: notifier,
		logger:   logger.With("component", "notifications_service"),
	}
}

func (s *Service) handleLeadCreated(ctx context.Context, evt events.Event) error {
	var payload leads.LeadCreatedPayload
	if err := evt.UnmarshalData(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal lead created payload: %w", err)
	}
	subject := fmt.Sprintf("New lead: %s", payload.Name)
	body := fmt.Sprintf("Lead %s (%s) was created.", payload.Name, payload.Email)
	return s.notifier.Notify(ctx, subject, body)
}

func (s *Service) handleProjectCreated(ctx context.Context, evt events.Event) error {
	var payload projects.ProjectCreatedPayload
	if err := evt.UnmarshalData(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal project created payload: %w", err)
	}
	subject := fmt.Sprintf("New project: %s", payload.Name)
	body := fmt.Sprintf("Project %s was created for tenant %s.", payload.Name, payload.TenantID)
	return s.notifier.Notify(ctx, subject, body)
}

// EventHandlers exposes the notifications module's static handler list,
// consumed once at bootstrap.
func (s *Service) EventHandlers() []events.HandlerDescriptor {
	retry := events.RetryPolicy{
		MaxAttempts: 2,
		Backoff:     100 * time.Millisecond,
		Exponential: true,
		MaxDelay:    5 * time.Second,
	}
	return []events.HandlerDescriptor{
		{
			EventName: leads.EventLeadCreated,
			Module:    ModuleName,
			HandlerID: "notify_lead_created",
			Handler:   events.HandlerFunc(s.handleLeadCreated),
			Retry:     retry,
			Timeout:   2 * time.Second,
		},
		{
			EventName: projects.EventProjectCreated,
			Module:    ModuleName,
			HandlerID: "notify_project_created",
			Handler:   events.HandlerFunc(s.handleProjectCreated),
			Retry:     retry,
			Timeout:   2 * time.Second,
		},
	}
}
