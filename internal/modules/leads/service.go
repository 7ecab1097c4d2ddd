// Package leads is the leads module's service layer.
package leads

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ModuleName is the leads module identifier used as event source.
const ModuleName = "leads"

// EventLeadCreated is published after a lead has been persisted.
const EventLeadCreated = "leads:lead.created"

// Lead represents a sales lead.
type Lead struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}

// LeadCreatedPayload is the data carried by EventLeadCreated.
type LeadCreatedPayload struct {
	LeadID   string `json:"lead_id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Store persists leads.
type Store interface {
	SaveLead(ctx context.Context, lead Lead) error
}

// Publisher is the slice of the event bus the service needs.
type Publisher interface {
	Publish(ctx context.Context, eventName string, payload any, sourceModule string) error
}

// Service implements the leads module operations.
type Service struct {
	store  Store
	bus    Publisher
	logger *slog.Logger
}

// NewService creates the leads service.
func NewService(store Store, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		bus:    bus,
		logger: logger.With("component", "leads_service"),
	}
}

// CreateLead persists a new lead and announces it on the event bus. As with
// every module, a publish failure is logged and swallowed: the lead is
// created regardless of what its subscribers do.
func (s *Service) CreateLead(ctx context.Context, tenantID uuid.UUID, name, email string) (Lead, error) {
	if name == "" {
		return Lead{}, fmt.Errorf("lead name must not be empty")
	}

	lead := Lead{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.SaveLead(ctx, lead); err != nil {
		return Lead{}, fmt.Errorf("failed to save lead: %w", err)
	}

	payload := LeadCreatedPayload{
		LeadID:   lead.ID.String(),
		TenantID: lead.TenantID.String(),
		Name:     lead.Name,
		Email:    lead.Email,
	}
	if err := s.bus.Publish(ctx, EventLeadCreated, payload, ModuleName); err != nil {
		s.logger.Error("failed to publish lead created event",
			"lead_id", lead.ID,
			"error", err)
	}

	return lead, nil
}

// MemoryStore is an in-memory Store for tests and local runs.
type MemoryStore struct {
	mu    sync.Mutex
	leads []Lead
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveLead implements Store.
func (s *MemoryStore) SaveLead(_ context.Context, lead Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = append(s.leads, lead)
	return nil
}
