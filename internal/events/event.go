package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event represents a domain occurrence broadcast to interested handlers.
// It is immutable once published. EventID identifies the publish call, not
// the business operation; idempotency keys are derived separately from Data.
type Event struct {
	// EventID is a unique identifier for this publish call.
	EventID uuid.UUID `json:"event_id"`

	// Name is the event name, conventionally "<module>:<entity>.<action>".
	Name string `json:"name"`

	// Data contains the event payload serialized as JSON.
	Data json.RawMessage `json:"data"`

	// SourceModule is the module that published the event.
	SourceModule string `json:"source_module"`

	// OccurredAt is the timestamp when the event was published.
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent creates an Event with the given name and payload. The payload is
// serialized to JSON at creation time so handlers cannot observe later
// mutations of the caller's value.
func NewEvent(name string, payload any, sourceModule string) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{
		EventID:      uuid.New(),
		Name:         name,
		Data:         data,
		SourceModule: sourceModule,
		OccurredAt:   time.Now().UTC(),
	}, nil
}

// UnmarshalData decodes the event payload into the provided structure.
func (e Event) UnmarshalData(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Handler defines a module's reaction to a named event.
// Returning an error marks the attempt as failed and subject to retry.
type Handler interface {
	// Handle processes the given event within the provided context.
	// The context carries the per-attempt timeout.
	Handle(ctx context.Context, evt Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, evt Event) error

// Handle implements Handler.
func (fn HandlerFunc) Handle(ctx context.Context, evt Event) error {
	return fn(ctx, evt)
}
