package events

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry holds the mapping from event name to the ordered list of handler
// descriptors. Reads vastly outnumber writes (writes happen at bootstrap or
// hot reload), so lookups copy the slice under a read lock and dispatch
// proceeds on the copy.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerDescriptor
	logger   *slog.Logger
}

// NewRegistry creates an empty handler registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string][]HandlerDescriptor),
		logger:   logger.With("component", "event_registry"),
	}
}

// Register validates the descriptor and inserts it, replacing any prior
// registration with the same (EventName, Module, HandlerID). Replacement
// keeps the original position so re-registration (hot reload, tests) does
// not reorder dispatch.
func (r *Registry) Register(d HandlerDescriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.handlers[d.EventName]
	for i, existing := range list {
		if existing.Module == d.Module && existing.HandlerID == d.HandlerID {
			list[i] = d
			r.logger.Debug("replaced event handler registration",
				"event_name", d.EventName,
				"module", d.Module,
				"handler_id", d.HandlerID)
			return nil
		}
	}

	r.handlers[d.EventName] = append(list, d)
	r.logger.Debug("registered event handler",
		"event_name", d.EventName,
		"module", d.Module,
		"handler_id", d.HandlerID,
		"handler_count", len(r.handlers[d.EventName]))
	return nil
}

// Lookup returns the descriptors registered for the event name in
// registration order. An event with no subscribers yields an empty slice,
// not an error. The returned slice is a copy and safe to iterate while
// registrations happen concurrently.
func (r *Registry) Lookup(eventName string) []HandlerDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.handlers[eventName]
	if len(list) == 0 {
		return nil
	}
	out := make([]HandlerDescriptor, len(list))
	copy(out, list)
	return out
}

// EventNames returns every event name with at least one registered handler.
// Used for startup logging.
func (r *Registry) EventNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
