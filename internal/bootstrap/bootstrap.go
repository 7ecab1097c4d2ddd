// Package bootstrap feeds every module's static handler list into the
// event registry exactly once at process start.
package bootstrap

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/harborcrm/harbor/internal/events"
)

// ModuleHandlers is a module's exported handler list.
type ModuleHandlers struct {
	// Module is the owning module's name, used for deterministic
	// registration order and failure reporting.
	Module string

	// Handlers are the module's event handler descriptors.
	Handlers []events.HandlerDescriptor
}

// Loader registers module handler lists into a registry. Load runs at most
// once per Loader; accidental duplicate invocation is a no-op, and the
// registry's replace-on-duplicate-key semantics make even a fresh Loader's
// re-registration safe.
type Loader struct {
	registry       *events.Registry
	logger         *slog.Logger
	defaultTimeout time.Duration
	defaultRetry   events.RetryPolicy
	once           sync.Once
}

// LoaderOption customizes Loader construction.
type LoaderOption func(*Loader)

// WithDescriptorDefaults sets the timeout and retry policy applied to
// descriptors that leave them unset, typically from configuration.
func WithDescriptorDefaults(timeout time.Duration, retry events.RetryPolicy) LoaderOption {
	return func(l *Loader) {
		l.defaultTimeout = timeout
		l.defaultRetry = retry
	}
}

// NewLoader creates a Loader targeting the given registry.
func NewLoader(registry *events.Registry, logger *slog.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		registry:       registry,
		logger:         logger.With("component", "event_bootstrap"),
		defaultTimeout: 5 * time.Second,
		defaultRetry:   events.DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load registers every module's descriptors, iterating modules
// alphabetically by name so registration is reproducible across restarts.
// A module whose list is malformed is logged and skipped in full; the
// remaining modules are still registered. A bus with some consumers missing
// is still better than a crashed server.
func (l *Loader) Load(modules []ModuleHandlers) {
	l.once.Do(func() {
		l.load(modules)
	})
}

func (l *Loader) load(modules []ModuleHandlers) {
	sorted := make([]ModuleHandlers, len(modules))
	copy(sorted, modules)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Module < sorted[j].Module
	})

	registered := 0
	for _, m := range sorted {
		m.Handlers = l.applyDefaults(m.Handlers)
		if err := validateModule(m); err != nil {
			l.logger.Error("skipping module with malformed handler list",
				"module", m.Module,
				"error", err)
			continue
		}
		for _, d := range m.Handlers {
			if err := l.registry.Register(d); err != nil {
				// Unreachable after validateModule, but a
				// registration failure still must not abort
				// the remaining modules.
				l.logger.Error("failed to register event handler",
					"module", m.Module,
					"event_name", d.EventName,
					"handler_id", d.HandlerID,
					"error", err)
				continue
			}
			registered++
		}
	}

	l.logger.Info("event handlers bootstrapped",
		"module_count", len(sorted),
		"handler_count", registered,
		"event_names", l.registry.EventNames())
}

// applyDefaults fills in the configured timeout and retry policy for
// descriptors that leave them unset. Explicit per-descriptor values always
// win.
func (l *Loader) applyDefaults(handlers []events.HandlerDescriptor) []events.HandlerDescriptor {
	out := make([]events.HandlerDescriptor, len(handlers))
	copy(out, handlers)
	for i := range out {
		if out[i].Timeout == 0 {
			out[i].Timeout = l.defaultTimeout
		}
		if out[i].Retry.MaxAttempts == 0 && out[i].Retry.Backoff == 0 {
			out[i].Retry = l.defaultRetry
		}
	}
	return out
}

// validateModule checks a module's full list before registering any of it,
// so a malformed list never half-registers a module.
func validateModule(m ModuleHandlers) error {
	for _, d := range m.Handlers {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}
