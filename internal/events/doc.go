// Package events implements the inter-module event bus.
//
// Modules publish domain events (e.g. "projects:project.created") without
// knowing which other modules react to them. Each registered handler runs
// in its own goroutine under its own timeout and retry policy, and an
// idempotency store prevents a redelivered event from duplicating side
// effects. Handler failures are logged and surfaced to an Observer but are
// never propagated to the publisher: event emission failure must not break
// the business operation that triggered it.
//
// The primary components are:
// - Event: an immutable record describing a domain occurrence
// - Handler / HandlerDescriptor: a module's reaction to a named event
// - Registry: the event name -> handler descriptor mapping
// - Bus: the publish entry point and per-handler dispatch loop
package events
