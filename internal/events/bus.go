package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/harborcrm/harbor/internal/idempotency"
)

// Bus is the process-wide publish/subscribe mechanism. Publish fans an
// event out to every handler registered for its name; each handler runs in
// its own goroutine under its own timeout and retry policy. Dispatch work
// is supervised: Close drains in-flight deliveries before shutdown.
type Bus struct {
	registry *Registry
	store    idempotency.Store
	logger   *slog.Logger
	observer Observer
	keys     *keyGuard

	// ctx governs the lifetime of dispatch work. Deliveries deliberately
	// do not inherit the publisher's context: the publishing request may
	// finish (and its context be canceled) while handlers are retrying.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards closed and orders wg.Add against Close's wg.Wait: a
	// publish holds the read lock from the closed check through the
	// dispatch launches, so once Close flips the flag under the write
	// lock no further wg.Add can slip past a running Wait.
	mu     sync.RWMutex
	closed bool
}

// BusOption customizes Bus construction.
type BusOption func(*Bus)

// WithObserver replaces the default log-based delivery observer.
func WithObserver(o Observer) BusOption {
	return func(b *Bus) {
		b.observer = o
	}
}

// NewBus creates a Bus dispatching to handlers from registry and recording
// idempotent completions in store. A nil store falls back to an in-memory
// store.
func NewBus(registry *Registry, store idempotency.Store, logger *slog.Logger, opts ...BusOption) *Bus {
	if store == nil {
		store = idempotency.NewMemoryStore()
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bus{
		registry: registry,
		store:    store,
		logger:   logger.With("component", "event_bus"),
		keys:     newKeyGuard(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.observer == nil {
		b.observer = slogObserver{logger: b.logger}
	}
	return b
}

// Publish serializes the payload into an Event and dispatches it to every
// handler registered for eventName. It returns once dispatch has been
// started for all handlers; it never waits for handler completion and never
// returns handler errors. Publishing an event with zero subscribers is a
// normal, silent no-op.
//
// The only errors are programming errors: an unserializable payload, or
// publishing after Close.
func (b *Bus) Publish(ctx context.Context, eventName string, payload any, sourceModule string) error {
	evt, err := NewEvent(eventName, payload, sourceModule)
	if err != nil {
		return fmt.Errorf("failed to encode event %s payload: %w", eventName, err)
	}
	return b.PublishEvent(ctx, evt)
}

// PublishEvent dispatches an already constructed Event. See Publish.
func (b *Bus) PublishEvent(_ context.Context, evt Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	descriptors := b.registry.Lookup(evt.Name)
	if len(descriptors) == 0 {
		b.logger.Debug("no handlers registered for event",
			"event_name", evt.Name,
			"event_id", evt.EventID,
			"source_module", evt.SourceModule)
		return nil
	}

	b.logger.Debug("dispatching event",
		"event_name", evt.Name,
		"event_id", evt.EventID,
		"source_module", evt.SourceModule,
		"handler_count", len(descriptors))

	for _, d := range descriptors {
		b.wg.Add(1)
		go b.dispatch(d, evt)
	}
	return nil
}

// Close stops accepting publishes and waits for in-flight deliveries,
// bounded by ctx. On expiry the bus context is canceled so deliveries
// abandon their backoff waits and current attempts.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.cancel()
		return nil
	case <-ctx.Done():
		b.cancel()
		<-done
		return fmt.Errorf("event bus shutdown interrupted: %w", ctx.Err())
	}
}

// dispatch runs the full delivery loop for a single handler descriptor:
// idempotency check, attempts under timeout, backoff between retries, and
// outcome reporting. It never panics and never propagates errors; failures
// of one handler are invisible to the publisher and to other handlers.
func (b *Bus) dispatch(d HandlerDescriptor, evt Event) {
	defer b.wg.Done()

	log := b.logger.With(
		"event_name", evt.Name,
		"event_id", evt.EventID,
		"module", d.Module,
		"handler_id", d.HandlerID,
	)

	var key string
	if d.IdempotencyKey != nil {
		key = d.IdempotencyKey(evt)
	}
	if key != "" {
		// Serialize deliveries of the same (handler, key) pair so two
		// quick publishes of the same business event cannot both pass
		// the completion check before either marks it.
		guardKey := d.HandlerID + "\x00" + key
		for {
			ch, owner := b.keys.acquire(guardKey)
			if owner {
				defer b.keys.release(guardKey, ch)
				break
			}
			select {
			case <-ch:
			case <-b.ctx.Done():
				return
			}
		}

		completed, err := b.store.HasCompleted(b.ctx, d.HandlerID, key)
		if err != nil {
			// An unreachable store must not suppress delivery:
			// at-least-once beats at-most-once here, and the
			// handler's own idempotency key still guards the
			// committing side effect on the next redelivery.
			log.Error("idempotency lookup failed, proceeding with delivery",
				"idempotency_key", key,
				"error", err)
		} else if completed {
			b.observer.DeliverySkipped(evt, d, key)
			return
		}
	}

	var lastErr error
	var lastOutcome Outcome
	for attempt := 1; attempt <= d.Retry.MaxAttempts; attempt++ {
		outcome, err := b.runAttempt(d, evt)
		if outcome == OutcomeSuccess {
			if key != "" {
				if markErr := b.store.MarkCompleted(b.ctx, d.HandlerID, key); markErr != nil {
					log.Error("failed to record idempotent completion",
						"idempotency_key", key,
						"error", markErr)
				}
			}
			b.observer.DeliverySucceeded(evt, d, attempt)
			return
		}

		lastErr = err
		lastOutcome = outcome
		b.observer.DeliveryFailed(evt, d, &DeliveryError{
			EventName: evt.Name,
			EventID:   evt.EventID,
			Module:    d.Module,
			HandlerID: d.HandlerID,
			Attempt:   attempt,
			Outcome:   outcome,
			Err:       err,
		})

		if !ShouldRetry(d.Retry, attempt, outcome) {
			break
		}

		delay := NextDelay(d.Retry, attempt)
		select {
		case <-b.ctx.Done():
			log.Warn("bus shutting down, abandoning remaining retries",
				"attempt", attempt)
			return
		case <-time.After(delay):
		}
	}

	b.observer.DeliveryFailed(evt, d, &DeliveryError{
		EventName: evt.Name,
		EventID:   evt.EventID,
		Module:    d.Module,
		HandlerID: d.HandlerID,
		Attempt:   d.Retry.MaxAttempts,
		Outcome:   lastOutcome,
		Exhausted: true,
		Err:       fmt.Errorf("%w: %w", ErrHandlerExhausted, lastErr),
	})
}

// runAttempt executes a single handler invocation under the descriptor's
// timeout. A panicking handler is recovered and classified as a failure.
// On timeout the in-flight call is abandoned, not interrupted; only its
// result is ignored.
func (b *Bus) runAttempt(d HandlerDescriptor, evt Event) (Outcome, error) {
	ctx, cancel := context.WithTimeout(b.ctx, d.Timeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				result <- fmt.Errorf("%w: %v", ErrHandlerPanic, rec)
			}
		}()
		result <- d.Handler.Handle(ctx, evt)
	}()

	select {
	case <-ctx.Done():
		return OutcomeTimeout, fmt.Errorf("%w after %s", ErrHandlerTimeout, d.Timeout)
	case err := <-result:
		if err != nil {
			return OutcomeFailure, err
		}
		return OutcomeSuccess, nil
	}
}
