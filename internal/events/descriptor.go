package events

import (
	"fmt"
	"time"
)

// RetryPolicy controls how failed delivery attempts are retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Must be at least 1.
	MaxAttempts int

	// Backoff is the delay before the second attempt. With Exponential
	// set it doubles after every further failure.
	Backoff time.Duration

	// Exponential selects exponential backoff (Backoff * 2^(attempt-1))
	// instead of a fixed delay.
	Exponential bool

	// MaxDelay caps the computed backoff. Zero means no cap.
	MaxDelay time.Duration
}

// DefaultRetryPolicy is applied at bootstrap to descriptors that leave
// their policy zero-valued.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	Backoff:     250 * time.Millisecond,
	Exponential: true,
	MaxDelay:    30 * time.Second,
}

// HandlerDescriptor binds a handler function to an event name together with
// its delivery policy. (Module, HandlerID) is unique per event name;
// registering a duplicate pair replaces the prior registration.
type HandlerDescriptor struct {
	// EventName is the event this handler subscribes to.
	EventName string

	// Module is the owning module's name, e.g. "tasks".
	Module string

	// HandlerID identifies the handler within its module.
	HandlerID string

	// Handler is the function invoked per delivery attempt.
	Handler Handler

	// Retry controls re-delivery after failed attempts.
	Retry RetryPolicy

	// Timeout bounds each individual attempt. Must be positive.
	Timeout time.Duration

	// IdempotencyKey derives the business-operation key from an event.
	// Nil (or a returned empty string) means the handler is not
	// idempotent and runs on every delivery.
	IdempotencyKey func(Event) string
}

// Validate checks the descriptor against the registration rules.
// All violations wrap ErrInvalidPolicy or ErrNilHandler so callers can
// classify them with errors.Is.
func (d HandlerDescriptor) Validate() error {
	if d.EventName == "" {
		return fmt.Errorf("%w: event name must not be empty", ErrInvalidPolicy)
	}
	if d.Module == "" || d.HandlerID == "" {
		return fmt.Errorf("%w: module and handler id must not be empty", ErrInvalidPolicy)
	}
	if d.Handler == nil {
		return fmt.Errorf("%w: %s/%s", ErrNilHandler, d.Module, d.HandlerID)
	}
	if d.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d",
			ErrInvalidPolicy, d.Retry.MaxAttempts)
	}
	if d.Retry.Backoff < 0 {
		return fmt.Errorf("%w: backoff must not be negative, got %s",
			ErrInvalidPolicy, d.Retry.Backoff)
	}
	if d.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s",
			ErrInvalidPolicy, d.Timeout)
	}
	return nil
}
