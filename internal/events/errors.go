package events

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common errors surfaced by the event bus.
var (
	// ErrInvalidPolicy indicates a handler descriptor with an unusable
	// retry policy or timeout. Surfaced at registration time.
	ErrInvalidPolicy = errors.New("invalid handler policy")
	// ErrNilHandler indicates a descriptor with no handler function.
	ErrNilHandler = errors.New("handler must not be nil")
	// ErrBusClosed is returned by Publish after the bus has been closed.
	ErrBusClosed = errors.New("event bus is closed")
	// ErrHandlerTimeout marks a delivery attempt that exceeded its timeout.
	ErrHandlerTimeout = errors.New("event handler timed out")
	// ErrHandlerPanic marks a delivery attempt that panicked.
	ErrHandlerPanic = errors.New("event handler panicked")
	// ErrHandlerExhausted marks a delivery whose retries are used up.
	ErrHandlerExhausted = errors.New("event handler retries exhausted")
)

// Outcome classifies the result of a single delivery attempt.
type Outcome int

const (
	// OutcomeSuccess means the handler returned without error.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure means the handler returned an error or panicked.
	OutcomeFailure
	// OutcomeTimeout means the attempt exceeded the handler's timeout.
	OutcomeTimeout
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// DeliveryError describes a failed delivery attempt. It is reported to the
// bus Observer and the log; it is never returned to the publisher.
type DeliveryError struct {
	EventName string
	EventID   uuid.UUID
	Module    string
	HandlerID string
	Attempt   int
	Outcome   Outcome
	// Exhausted is true when this was the final attempt and the delivery
	// has been given up on.
	Exhausted bool
	Err       error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	if e.Exhausted {
		return fmt.Sprintf("event %s handler %s/%s exhausted after %d attempts: %v",
			e.EventName, e.Module, e.HandlerID, e.Attempt, e.Err)
	}
	return fmt.Sprintf("event %s handler %s/%s attempt %d %s: %v",
		e.EventName, e.Module, e.HandlerID, e.Attempt, e.Outcome, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *DeliveryError) Unwrap() error {
	return e.Err
}
