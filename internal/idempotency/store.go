// Package idempotency records which (handler, key) pairs have already
// completed, so a redelivered event does not duplicate side effects.
package idempotency

import "context"

// Store answers "was (handlerID, key) already completed?" and records
// completion. Implementations must be safe for concurrent use; duplicate
// MarkCompleted calls for the same pair are harmless no-ops.
//
// The pair only needs to prevent duplicate dispatch under retry, not guard
// against concurrent double-publish races: publishes of the same business
// event are serialized by the publisher.
type Store interface {
	// HasCompleted reports whether the handler already completed the
	// business operation identified by key.
	HasCompleted(ctx context.Context, handlerID, key string) (bool, error)

	// MarkCompleted records the completion. Recording an already
	// recorded pair is not an error.
	MarkCompleted(ctx context.Context, handlerID, key string) error
}
