// Package redis provides a Redis-backed idempotency store for the event
// bus, for deployments where completion records must be shared with a
// future second process or survive restarts without a relational database.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/harborcrm/harbor/internal/idempotency"
)

// keyPrefix namespaces idempotency records in a shared Redis instance.
const keyPrefix = "harbor:event_idempotency:"

// IdempotencyStore implements idempotency.Store on Redis. SETNX makes
// MarkCompleted atomic: concurrent marks for the same pair record exactly
// one completion.
type IdempotencyStore struct {
	client *goredis.Client
}

// NewIdempotencyStore creates an IdempotencyStore using the given client.
func NewIdempotencyStore(client *goredis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
	}
}

func recordKey(handlerID, key string) string {
	return keyPrefix + handlerID + ":" + key
}

// HasCompleted implements idempotency.Store.
func (s *IdempotencyStore) HasCompleted(ctx context.Context, handlerID, key string) (bool, error) {
	n, err := s.client.Exists(ctx, recordKey(handlerID, key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to query idempotency record: %w", err)
	}
	return n > 0, nil
}

// MarkCompleted implements idempotency.Store. Records never expire; the
// domain events are low-volume administrative events.
func (s *IdempotencyStore) MarkCompleted(ctx context.Context, handlerID, key string) error {
	completedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.client.SetNX(ctx, recordKey(handlerID, key), completedAt, 0).Err(); err != nil {
		return fmt.Errorf("failed to save idempotency record: %w", err)
	}
	return nil
}

var _ idempotency.Store = (*IdempotencyStore)(nil)
