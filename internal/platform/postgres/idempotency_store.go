package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/harborcrm/harbor/internal/idempotency"
	"github.com/harborcrm/harbor/internal/platform/logger"
)

// IdempotencyStore implements idempotency.Store on PostgreSQL. The
// (handler_id, idempotency_key) primary key makes duplicate marks no-ops at
// the database level, so concurrent dispatches cannot record a completion
// twice.
type IdempotencyStore struct {
	db DBTX
}

// NewIdempotencyStore creates an IdempotencyStore using the given database
// connection or transaction.
func NewIdempotencyStore(db DBTX) *IdempotencyStore {
	return &IdempotencyStore{
		db: db,
	}
}

// HasCompleted implements idempotency.Store.
func (s *IdempotencyStore) HasCompleted(ctx context.Context, handlerID, key string) (bool, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM event_idempotency
			WHERE handler_id = $1 AND idempotency_key = $2
		)
	`

	var completed bool
	err := s.db.QueryRowContext(ctx, query, handlerID, key).Scan(&completed)
	if err != nil {
		log.Error("failed to query idempotency record",
			"handler_id", handlerID,
			"error", err)
		return false, fmt.Errorf("failed to query idempotency record: %w", err)
	}

	return completed, nil
}

// MarkCompleted implements idempotency.Store. The first insert wins;
// conflicting inserts are silently ignored.
func (s *IdempotencyStore) MarkCompleted(ctx context.Context, handlerID, key string) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO event_idempotency (handler_id, idempotency_key, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (handler_id, idempotency_key) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query, handlerID, key, time.Now().UTC())
	if err != nil {
		log.Error("failed to save idempotency record",
			"handler_id", handlerID,
			"error", err)
		return fmt.Errorf("failed to save idempotency record: %w", err)
	}

	return nil
}

var _ idempotency.Store = (*IdempotencyStore)(nil)
