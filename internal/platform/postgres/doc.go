// Package postgres provides PostgreSQL-backed storage implementations.
//
// The idempotency store persists event handler completion records so that
// idempotency protection survives process restarts.
package postgres
