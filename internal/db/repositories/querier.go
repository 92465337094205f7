// Package repositories implements the data access layer (repository pattern).
// Each repository type encapsulates all database queries for a domain entity.
// Handlers and services never issue SQL directly — all database access goes
// through this layer, which makes query logic testable in isolation.
//
// Multi-step provisioning flows (sign-up, invite acceptance) must apply all
// their writes atomically, so every repository can be rebound to an open
// transaction with WithTx. The zero-cost Querier interface is satisfied by
// both *sql.DB and *sql.Tx.
package repositories

import (
	"context"
	"database/sql"
)

// Querier is the subset of *sql.DB / *sql.Tx the repositories need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)
