package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Executor runs compiled scalar plans against the shared pool.
type Executor struct {
	pool RowQuerier
}

// NewExecutor wraps a pool (or any RowQuerier) for plan execution.
func NewExecutor(pool RowQuerier) *Executor {
	return &Executor{pool: pool}
}

// ScalarInt implements the orchestrator's query seam.
func (e *Executor) ScalarInt(ctx context.Context, sql string, args ...any) (int64, error) {
	return ScalarInt(ctx, e.pool, sql, args...)
}

// RowQuerier is the read seam the executor needs; *pgxpool.Pool satisfies it.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ScalarInt executes a scalar aggregate query and returns its single integer.
// An empty result set or a NULL scalar yields 0. Database errors propagate;
// coercion to the sentinel reply happens only at the orchestrator boundary.
func ScalarInt(ctx context.Context, q RowQuerier, sql string, args ...any) (int64, error) {
	var value *int64
	err := q.QueryRow(ctx, sql, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("scalar query: %w", err)
	}
	if value == nil {
		return 0, nil
	}
	return *value, nil
}
