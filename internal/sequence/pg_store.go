package sequence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgCounterStore keeps one row per (scope, period key) so increment
// contention stays local to a scope.
type PgCounterStore struct {
	pool *pgxpool.Pool
}

func NewPgCounterStore(pool *pgxpool.Pool) *PgCounterStore {
	return &PgCounterStore{pool: pool}
}

// Increment upserts the counter row and returns the new value in one atomic
// statement. It runs on the pool, not inside any caller transaction, so a
// rolled-back booking or invoice never needs to reclaim its number.
func (s *PgCounterStore) Increment(ctx context.Context, scope, periodKey string) (int64, error) {
	var value int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sequence_counters (scope, period_key, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (scope, period_key) DO UPDATE
		SET last_value = sequence_counters.last_value + 1
		RETURNING last_value
	`, scope, periodKey).Scan(&value)
	return value, err
}
