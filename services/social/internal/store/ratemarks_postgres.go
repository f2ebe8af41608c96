package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRateMarkStore does the check-and-write as one upsert; the
// conflicting row is locked, so concurrent callers for one key serialize.
type PostgresRateMarkStore struct {
	pool *pgxpool.Pool
}

func NewPostgresRateMarkStore(pool *pgxpool.Pool) *PostgresRateMarkStore {
	return &PostgresRateMarkStore{pool: pool}
}

func (s *PostgresRateMarkStore) Mark(ctx context.Context, userID, action string, now time.Time, window time.Duration) (bool, error) {
	const q = `
INSERT INTO rate_limits (user_id, action, last_at) VALUES ($1, $2, $3)
ON CONFLICT (user_id, action) DO UPDATE SET last_at = EXCLUDED.last_at
    WHERE rate_limits.last_at <= $4
RETURNING last_at;`
	var last time.Time
	err := s.pool.QueryRow(ctx, q, userID, action, now, now.Add(-window)).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *PostgresRateMarkStore) Release(ctx context.Context, userID, action string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM rate_limits WHERE user_id = $1 AND action = $2 AND last_at = $3`,
		userID, action, at)
	return err
}
