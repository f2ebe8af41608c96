package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDeviceStore persists device registrations in Postgres.
type PostgresDeviceStore struct {
	pool *pgxpool.Pool
}

func NewPostgresDeviceStore(pool *pgxpool.Pool) *PostgresDeviceStore {
	return &PostgresDeviceStore{pool: pool}
}

func (s *PostgresDeviceStore) Register(ctx context.Context, d Device) (Device, error) {
	if d.Fingerprint == "" {
		d.Fingerprint = Fingerprint(d.Token)
	}
	if d.RegisteredAt.IsZero() {
		d.RegisteredAt = time.Now().UTC()
	}
	const q = `
INSERT INTO devices (user_id, fingerprint, token, platform, registered_at) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, fingerprint) DO UPDATE
    SET token = EXCLUDED.token, platform = EXCLUDED.platform, registered_at = EXCLUDED.registered_at`
	if _, err := s.pool.Exec(ctx, q, d.UserID, d.Fingerprint, d.Token, d.Platform, d.RegisteredAt); err != nil {
		return Device{}, err
	}
	return d, nil
}

func (s *PostgresDeviceStore) ListByUser(ctx context.Context, userID string) ([]Device, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, fingerprint, token, platform, registered_at FROM devices
		 WHERE user_id = $1 ORDER BY registered_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Device, 0)
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.UserID, &d.Fingerprint, &d.Token, &d.Platform, &d.RegisteredAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
