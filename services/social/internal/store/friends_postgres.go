package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFriendStore persists requests and friendship edges in Postgres.
type PostgresFriendStore struct {
	pool *pgxpool.Pool
}

func NewPostgresFriendStore(pool *pgxpool.Pool) *PostgresFriendStore {
	return &PostgresFriendStore{pool: pool}
}

const requestColumns = `id, from_id, to_id, status, created_at`

func scanRequest(row pgx.Row) (FriendRequest, error) {
	var r FriendRequest
	err := row.Scan(&r.ID, &r.From, &r.To, &r.Status, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FriendRequest{}, ErrNotFound
	}
	return r, err
}

func scanFriendship(row pgx.Row) (Friendship, error) {
	var f Friendship
	err := row.Scan(&f.ID, &f.From, &f.To, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Friendship{}, ErrNotFound
	}
	return f, err
}

func (s *PostgresFriendStore) UpsertRequest(ctx context.Context, from, to string, now time.Time) (FriendRequest, error) {
	const q = `
INSERT INTO friend_requests (id, from_id, to_id, status, created_at) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, created_at = EXCLUDED.created_at
RETURNING ` + requestColumns
	return scanRequest(s.pool.QueryRow(ctx, q, RequestID(from, to), from, to, RequestPending, now))
}

func (s *PostgresFriendStore) GetRequest(ctx context.Context, id string) (FriendRequest, error) {
	return scanRequest(s.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM friend_requests WHERE id = $1`, id))
}

func (s *PostgresFriendStore) Accept(ctx context.Context, id string, now time.Time) (Friendship, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Friendship{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from, to string
	err = tx.QueryRow(ctx,
		`UPDATE friend_requests SET status = $2 WHERE id = $1 RETURNING from_id, to_id`,
		id, RequestAccepted).Scan(&from, &to)
	if errors.Is(err, pgx.ErrNoRows) {
		return Friendship{}, ErrNotFound
	}
	if err != nil {
		return Friendship{}, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO friends (id, from_id, to_id, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		id, from, to, now); err != nil {
		return Friendship{}, err
	}
	f, err := scanFriendship(tx.QueryRow(ctx,
		`SELECT id, from_id, to_id, created_at FROM friends WHERE id = $1`, id))
	if err != nil {
		return Friendship{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Friendship{}, err
	}
	return f, nil
}

func (s *PostgresFriendStore) ListIncoming(ctx context.Context, userID string) ([]FriendRequest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+requestColumns+` FROM friend_requests
		 WHERE to_id = $1 AND status = $2 ORDER BY created_at ASC, id ASC`,
		userID, RequestPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]FriendRequest, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresFriendStore) ListFriendships(ctx context.Context, userID string) ([]Friendship, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, from_id, to_id, created_at FROM friends
		 WHERE from_id = $1 OR to_id = $1 ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Friendship, 0)
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
