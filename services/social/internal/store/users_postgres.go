package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserStore persists profiles and the trust ledger in Postgres.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

const userColumns = `id, display_name, role, trust, dark_mode, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.DisplayName, &u.Role, &u.Trust, &u.DarkMode, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *PostgresUserStore) Ensure(ctx context.Context, id, displayName string) (User, bool, error) {
	// xmax = 0 only for freshly inserted rows.
	const q = `
INSERT INTO users (id, display_name) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE
    SET display_name = CASE WHEN users.display_name = '' THEN EXCLUDED.display_name ELSE users.display_name END
RETURNING ` + userColumns + `, (xmax = 0) AS inserted;`
	var u User
	var inserted bool
	err := s.pool.QueryRow(ctx, q, id, displayName).
		Scan(&u.ID, &u.DisplayName, &u.Role, &u.Trust, &u.DarkMode, &u.CreatedAt, &inserted)
	if err != nil {
		return User{}, false, err
	}
	return u, inserted, nil
}

func (s *PostgresUserStore) Get(ctx context.Context, id string) (User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *PostgresUserStore) SetDarkMode(ctx context.Context, id string, on bool) (User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`UPDATE users SET dark_mode = $2 WHERE id = $1 RETURNING `+userColumns, id, on))
}

func (s *PostgresUserStore) SetRole(ctx context.Context, id, role string) error {
	const q = `
INSERT INTO users (id, role) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET role = EXCLUDED.role;`
	_, err := s.pool.Exec(ctx, q, id, role)
	return err
}

func (s *PostgresUserStore) AddTrust(ctx context.Context, userID string, delta int, eventKey, reason string) (bool, int, error) {
	if eventKey == "" {
		eventKey = uuid.NewString()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`INSERT INTO trust_events (event_key, user_id, delta, reason) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (event_key) DO NOTHING`,
		eventKey, userID, delta, reason)
	if err != nil {
		return false, 0, err
	}
	if tag.RowsAffected() == 0 {
		score, err := s.Trust(ctx, userID)
		return false, score, err
	}

	var score int
	err = tx.QueryRow(ctx,
		`INSERT INTO users (id, trust) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET trust = users.trust + EXCLUDED.trust
		 RETURNING trust`,
		userID, delta).Scan(&score)
	if err != nil {
		return false, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, 0, err
	}
	return true, score, nil
}

func (s *PostgresUserStore) Trust(ctx context.Context, userID string) (int, error) {
	var score int
	err := s.pool.QueryRow(ctx, `SELECT trust FROM users WHERE id = $1`, userID).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return score, err
}
