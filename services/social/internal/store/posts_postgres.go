package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPostStore persists posts and likes in Postgres.
type PostgresPostStore struct {
	pool *pgxpool.Pool
}

func NewPostgresPostStore(pool *pgxpool.Pool) *PostgresPostStore {
	return &PostgresPostStore{pool: pool}
}

const postColumns = `id, author_id, text, likes, visibility, created_at`

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.Text, &p.Likes, &p.Visibility, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	return p, err
}

func (s *PostgresPostStore) Create(ctx context.Context, p Post) (Post, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
	p.Likes = 0

	const q = `INSERT INTO posts (id, author_id, text, likes, visibility, created_at)
	           VALUES ($1, $2, $3, 0, $4, $5)`
	if _, err := s.pool.Exec(ctx, q, p.ID, p.AuthorID, p.Text, p.Visibility, p.CreatedAt); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return Post{}, ErrConflict
		}
		return Post{}, err
	}
	return p, nil
}

func (s *PostgresPostStore) Get(ctx context.Context, id string) (Post, error) {
	return scanPost(s.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

func (s *PostgresPostStore) List(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresPostStore) Like(ctx context.Context, postID, userID string, now time.Time) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`INSERT INTO likes (post_id, user_id, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID, now)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return false, ErrNotFound
		}
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if _, err := tx.Exec(ctx, `UPDATE posts SET likes = likes + 1 WHERE id = $1`, postID); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
