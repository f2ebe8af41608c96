package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCommentStore persists comments in Postgres.
type PostgresCommentStore struct {
	pool *pgxpool.Pool
}

func NewPostgresCommentStore(pool *pgxpool.Pool) *PostgresCommentStore {
	return &PostgresCommentStore{pool: pool}
}

const commentColumns = `id, post_id, parent_id, author_id, text, created_at`

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.ParentID, &c.AuthorID, &c.Text, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	return c, err
}

func (s *PostgresCommentStore) Create(ctx context.Context, c Comment) (Comment, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	const q = `INSERT INTO comments (id, post_id, parent_id, author_id, text, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.pool.Exec(ctx, q, c.ID, c.PostID, c.ParentID, c.AuthorID, c.Text, c.CreatedAt); err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return Comment{}, ErrConflict
		case pgForeignKeyViolation:
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return c, nil
}

func (s *PostgresCommentStore) Get(ctx context.Context, id string) (Comment, error) {
	return scanComment(s.pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
}

func (s *PostgresCommentStore) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE post_id = $1 ORDER BY created_at ASC, id ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
