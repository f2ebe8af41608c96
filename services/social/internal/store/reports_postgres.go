package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresReportStore persists moderation reports in Postgres.
type PostgresReportStore struct {
	pool *pgxpool.Pool
}

func NewPostgresReportStore(pool *pgxpool.Pool) *PostgresReportStore {
	return &PostgresReportStore{pool: pool}
}

const reportColumns = `id, target_type, target_id, target_author_id, reporter_id, reason, penalty_applied, created_at`

func scanReport(row pgx.Row) (Report, error) {
	var r Report
	err := row.Scan(&r.ID, &r.TargetType, &r.TargetID, &r.TargetAuthorID, &r.ReporterID,
		&r.Reason, &r.PenaltyApplied, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	return r, err
}

func (s *PostgresReportStore) Append(ctx context.Context, r Report) (Report, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO reports (` + reportColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := s.pool.Exec(ctx, q, r.ID, r.TargetType, r.TargetID, r.TargetAuthorID,
		r.ReporterID, r.Reason, r.PenaltyApplied, r.CreatedAt); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return Report{}, ErrConflict
		}
		return Report{}, err
	}
	return r, nil
}

func (s *PostgresReportStore) Get(ctx context.Context, id string) (Report, error) {
	return scanReport(s.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
}

func (s *PostgresReportStore) List(ctx context.Context, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 1000
	}
	return s.query(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

func (s *PostgresReportStore) MarkPenaltyApplied(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE reports SET penalty_applied = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresReportStore) ListPending(ctx context.Context, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.query(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE NOT penalty_applied
		 ORDER BY created_at ASC, id ASC LIMIT $1`, limit)
}

func (s *PostgresReportStore) query(ctx context.Context, q string, args ...any) ([]Report, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Report, 0)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
