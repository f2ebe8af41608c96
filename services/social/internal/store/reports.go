package store

import (
	"context"
	"time"
)

const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// Report is append-only except for PenaltyApplied, which flips once the
// trust penalty for the reported author has been recorded.
type Report struct {
	ID             string    `json:"id"`
	TargetType     string    `json:"target_type"`
	TargetID       string    `json:"target_id"`
	TargetAuthorID string    `json:"target_author_id"`
	ReporterID     string    `json:"reporter_id"`
	Reason         string    `json:"reason"`
	PenaltyApplied bool      `json:"penalty_applied"`
	CreatedAt      time.Time `json:"created_at"`
}

type ReportStore interface {
	Append(ctx context.Context, r Report) (Report, error)
	Get(ctx context.Context, id string) (Report, error)
	// List returns up to limit reports, newest first.
	List(ctx context.Context, limit int) ([]Report, error)
	MarkPenaltyApplied(ctx context.Context, id string) error
	// ListPending returns reports whose penalty is not yet applied, oldest first.
	ListPending(ctx context.Context, limit int) ([]Report, error)
}
