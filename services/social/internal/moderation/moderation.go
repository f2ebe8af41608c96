// Package moderation takes reports against content and turns them into trust
// penalties for the content's author.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/socialtrust/internal/platform/logging"
	"github.com/example/socialtrust/services/social/internal/events"
	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
	"github.com/example/socialtrust/services/social/internal/trust"
)

// PenaltyPending is published when a report is stored but its penalty is not.
const PenaltyPending = "moderation.penalty_pending"

const maxReasonLen = 1000

type Service struct {
	reports  store.ReportStore
	posts    store.PostStore
	comments store.CommentStore
	users    store.UserStore
	ledger   *trust.Ledger
	policy   policy.Policy
	obs      events.Observer
	log      *zap.Logger
	now      func() time.Time
}

func New(st store.Stores, ledger *trust.Ledger, p policy.Policy, obs events.Observer, log *zap.Logger) *Service {
	if obs == nil {
		obs = events.Nop{}
	}
	return &Service{
		reports:  st.Reports,
		posts:    st.Posts,
		comments: st.Comments,
		users:    st.Users,
		ledger:   ledger,
		policy:   p,
		obs:      obs,
		log:      logging.Named(log, "moderation"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type ReportInput struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	// TargetAuthorID is optional; when set it must match the stored author.
	TargetAuthorID string `json:"target_author_id,omitempty"`
	ReporterID     string `json:"-"`
	Reason         string `json:"reason"`
}

// FileReport appends a report and then penalizes the target's author. If the
// report is stored but the penalty is not, the returned report is valid and
// the error is a *policy.PartialFailureError naming the pending step.
func (s *Service) FileReport(ctx context.Context, in ReportInput) (store.Report, error) {
	in.TargetType = strings.TrimSpace(in.TargetType)
	in.TargetID = strings.TrimSpace(in.TargetID)
	in.Reason = strings.TrimSpace(in.Reason)
	if in.TargetType != store.TargetPost && in.TargetType != store.TargetComment {
		return store.Report{}, fmt.Errorf("%w: target_type must be post or comment", policy.ErrInvalidArgument)
	}
	if in.TargetID == "" || strings.TrimSpace(in.ReporterID) == "" {
		return store.Report{}, fmt.Errorf("%w: target_id and reporter are required", policy.ErrInvalidArgument)
	}
	if len([]rune(in.Reason)) > maxReasonLen {
		return store.Report{}, fmt.Errorf("%w: reason is too long", policy.ErrInvalidArgument)
	}

	author, err := s.targetAuthor(ctx, in.TargetType, in.TargetID)
	if err != nil {
		return store.Report{}, err
	}
	if in.TargetAuthorID != "" && in.TargetAuthorID != author {
		return store.Report{}, fmt.Errorf("%w: target_author_id does not match the content", policy.ErrInvalidArgument)
	}

	r, err := s.reports.Append(ctx, store.Report{
		TargetType:     in.TargetType,
		TargetID:       in.TargetID,
		TargetAuthorID: author,
		ReporterID:     in.ReporterID,
		Reason:         in.Reason,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return store.Report{}, fmt.Errorf("append report: %w", err)
	}
	s.obs.Publish(ctx, events.New(events.ReportFiled, in.ReporterID, map[string]any{
		"report_id":   r.ID,
		"target_type": r.TargetType,
		"target_id":   r.TargetID,
	}))

	repaired, err := s.applyPenalty(ctx, r)
	if err != nil {
		s.log.Warn("report penalty pending",
			zap.String("report_id", r.ID),
			zap.String("user_id", author),
			zap.Error(err))
		s.obs.Publish(ctx, events.New(PenaltyPending, author, map[string]any{"report_id": r.ID}))
		return r, &policy.PartialFailureError{
			Op:        "file report",
			Completed: "report " + r.ID,
			Pending:   "trust penalty",
			Err:       err,
		}
	}
	return repaired, nil
}

func (s *Service) targetAuthor(ctx context.Context, typ, id string) (string, error) {
	switch typ {
	case store.TargetPost:
		p, err := s.posts.Get(ctx, id)
		if err != nil {
			return "", err
		}
		return p.AuthorID, nil
	default:
		c, err := s.comments.Get(ctx, id)
		if err != nil {
			return "", err
		}
		return c.AuthorID, nil
	}
}

// applyPenalty is safe to repeat: the ledger dedups on the report key and
// the flag only ever flips to true.
func (s *Service) applyPenalty(ctx context.Context, r store.Report) (store.Report, error) {
	if _, err := s.ledger.ApplyDelta(ctx, r.TargetAuthorID, s.policy.ReportPenalty, trust.ReportKey(r.ID), trust.ReasonReport); err != nil {
		return r, err
	}
	if err := s.reports.MarkPenaltyApplied(ctx, r.ID); err != nil {
		// The penalty itself is durable; the sweep will set the flag later.
		s.log.Warn("mark penalty applied failed", zap.String("report_id", r.ID), zap.Error(err))
		return r, nil
	}
	r.PenaltyApplied = true
	return r, nil
}

// ListReports returns the newest reports. Only elevated roles may see them.
func (s *Service) ListReports(ctx context.Context, viewerID string, limit int) ([]store.Report, error) {
	if err := s.requireElevated(ctx, viewerID); err != nil {
		return nil, err
	}
	return s.reports.List(ctx, limit)
}

// RetryPenalty re-drives the penalty of one report on behalf of a moderator.
func (s *Service) RetryPenalty(ctx context.Context, viewerID, reportID string) (store.Report, error) {
	if err := s.requireElevated(ctx, viewerID); err != nil {
		return store.Report{}, err
	}
	return s.Repair(ctx, reportID)
}

// Repair applies a missing penalty. Reports already settled are returned as is.
func (s *Service) Repair(ctx context.Context, reportID string) (store.Report, error) {
	r, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return store.Report{}, err
	}
	if r.PenaltyApplied {
		return r, nil
	}
	return s.applyPenalty(ctx, r)
}

// SweepPending repairs up to limit unsettled reports and returns how many
// were settled. It stops at the first failure.
func (s *Service) SweepPending(ctx context.Context, limit int) (int, error) {
	pending, err := s.reports.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}
	settled := 0
	for _, r := range pending {
		repaired, err := s.applyPenalty(ctx, r)
		if err != nil {
			return settled, fmt.Errorf("repair report %s: %w", r.ID, err)
		}
		if repaired.PenaltyApplied {
			settled++
		}
	}
	return settled, nil
}

func (s *Service) requireElevated(ctx context.Context, viewerID string) error {
	u, err := s.users.Get(ctx, viewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: moderators only", policy.ErrForbidden)
		}
		return err
	}
	if !policy.Elevated(u.Role) {
		return fmt.Errorf("%w: moderators only", policy.ErrForbidden)
	}
	return nil
}
