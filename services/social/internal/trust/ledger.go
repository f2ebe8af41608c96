// Package trust applies signed trust deltas to users and derives mute status.
package trust

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/socialtrust/internal/platform/logging"
	"github.com/example/socialtrust/services/social/internal/events"
	"github.com/example/socialtrust/services/social/internal/metrics"
	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
)

// Reasons recorded with each delta.
const (
	ReasonLike   = "like"
	ReasonReport = "report"
)

// LikeKey identifies the trust credit for one like; a user liking the same
// post twice maps to the same key.
func LikeKey(postID, userID string) string {
	return "like:" + postID + ":" + userID
}

// ReportKey identifies the penalty for one report.
func ReportKey(reportID string) string {
	return "report:" + reportID
}

type Ledger struct {
	store  store.TrustStore
	policy policy.Policy
	obs    events.Observer
	log    *zap.Logger
}

func NewLedger(ts store.TrustStore, p policy.Policy, obs events.Observer, log *zap.Logger) *Ledger {
	if obs == nil {
		obs = events.Nop{}
	}
	return &Ledger{store: ts, policy: p, obs: obs, log: logging.Named(log, "trust")}
}

type Result struct {
	Applied bool `json:"applied"`
	Score   int  `json:"score"`
	Muted   bool `json:"muted"`
}

// ApplyDelta adds delta to userID's score once per key. Replaying a key
// returns the current score with Applied=false.
func (l *Ledger) ApplyDelta(ctx context.Context, userID string, delta int, key, reason string) (Result, error) {
	if strings.TrimSpace(userID) == "" {
		return Result{}, fmt.Errorf("%w: user is required", policy.ErrInvalidArgument)
	}
	applied, score, err := l.store.AddTrust(ctx, userID, delta, key, reason)
	if err != nil {
		return Result{}, fmt.Errorf("apply trust delta %s: %w", key, err)
	}
	res := Result{Applied: applied, Score: score, Muted: l.policy.Muted(score)}
	if !applied {
		return res, nil
	}

	metrics.TrustDelta(reason, delta)
	l.log.Debug("trust changed",
		zap.String("user_id", userID),
		zap.Int("delta", delta),
		zap.Int("score", score),
		zap.String("reason", reason))
	l.obs.Publish(ctx, events.New(events.TrustChanged, userID, map[string]any{
		"delta":  delta,
		"score":  score,
		"muted":  res.Muted,
		"reason": reason,
	}))
	return res, nil
}

func (l *Ledger) Score(ctx context.Context, userID string) (int, error) {
	return l.store.Trust(ctx, userID)
}

// IsMuted is derived from the score on every call; there is no stored flag
// to drift out of sync.
func (l *Ledger) IsMuted(ctx context.Context, userID string) (bool, error) {
	score, err := l.store.Trust(ctx, userID)
	if err != nil {
		return false, err
	}
	return l.policy.Muted(score), nil
}
