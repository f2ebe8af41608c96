// Package actions is the entry point for every user action. It applies the
// gating policy (mute check, then rate limit) before any write and reports
// each outcome to the observer, the metrics and the log.
package actions

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/socialtrust/internal/platform/logging"
	"github.com/example/socialtrust/services/social/internal/events"
	"github.com/example/socialtrust/services/social/internal/graph"
	"github.com/example/socialtrust/services/social/internal/metrics"
	"github.com/example/socialtrust/services/social/internal/moderation"
	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/ratelimit"
	"github.com/example/socialtrust/services/social/internal/store"
	"github.com/example/socialtrust/services/social/internal/trust"
)

// feedWindow bounds how many recent posts a feed is derived from.
const feedWindow = 500

type Deps struct {
	Stores   store.Stores
	Policy   policy.Policy
	Observer events.Observer
	Log      *zap.Logger
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

type Service struct {
	users    store.UserStore
	posts    store.PostStore
	comments store.CommentStore
	devices  store.DeviceStore

	limiter    *ratelimit.Limiter
	ledger     *trust.Ledger
	graph      *graph.Graph
	moderation *moderation.Service

	policy policy.Policy
	obs    events.Observer
	log    *zap.Logger
	now    func() time.Time
}

func New(d Deps) *Service {
	if d.Observer == nil {
		d.Observer = events.Nop{}
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	ledger := trust.NewLedger(d.Stores.Trust, d.Policy, d.Observer, d.Log)
	return &Service{
		users:      d.Stores.Users,
		posts:      d.Stores.Posts,
		comments:   d.Stores.Comments,
		devices:    d.Stores.Devices,
		limiter:    ratelimit.New(d.Stores.RateMarks).WithClock(d.Now),
		ledger:     ledger,
		graph:      graph.New(d.Stores.Friends, d.Observer, d.Log).WithClock(d.Now),
		moderation: moderation.New(d.Stores, ledger, d.Policy, d.Observer, d.Log).WithClock(d.Now),
		policy:     d.Policy,
		obs:        d.Observer,
		log:        logging.Named(d.Log, "actions"),
		now:        d.Now,
	}
}

func (s *Service) Policy() policy.Policy { return s.policy }

// Moderation exposes report repair to the background worker.
func (s *Service) Moderation() *moderation.Service { return s.moderation }

// gate rejects action for muted users, then takes the rate-limit mark. A
// muted user never consumes a mark. The returned release gives the mark back
// and must be called when the write that follows the gate fails.
func (s *Service) gate(ctx context.Context, userID, action string) (release func(), err error) {
	release = func() {}
	if s.policy.Gated(action) {
		muted, err := s.ledger.IsMuted(ctx, userID)
		if err != nil {
			return release, err
		}
		if muted {
			return release, policy.ErrMuted
		}
	}
	if window, limited := s.policy.Window(action); limited {
		at, ok, err := s.limiter.Reserve(ctx, userID, action, window)
		if err != nil {
			return release, err
		}
		if !ok {
			return release, &RateLimitedError{Action: action, Window: window}
		}
		release = func() {
			if err := s.limiter.Release(context.WithoutCancel(ctx), userID, action, at); err != nil {
				s.log.Warn("release rate mark", zap.String("action", action), zap.String("user_id", userID), zap.Error(err))
			}
		}
	}
	return release, nil
}

// finish records metrics and logs for one action.
func (s *Service) finish(action, userID string, started time.Time, err error) {
	metrics.Observe(action, started, err)
	if err == nil {
		s.log.Debug("action ok", zap.String("action", action), zap.String("user_id", userID))
		return
	}
	s.log.Warn("action rejected",
		zap.String("action", action),
		zap.String("user_id", userID),
		zap.String("outcome", metrics.Outcome(err)),
		zap.Error(err))
}
