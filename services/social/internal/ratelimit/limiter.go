// Package ratelimit gates actions per (user, action) with a cooldown window.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
)

// Limiter is generic over the action name and window; which actions are
// limited, and for how long, is decided by the caller's policy.
type Limiter struct {
	marks store.RateMarkStore
	now   func() time.Time
}

func New(marks store.RateMarkStore) *Limiter {
	return &Limiter{marks: marks, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source. Used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// TryAcquire records a new mark and returns true when the previous mark for
// (userID, action) is absent or at least window old. A denied call leaves the
// stored mark untouched.
func (l *Limiter) TryAcquire(ctx context.Context, userID, action string, window time.Duration) (bool, error) {
	_, ok, err := l.Reserve(ctx, userID, action, window)
	return ok, err
}

// Reserve is TryAcquire that also returns the recorded mark time. A zero
// time means no mark was written (zero window).
func (l *Limiter) Reserve(ctx context.Context, userID, action string, window time.Duration) (time.Time, bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(action) == "" {
		return time.Time{}, false, fmt.Errorf("%w: user and action are required", policy.ErrInvalidArgument)
	}
	if window <= 0 {
		return time.Time{}, true, nil
	}
	at := l.now()
	ok, err := l.marks.Mark(ctx, userID, action, at, window)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("rate mark %s/%s: %w", userID, action, err)
	}
	if !ok {
		return time.Time{}, false, nil
	}
	return at, true, nil
}

// Release hands back a mark taken by Reserve, for a write that failed after
// the gate. It is a no-op when the mark has since moved.
func (l *Limiter) Release(ctx context.Context, userID, action string, at time.Time) error {
	if at.IsZero() {
		return nil
	}
	if err := l.marks.Release(ctx, userID, action, at); err != nil {
		return fmt.Errorf("release rate mark %s/%s: %w", userID, action, err)
	}
	return nil
}
