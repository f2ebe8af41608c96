package store

import (
	"context"
	"time"
)

// RateMark is the last successful action time for one (user, action) pair.
type RateMark struct {
	UserID string    `json:"user_id"`
	Action string    `json:"action"`
	LastAt time.Time `json:"last_at"`
}

// RateMarkStore keeps one mark per (user, action).
type RateMarkStore interface {
	// Mark records now as the new mark and returns true when no mark exists
	// or the existing one is at least window old. Otherwise it returns false
	// and leaves the mark untouched. The check and the write are atomic per
	// key.
	Mark(ctx context.Context, userID, action string, now time.Time, window time.Duration) (bool, error)
	// Release removes the mark for (userID, action) if it is still the one
	// recorded at at. A newer mark, or no mark, is left alone.
	Release(ctx context.Context, userID, action string, at time.Time) error
}

func rateKey(userID, action string) string {
	return userID + "|" + action
}
