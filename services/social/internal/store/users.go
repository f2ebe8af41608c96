package store

import (
	"context"
	"time"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User is a profile row. Muted is not stored; it is derived from Trust by
// the policy.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Trust       int       `json:"trust"`
	DarkMode    bool      `json:"dark_mode"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserStore owns profile fields.
type UserStore interface {
	// Ensure creates the profile on first sign-in and returns the existing
	// one afterwards. created reports whether a row was inserted.
	Ensure(ctx context.Context, id, displayName string) (u User, created bool, err error)
	Get(ctx context.Context, id string) (User, error)
	SetDarkMode(ctx context.Context, id string, on bool) (User, error)
	SetRole(ctx context.Context, id, role string) error
}

// TrustStore keeps the trust counter and the log of applied trust events.
type TrustStore interface {
	// AddTrust adds delta to the user's score and records eventKey in one
	// atomic step. When eventKey was already recorded nothing changes and
	// applied is false. Users without a profile row get one implicitly.
	AddTrust(ctx context.Context, userID string, delta int, eventKey, reason string) (applied bool, score int, err error)
	// Trust returns the current score; unknown users score 0.
	Trust(ctx context.Context, userID string) (int, error)
}
