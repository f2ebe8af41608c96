package store

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Device is a push-notification registration. Delivery happens elsewhere;
// the token is only stored so the delivery side can read it.
type Device struct {
	UserID       string    `json:"user_id"`
	Fingerprint  string    `json:"fingerprint"`
	Token        string    `json:"-"`
	Platform     string    `json:"platform"`
	RegisteredAt time.Time `json:"registered_at"`
}

type DeviceStore interface {
	// Register upserts the registration keyed by (UserID, Fingerprint).
	Register(ctx context.Context, d Device) (Device, error)
	ListByUser(ctx context.Context, userID string) ([]Device, error)
}

// Fingerprint is a stable, non-reversible key for a device token.
func Fingerprint(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}
