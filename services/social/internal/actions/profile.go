package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/socialtrust/services/social/internal/events"
	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
)

// Profile is a user as shown to clients: stored fields plus the derived
// mute status.
type Profile struct {
	store.User
	Muted bool `json:"muted"`
}

func (s *Service) profile(u store.User) Profile {
	return Profile{User: u, Muted: s.policy.Muted(u.Trust)}
}

// EnsureProfile creates the profile on first sign-in and returns the stored
// one afterwards.
func (s *Service) EnsureProfile(ctx context.Context, userID, displayName string) (Profile, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, false, fmt.Errorf("%w: user is required", policy.ErrInvalidArgument)
	}
	u, created, err := s.users.Ensure(ctx, userID, strings.TrimSpace(displayName))
	if err != nil {
		return Profile{}, false, fmt.Errorf("ensure profile: %w", err)
	}
	if created {
		s.obs.Publish(ctx, events.New(events.ProfileUpdated, userID, map[string]any{"created": true}))
	}
	return s.profile(u), created, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (Profile, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return s.profile(u), nil
}

func (s *Service) SetDarkMode(ctx context.Context, userID string, on bool) (p Profile, err error) {
	defer func(start time.Time) { s.finish("preferences", userID, start, err) }(time.Now())

	u, err := s.users.SetDarkMode(ctx, userID, on)
	if err != nil {
		return Profile{}, err
	}
	s.obs.Publish(ctx, events.New(events.ProfileUpdated, userID, map[string]any{"dark_mode": on}))
	return s.profile(u), nil
}

// TrustStatus is a user's score and whether it currently mutes them.
type TrustStatus struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
	Muted  bool   `json:"muted"`
}

func (s *Service) Trust(ctx context.Context, userID string) (TrustStatus, error) {
	score, err := s.ledger.Score(ctx, userID)
	if err != nil {
		return TrustStatus{}, err
	}
	return TrustStatus{UserID: userID, Score: score, Muted: s.policy.Muted(score)}, nil
}

// RegisterDevice stores a push registration. Delivery is handled elsewhere.
func (s *Service) RegisterDevice(ctx context.Context, userID, token, platform string) (store.Device, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return store.Device{}, fmt.Errorf("%w: token is required", policy.ErrInvalidArgument)
	}
	return s.devices.Register(ctx, store.Device{
		UserID:       userID,
		Fingerprint:  store.Fingerprint(token),
		Token:        token,
		Platform:     strings.ToLower(strings.TrimSpace(platform)),
		RegisteredAt: s.now(),
	})
}

func (s *Service) ListDevices(ctx context.Context, userID string) ([]store.Device, error) {
	return s.devices.ListByUser(ctx, userID)
}
