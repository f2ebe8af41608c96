// Package policy holds the tunable rules every social action is checked
// against: mute threshold, trust deltas, rate-limit windows and which actions
// a muted user is blocked from.
package policy

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/socialtrust/services/social/internal/store"
)

// Action names. Rate-limit windows and the mute gate are looked up by these.
const (
	ActionPost    = "post"
	ActionComment = "comment"
	ActionLike    = "like"
)

type Policy struct {
	// A user whose trust is at or below MuteThreshold is muted.
	MuteThreshold int `yaml:"mute_threshold"`
	LikeGain      int `yaml:"like_gain"`
	ReportPenalty int `yaml:"report_penalty"`

	// RateLimits maps an action to its cooldown. Actions without an entry,
	// or with a zero window, are not rate limited.
	RateLimits map[string]time.Duration `yaml:"rate_limits"`

	// GatedActions are rejected for muted users.
	GatedActions []string `yaml:"gated_actions"`

	TrendingLimit int `yaml:"trending_limit"`
}

func Default() Policy {
	return Policy{
		MuteThreshold: -5,
		LikeGain:      1,
		ReportPenalty: -2,
		RateLimits: map[string]time.Duration{
			ActionPost:    60 * time.Second,
			ActionComment: 15 * time.Second,
		},
		GatedActions:  []string{ActionPost, ActionComment, ActionLike},
		TrendingLimit: 5,
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default; rate_limits entries are merged per action.
func Load(path string) (Policy, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	if p.LikeGain < 0 {
		return fmt.Errorf("%w: like_gain must not be negative", ErrInvalidArgument)
	}
	if p.ReportPenalty > 0 {
		return fmt.Errorf("%w: report_penalty must not be positive", ErrInvalidArgument)
	}
	for action, w := range p.RateLimits {
		if w < 0 {
			return fmt.Errorf("%w: rate limit for %q is negative", ErrInvalidArgument, action)
		}
	}
	if p.TrendingLimit <= 0 {
		return fmt.Errorf("%w: trending_limit must be positive", ErrInvalidArgument)
	}
	return nil
}

// Window returns the cooldown for action and whether it is rate limited.
func (p Policy) Window(action string) (time.Duration, bool) {
	w, ok := p.RateLimits[action]
	return w, ok && w > 0
}

// Gated reports whether muted users are blocked from action.
func (p Policy) Gated(action string) bool {
	return slices.Contains(p.GatedActions, action)
}

func (p Policy) Muted(score int) bool {
	return score <= p.MuteThreshold
}

// Elevated reports whether role may see moderation data.
func Elevated(role string) bool {
	return role != "" && role != store.RoleUser
}
