package actions

import (
	"fmt"
	"time"

	"github.com/example/socialtrust/services/social/internal/policy"
)

// RateLimitedError carries the window so callers can tell the user when to
// retry. It matches policy.ErrRateLimited with errors.Is.
type RateLimitedError struct {
	Action string
	Window time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: %s limited to once per %s", policy.ErrRateLimited, e.Action, e.Window)
}

func (e *RateLimitedError) Is(target error) bool { return target == policy.ErrRateLimited }
