package policy

import (
	"errors"
	"fmt"
)

var (
	ErrRateLimited     = errors.New("rate limited")
	ErrMuted           = errors.New("user is muted")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
)

// PartialFailureError reports a multi-step operation whose first step is
// durable but whose later step is not. Completed names the resource that
// exists, so a retry can target Pending alone.
type PartialFailureError struct {
	Op        string
	Completed string
	Pending   string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s: %s recorded, %s pending: %v", e.Op, e.Completed, e.Pending, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

// IsPartialFailure unwraps err to a *PartialFailureError.
func IsPartialFailure(err error) (*PartialFailureError, bool) {
	var pf *PartialFailureError
	if errors.As(err, &pf) {
		return pf, true
	}
	return nil, false
}
