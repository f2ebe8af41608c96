package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{fmt.Errorf("post: %w", policy.ErrRateLimited), OutcomeRateLimited},
		{policy.ErrMuted, OutcomeMuted},
		{store.ErrNotFound, OutcomeNotFound},
		{policy.ErrInvalidArgument, OutcomeInvalid},
		{policy.ErrForbidden, OutcomeForbidden},
		{&policy.PartialFailureError{Op: "x", Err: store.ErrNotFound}, OutcomePartialFailure},
		{errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserveAndTrustDelta(t *testing.T) {
	before := testutil.ToFloat64(actionsTotal.WithLabelValues("metrics_test", OutcomeMuted))
	Observe("metrics_test", time.Now(), policy.ErrMuted)
	if got := testutil.ToFloat64(actionsTotal.WithLabelValues("metrics_test", OutcomeMuted)); got != before+1 {
		t.Fatalf("expected counter to grow by 1, got %v -> %v", before, got)
	}

	before = testutil.ToFloat64(trustDeltaTotal.WithLabelValues("metrics_test"))
	TrustDelta("metrics_test", -2)
	if got := testutil.ToFloat64(trustDeltaTotal.WithLabelValues("metrics_test")); got != before+2 {
		t.Fatalf("expected absolute delta 2, got %v -> %v", before, got)
	}
}
