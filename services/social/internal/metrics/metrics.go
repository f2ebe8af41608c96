// Package metrics exposes Prometheus counters for social actions.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
)

// Outcome labels.
const (
	OutcomeOK             = "ok"
	OutcomeRateLimited    = "rate_limited"
	OutcomeMuted          = "muted"
	OutcomeNotFound       = "not_found"
	OutcomeInvalid        = "invalid"
	OutcomeForbidden      = "forbidden"
	OutcomePartialFailure = "partial_failure"
	OutcomeError          = "error"
)

var (
	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_actions_total",
		Help: "The total number of social actions by outcome",
	}, []string{"action", "outcome"})

	trustDeltaTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_trust_delta_total",
		Help: "Absolute trust points applied, by reason",
	}, []string{"reason"})

	actionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "social_action_duration_seconds",
		Help:    "Histogram of social action latency in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	}, []string{"action"})
)

// Outcome classifies an action error into a label.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if _, ok := policy.IsPartialFailure(err); ok {
		return OutcomePartialFailure
	}
	switch {
	case errors.Is(err, policy.ErrRateLimited):
		return OutcomeRateLimited
	case errors.Is(err, policy.ErrMuted):
		return OutcomeMuted
	case errors.Is(err, store.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, policy.ErrInvalidArgument):
		return OutcomeInvalid
	case errors.Is(err, policy.ErrForbidden):
		return OutcomeForbidden
	}
	return OutcomeError
}

// Observe records one finished action.
func Observe(action string, started time.Time, err error) {
	actionsTotal.WithLabelValues(action, Outcome(err)).Inc()
	actionLatency.WithLabelValues(action).Observe(time.Since(started).Seconds())
}

func TrustDelta(reason string, delta int) {
	if delta < 0 {
		delta = -delta
	}
	trustDeltaTotal.WithLabelValues(reason).Add(float64(delta))
}
