package ratelimit

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	rateLimitChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ratelimit_checks_total",
		Help: "Total number of rate limit checks by result.",
	}, []string{"result"})

	rateLimitRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ratelimit_rejected_total",
		Help: "Total number of rejected requests.",
	})
)

func init() {
	prometheus.MustRegister(rateLimitChecksTotal, rateLimitRejectedTotal)
}

// Instrumented wraps a Limiter with Prometheus counters.
type Instrumented struct {
	inner Limiter
}

// NewInstrumented decorates the given limiter with check metrics.
func NewInstrumented(inner Limiter) Limiter {
	return &Instrumented{inner: inner}
}

// Check delegates to the wrapped limiter and records the outcome.
func (i *Instrumented) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	result, err := i.inner.Check(ctx, key, limit, window)
	if result != nil {
		rateLimitChecksTotal.WithLabelValues(boolLabel(result.Allowed)).Inc()
		if !result.Allowed {
			rateLimitRejectedTotal.Inc()
		}
	}

	return result, err
}

func boolLabel(value bool) string {
	if value {
		return "allowed"
	}
	return "rejected"
}
