package breaker

import (
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/khoahotran/skillpath/pkg/metrics"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type Option func(*gobreaker.Settings)

// WithSuccess overrides which errors count as failures.
func WithSuccess(isSuccessful func(err error) bool) Option {
	return func(s *gobreaker.Settings) { s.IsSuccessful = isSuccessful }
}

// New builds a circuit breaker that trips once MinRequests calls have been
// seen in the interval and the failure ratio reaches FailureThreshold.
func New[T any](name string, cfg config.Config, log logger.Logger, opts ...Option) *gobreaker.CircuitBreaker[T] {
	b := cfg.Breaker
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: b.MaxRequests,
		Interval:    b.Interval,
		Timeout:     b.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= b.MinRequests && failureRatio >= b.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}
	return gobreaker.NewCircuitBreaker[T](settings)
}
