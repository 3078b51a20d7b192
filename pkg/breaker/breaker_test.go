package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.Breaker.MaxRequests = 1
	cfg.Breaker.Interval = time.Minute
	cfg.Breaker.Timeout = time.Hour
	cfg.Breaker.MinRequests = 2
	cfg.Breaker.FailureThreshold = 0.5
	return cfg
}

func TestBreaker_TripsAfterFailures(t *testing.T) {
	cb := New[int]("test-trip", testConfig(), logger.NewNop())
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, boom })
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	called := false
	_, err := cb.Execute(func() (int, error) {
		called = true
		return 1, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called)
}

func TestBreaker_StaysClosedBelowMinimum(t *testing.T) {
	cb := New[int]("test-min", testConfig(), logger.NewNop())

	_, _ = cb.Execute(func() (int, error) { return 0, errors.New("once") })
	v, err := cb.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
