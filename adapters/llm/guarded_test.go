package llm

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuarded_OpensAfterRepeatedFailures(t *testing.T) {
	var cfg config.Config
	cfg.LLM.Timeout = time.Second
	cfg.Breaker.MaxRequests = 1
	cfg.Breaker.Interval = time.Minute
	cfg.Breaker.Timeout = time.Hour
	cfg.Breaker.MinRequests = 2
	cfg.Breaker.FailureThreshold = 0.5

	boom := errors.New("connection refused")
	mock := NewMockLLM(
		MockResponse{Err: boom},
		MockResponse{Err: boom},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	g := NewGuarded(mock, cfg, logger.NewNop())
	req := service.LLMRequest{Prompt: "x"}

	for i := 0; i < 2; i++ {
		_, err := g.GenerateJSON(t.Context(), req)
		require.ErrorIs(t, err, boom)
	}

	_, err := g.GenerateJSON(t.Context(), req)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, mock.CallCount())
}

func TestNewFromConfig_DeterministicWithoutKeys(t *testing.T) {
	svc, err := NewFromConfig(t.Context(), config.Config{}, logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, svc)
}
