package llm

import (
	"context"

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/pkg/logger"
	"go.uber.org/zap"
)

// NewFromConfig returns nil when no provider has credentials. Callers treat
// a nil service as deterministic mode.
func NewFromConfig(ctx context.Context, cfg config.Config, log logger.Logger) (service.LLMService, error) {
	if !cfg.AIEnabled() {
		log.Info("No LLM credentials configured, running in deterministic mode")
		return nil, nil
	}

	var (
		inner service.LLMService
		err   error
	)
	switch cfg.LLM.Provider {
	case "gemini":
		inner, err = NewGeminiAdapter(ctx, cfg, log)
	default:
		inner, err = NewOpenAIAdapter(cfg, log)
	}
	if err != nil {
		return nil, err
	}

	log.Info("LLM provider ready", zap.String("provider", cfg.LLM.Provider), zap.String("model", inner.ModelID()))
	return NewGuarded(inner, cfg, log), nil
}
