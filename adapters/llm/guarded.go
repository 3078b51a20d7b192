package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/pkg/breaker"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/khoahotran/skillpath/pkg/metrics"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// guardedLLM bounds every call with a timeout and a circuit breaker.
type guardedLLM struct {
	inner   service.LLMService
	cb      *gobreaker.CircuitBreaker[json.RawMessage]
	timeout time.Duration
	tracer  trace.Tracer
}

func NewGuarded(inner service.LLMService, cfg config.Config, log logger.Logger) service.LLMService {
	return &guardedLLM{
		inner:   inner,
		cb:      breaker.New[json.RawMessage]("llm-"+inner.ModelID(), cfg, log),
		timeout: cfg.LLM.Timeout,
		tracer:  otel.Tracer("skillpath/llm"),
	}
}

func (g *guardedLLM) ModelID() string { return g.inner.ModelID() }

func (g *guardedLLM) GenerateJSON(ctx context.Context, req service.LLMRequest) (json.RawMessage, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	schemaName := ""
	if req.Schema != nil {
		schemaName = req.Schema.Name
	}
	ctx, span := g.tracer.Start(ctx, "llm.generate_json", trace.WithAttributes(
		attribute.String("llm.model", g.inner.ModelID()),
		attribute.String("llm.schema", schemaName),
	))
	defer span.End()

	out, err := g.cb.Execute(func() (json.RawMessage, error) {
		return g.inner.GenerateJSON(ctx, req)
	})
	metrics.ObserveCall("llm", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}
