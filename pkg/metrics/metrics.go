package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ComponentQuestions = "questions"
	ComponentAnalysis  = "analysis"
	ComponentSnapshot  = "snapshot"
	ComponentUpload    = "upload"
)

var (
	// FallbackTotal counts deterministic substitutes served in place of an
	// external result.
	FallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillpath_fallback_total",
		Help: "Deterministic fallbacks served instead of an external result.",
	}, []string{"component"})

	ExternalCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillpath_external_calls_total",
		Help: "Calls to external dependencies by outcome.",
	}, []string{"dependency", "outcome"})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "skillpath_breaker_state",
		Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})
)

func Fallback(component string) {
	FallbackTotal.WithLabelValues(component).Inc()
}

func ObserveCall(dependency string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ExternalCalls.WithLabelValues(dependency, outcome).Inc()
}
