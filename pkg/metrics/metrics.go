// Package metrics registers the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline and model-call collectors.
var (
	ModelCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "typevault",
		Name:      "model_calls_total",
		Help:      "Model service calls by model and outcome.",
	}, []string{"model", "outcome"})

	ModelRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "typevault",
		Name:      "model_retries_total",
		Help:      "Transient model call failures that were retried.",
	})

	IngestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "typevault",
		Name:      "ingest_transitions_total",
		Help:      "Ingest state transitions by lane and target state.",
	}, []string{"lane", "state"})

	AnalysisStages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "typevault",
		Name:      "analysis_stages_total",
		Help:      "Analysis pipeline stage executions by stage and outcome.",
	}, []string{"stage", "outcome"})
)
