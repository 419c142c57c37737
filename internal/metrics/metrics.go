/*
Package metrics declares the Prometheus collectors exported on /metrics.
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Questions counts answered questions by classified label.
	Questions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockchat_questions_total",
		Help: "Questions processed, by label.",
	}, []string{"label"})

	// Outcomes counts how each question ended: answered, no_symbol, no_data, error.
	Outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockchat_outcomes_total",
		Help: "Pipeline outcomes.",
	}, []string{"outcome"})

	BackendCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockchat_backend_calls_total",
		Help: "Backend calls, by service and status.",
	}, []string{"service", "status"})

	BackendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockchat_backend_call_seconds",
		Help:    "Backend call latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})

	// Classifications counts labels by the tier that produced them: llm or keyword.
	Classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockchat_classifications_total",
		Help: "Question classifications, by tier and label.",
	}, []string{"tier", "label"})

	RetrievalFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockchat_retrieval_fallbacks_total",
		Help: "Financial detail questions that fell back to report aggregation.",
	})

	PipelineLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stockchat_pipeline_seconds",
		Help:    "End to end answer latency.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 40},
	})

	IngestedPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockchat_ingested_points_total",
		Help: "Financial statement points written to the vector store.",
	}, []string{"status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockchat_http_requests_total",
		Help: "HTTP requests, by route and status code.",
	}, []string{"route", "code"})
)
