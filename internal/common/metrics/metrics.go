// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_requests_total",
			Help: "Total number of natural language queries processed",
		},
		[]string{"query_type"},
	)

	QueriesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_requests_failed_total",
			Help: "Total number of natural language queries that failed",
		},
		[]string{"query_type", "error_code"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "query_duration_seconds",
			Help: "Duration of full pipeline processing in seconds",
		},
		[]string{"query_type"},
	)

	LLMFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_llm_fallbacks_total",
			Help: "Number of queries answered via the LLM fallback path",
		},
	)
)
