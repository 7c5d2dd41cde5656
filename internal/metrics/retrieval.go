package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Retrieval and routing Prometheus metrics.
var (
	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_total",
			Help:      "Vector result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ResultCacheWriteErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_write_errors_total",
			Help:      "Failed asynchronous result cache writes",
		},
	)

	VectorSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vector_search_duration_seconds",
			Help:      "End-to-end vector search duration including embedding and cache",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"version", "cache"},
	)

	VectorSearchSlowTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vector_search_slow_total",
			Help:      "Vector searches slower than the configured threshold",
		},
		[]string{"version"},
	)

	SignalDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signal_degraded_total",
			Help:      "Retrieval signals that degraded to empty because a provider failed",
		},
		[]string{"signal"}, // "embedding" / "vector" / "articles" / "completion"
	)

	RoutingOverridesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_overrides_total",
			Help:      "Results pinned by a direct mapping or contextual rule",
		},
		[]string{"version", "kind"}, // kind: "direct" / "contextual"
	)

	IntentDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_decisions_total",
			Help:      "Version routing decisions",
		},
		[]string{"version", "reason"}, // reason: "exclusive" / "cues" / "comparison" / "fallback"
	)

	IntentDomainTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_domain_total",
			Help:      "Fiscal domain tags assigned to queries",
		},
		[]string{"domain"},
	)
)

var registerOnce sync.Once

// Register registers every domain and HTTP metric with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingCacheTotal,
			CompletionRequestsTotal,
			CompletionRequestDuration,
			CompletionTokensTotal,
			BudgetTokensRemaining,
			ResultCacheTotal,
			ResultCacheWriteErrorsTotal,
			VectorSearchDuration,
			VectorSearchSlowTotal,
			SignalDegradedTotal,
			RoutingOverridesTotal,
			IntentDecisionsTotal,
			IntentDomainTotal,
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestsInFlight,
		)
	})
}
