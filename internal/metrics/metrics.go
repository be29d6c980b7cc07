// Package metrics defines the Prometheus instrumentation for the search
// engine and the HTTP layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EntityUnknown is the fixed entity label recorded for requests naming an
// unregistered entity. Caller-supplied names must never become label values,
// or the series cardinality would be unbounded.
const EntityUnknown = "unknown"

var (
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brandflow",
			Name:      "searches_total",
			Help:      "Total number of search requests by entity and outcome",
		},
		[]string{"entity", "status"},
	)

	searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "brandflow",
			Name:      "search_duration_seconds",
			Help:      "Search execution duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"entity"},
	)

	droppedFiltersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brandflow",
			Name:      "dropped_filter_conditions_total",
			Help:      "Filter conditions dropped from searches by reason",
		},
		[]string{"entity", "reason"},
	)

	// SuggestionCacheTotal counts suggestion cache hits and misses.
	// Passed explicitly to the cache decorator.
	SuggestionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brandflow",
			Name:      "suggestion_cache_total",
			Help:      "Suggestion cache lookups by result (hit/miss)",
		},
		[]string{"result"},
	)
)

// RegisterSearchMetrics registers the engine metrics explicitly (no init()).
func RegisterSearchMetrics() {
	prometheus.MustRegister(searchesTotal)
	prometheus.MustRegister(searchDuration)
	prometheus.MustRegister(droppedFiltersTotal)
	prometheus.MustRegister(SuggestionCacheTotal)
}

// ObserveSearch records one finished search.
func ObserveSearch(entity, status string, d time.Duration) {
	searchesTotal.WithLabelValues(entity, status).Inc()
	if status == "ok" {
		searchDuration.WithLabelValues(entity).Observe(d.Seconds())
	}
}

// IncDroppedFilter records one dropped filter condition.
func IncDroppedFilter(entity, reason string) {
	droppedFiltersTotal.WithLabelValues(entity, reason).Inc()
}
