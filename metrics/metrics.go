// Package metrics holds the Prometheus collectors for entity graph requests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels of GraphBuildsTotal.
const (
	OutcomeSuccess          = "success"
	OutcomeTruncated        = "truncated"
	OutcomeInvalidCriteria  = "invalid_criteria"
	OutcomeInvalidRequest   = "invalid_request"
	OutcomeStoreUnavailable = "store_unavailable"
	OutcomePermissionDenied = "permission_denied"
	OutcomeError            = "error"
)

var (
	// GraphBuildsTotal counts entity graph requests by outcome.
	GraphBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ontograph_graph_builds_total",
			Help: "Total number of entity graph requests",
		},
		[]string{"outcome"},
	)

	// GraphBuildDuration measures matcher compilation plus traversal.
	GraphBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "ontograph_graph_build_duration_seconds",
			Help: "Duration of entity graph construction in seconds",
			// From a cached root with no relations up to a full traversal of a large ontology
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// GraphNodes observes the node count of built graphs.
	GraphNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ontograph_graph_nodes",
			Help:    "Number of nodes in built entity graphs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// GraphTruncationsTotal counts partial graphs by truncation reason.
	GraphTruncationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ontograph_graph_truncations_total",
			Help: "Total number of truncated entity graphs",
		},
		[]string{"reason"},
	)
)
