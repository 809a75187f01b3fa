// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package kinship

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for graph building and path searching.
var (
	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kingraph_build_duration_seconds",
		Help:    "Duration of family graph builds",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	buildNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kingraph_build_nodes",
		Help:    "Individuals per built graph",
		Buckets: prometheus.ExponentialBuckets(10, 10, 6),
	})

	buildEdges = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kingraph_build_edges",
		Help:    "Edges per built graph",
		Buckets: prometheus.ExponentialBuckets(10, 10, 7),
	})

	buildWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kingraph_build_warnings_total",
		Help: "Total data-quality warnings raised during builds",
	})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kingraph_search_duration_seconds",
		Help:    "Duration of all-targets BFS passes",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	searchVisited = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kingraph_search_visited_nodes",
		Help:    "Individuals visited per BFS pass",
		Buckets: prometheus.ExponentialBuckets(10, 10, 6),
	})

	searchTruncated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kingraph_search_truncated_total",
		Help: "Total BFS passes aborted by depth or visited-node limits",
	})

	treesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kingraph_trees_processed_total",
		Help: "Total tree computations by outcome",
	}, []string{"outcome"})
)

// recordBuildMetrics records metrics for one graph build.
func recordBuildMetrics(duration time.Duration, nodeCount, edgeCount, warnings int) {
	buildDuration.Observe(duration.Seconds())
	buildNodes.Observe(float64(nodeCount))
	buildEdges.Observe(float64(edgeCount))
	buildWarnings.Add(float64(warnings))
}

// recordSearchMetrics records metrics for one BFS pass.
func recordSearchMetrics(duration time.Duration, visited int, truncated bool) {
	searchDuration.Observe(duration.Seconds())
	searchVisited.Observe(float64(visited))
	if truncated {
		searchTruncated.Inc()
	}
}
