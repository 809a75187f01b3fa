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
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Search configuration limits.
const (
	// DefaultMaxDepth is the default maximum path depth.
	DefaultMaxDepth = 50

	// MaxSearchDepth is the maximum allowed path depth.
	MaxSearchDepth = 500

	// DefaultMaxVisited is the default maximum visited individuals per search.
	DefaultMaxVisited = 100_000

	// MaxSearchVisited is the maximum allowed visited individuals.
	MaxSearchVisited = 10_000_000

	// contextCheckInterval is how often to check context during traversal.
	contextCheckInterval = 100
)

var pathTracer = otel.Tracer("kinship.pathfinder")

// PathKind distinguishes the three per-target search outcomes.
type PathKind int

const (
	// PathFound indicates a shortest path was found.
	PathFound PathKind = iota

	// PathNone indicates the target is definitely disconnected from the
	// root: the BFS ran to completion without reaching it.
	PathNone

	// PathLimitExceeded indicates the search gave up before reaching the
	// target because a depth or visited-node bound was hit. Downstream
	// consumers must not treat this as "definitely disconnected".
	PathLimitExceeded
)

// String returns the string representation of the PathKind.
func (k PathKind) String() string {
	switch k {
	case PathFound:
		return "found"
	case PathNone:
		return "no_path"
	case PathLimitExceeded:
		return "limit_exceeded"
	default:
		return "unknown"
	}
}

// SearchOptions configures path search behavior.
type SearchOptions struct {
	// MaxDepth is the maximum path depth (default: 50, max: 500).
	MaxDepth int

	// MaxVisited is the maximum number of visited individuals
	// (default: 100000, max: 10000000).
	MaxVisited int
}

// DefaultSearchOptions returns sensible defaults for searches.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxDepth:   DefaultMaxDepth,
		MaxVisited: DefaultMaxVisited,
	}
}

// SearchOption is a functional option for configuring searches.
type SearchOption func(*SearchOptions)

// WithMaxDepth sets the maximum path depth.
//
// If d <= 0, uses default (50).
// If d > 500, clamps to 500.
func WithMaxDepth(d int) SearchOption {
	return func(o *SearchOptions) {
		if d <= 0 {
			o.MaxDepth = DefaultMaxDepth
		} else if d > MaxSearchDepth {
			o.MaxDepth = MaxSearchDepth
		} else {
			o.MaxDepth = d
		}
	}
}

// WithMaxVisited sets the maximum number of visited individuals.
//
// If n <= 0, uses default (100000).
// If n > 10000000, clamps to 10000000.
func WithMaxVisited(n int) SearchOption {
	return func(o *SearchOptions) {
		if n <= 0 {
			o.MaxVisited = DefaultMaxVisited
		} else if n > MaxSearchVisited {
			o.MaxVisited = MaxSearchVisited
		} else {
			o.MaxVisited = n
		}
	}
}

// applySearchOptions applies functional options over defaults.
func applySearchOptions(opts []SearchOption) SearchOptions {
	options := DefaultSearchOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// PathResult is the outcome of path lookup for one target.
type PathResult struct {
	// Target is the target individual ID.
	Target IndividualID

	// Kind is the search outcome for this target.
	Kind PathKind

	// Path is the root→target edge sequence. Empty only when the target
	// is the root itself. Nil unless Kind is PathFound.
	Path []*Edge

	// AltParents holds alternate same-length discovery edges into the
	// target (pedigree collapse). The edge kept in Path was discovered
	// first under the fixed build order; these are the others. Empty for
	// unambiguous targets.
	AltParents []*Edge
}

// Ambiguous reports whether more than one shortest path reaches the target.
func (r *PathResult) Ambiguous() bool {
	return len(r.AltParents) > 0
}

// SearchResult holds the outcome of one all-targets BFS pass from a root.
//
// A single pass covers every reachable individual (the termination
// condition is "queue empty", not "target found"), so per-target lookups
// via PathTo are O(path length) reconstructions, not new traversals.
type SearchResult struct {
	// Root is the individual the search started from.
	Root IndividualID

	// Visited is the number of individuals reached, including the root.
	Visited int

	// Truncated is true if the search gave up before exhausting the
	// graph because a depth or visited-node bound was hit.
	Truncated bool

	// Cancelled is true if the search was stopped by context
	// cancellation rather than by bounds.
	Cancelled bool

	// Duration is the BFS execution time.
	Duration time.Duration

	// graph is the searched graph, retained for reconstruction.
	graph *Graph

	// parentEdge maps each visited individual (except the root) to the
	// edge it was first discovered through.
	parentEdge map[IndividualID]*Edge

	// depth maps each visited individual to its shortest distance.
	depth map[IndividualID]int

	// altParents maps targets reached by multiple equal-length paths to
	// the discovery edges not kept.
	altParents map[IndividualID][]*Edge
}

// FindPaths runs a single breadth-first pass from root over the whole graph.
//
// Description:
//
//	Standard directed BFS; parent→child and child→parent edges both exist
//	explicitly, so the traversal is effectively undirected. Each
//	individual is enqueued at most once and the first path to reach it is
//	kept, which BFS guarantees is shortest by edge count. Ties between
//	equal-length paths resolve by edge insertion order, which BuildGraph
//	fixes by processing records in ascending identifier order, so results
//	are identical on every run over identical input.
//
//	Exceeding MaxDepth or MaxVisited aborts the pass and marks the result
//	Truncated; targets not yet reached then report PathLimitExceeded
//	instead of PathNone.
//
// Inputs:
//
//	ctx - Context for cancellation (checked every 100 dequeues).
//	g - Frozen graph to search.
//	root - Individual to anchor all paths. Must exist in g.
//	opts - Search options (MaxDepth, MaxVisited).
//
// Outputs:
//
//	*SearchResult - Per-target outcomes, retrievable with PathTo.
//	error - Non-nil if g is not frozen or root is absent.
//
// Thread Safety: Safe for concurrent use on a frozen graph.
func FindPaths(ctx context.Context, g *Graph, root IndividualID, opts ...SearchOption) (*SearchResult, error) {
	ctx, span := pathTracer.Start(ctx, "kinship.FindPaths")
	defer span.End()

	options := applySearchOptions(opts)
	span.SetAttributes(
		attribute.Int64("root", int64(root)),
		attribute.Int("max_depth", options.MaxDepth),
		attribute.Int("max_visited", options.MaxVisited),
	)

	if !g.IsFrozen() {
		return nil, ErrGraphNotFrozen
	}
	if g.GetNode(root) == nil {
		return nil, fmt.Errorf("root individual %d: %w", root, ErrNodeNotFound)
	}

	start := time.Now()
	result := &SearchResult{
		Root:       root,
		graph:      g,
		parentEdge: make(map[IndividualID]*Edge),
		depth:      map[IndividualID]int{root: 0},
		altParents: make(map[IndividualID][]*Edge),
	}

	queue := []IndividualID{root}
	checkCounter := 0

	for len(queue) > 0 {
		checkCounter++
		if checkCounter%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				result.Cancelled = true
				result.Truncated = true
				break
			}
		}

		current := queue[0]
		queue = queue[1:]
		currentDepth := result.depth[current]

		node := g.GetNode(current)

		if currentDepth >= options.MaxDepth {
			// Depth bound: expansion stops here. Only counts as
			// truncation if something unreached lies beyond.
			for _, edge := range node.Outgoing {
				if _, seen := result.depth[edge.To]; !seen {
					result.Truncated = true
					break
				}
			}
			continue
		}

		for _, edge := range node.Outgoing {
			if prior, seen := result.depth[edge.To]; seen {
				// An equal-length rediscovery is a pedigree-collapse
				// alternate; shorter rediscoveries are just back-edges.
				if prior == currentDepth+1 {
					result.altParents[edge.To] = append(result.altParents[edge.To], edge)
				}
				continue
			}
			if len(result.depth) >= options.MaxVisited {
				result.Truncated = true
				break
			}
			result.depth[edge.To] = currentDepth + 1
			result.parentEdge[edge.To] = edge
			queue = append(queue, edge.To)
		}
		if result.Truncated && !result.Cancelled {
			break
		}
	}

	result.Visited = len(result.depth)
	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("visited", result.Visited),
		attribute.Bool("truncated", result.Truncated),
	)
	recordSearchMetrics(result.Duration, result.Visited, result.Truncated)

	return result, nil
}

// PathTo returns the search outcome for one target.
//
// Description:
//
//	Reconstructs the shortest root→target path from the BFS parent
//	edges. The root itself yields a zero-length path. Unreached targets
//	yield PathNone when the pass exhausted the graph, PathLimitExceeded
//	when it was truncated by bounds.
//
// Inputs:
//
//	target - Target individual ID.
//
// Outputs:
//
//	*PathResult - Never nil.
func (r *SearchResult) PathTo(target IndividualID) *PathResult {
	if target == r.Root {
		return &PathResult{Target: target, Kind: PathFound, Path: []*Edge{}}
	}

	d, ok := r.depth[target]
	if !ok {
		kind := PathNone
		if r.Truncated {
			kind = PathLimitExceeded
		}
		return &PathResult{Target: target, Kind: kind}
	}

	path := make([]*Edge, d)
	for at, i := target, d-1; at != r.Root; i-- {
		edge := r.parentEdge[at]
		path[i] = edge
		at = edge.From
	}

	return &PathResult{
		Target:     target,
		Kind:       PathFound,
		Path:       path,
		AltParents: r.altParents[target],
	}
}

// Reachable returns all reached individuals except the root, ascending.
func (r *SearchResult) Reachable() []IndividualID {
	ids := make([]IndividualID, 0, len(r.depth)-1)
	for id := range r.depth {
		if id != r.Root {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids
}

// Depth returns the shortest distance to target and whether it was reached.
func (r *SearchResult) Depth(target IndividualID) (int, bool) {
	d, ok := r.depth[target]
	return d, ok
}
