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
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var batchTracer = otel.Tracer("kinship.batch")

// CollapsePolicy decides how pedigree collapse (multiple shortest paths of
// equal length through different ancestors) is surfaced on output records.
type CollapsePolicy string

const (
	// CollapseFirst reports only the first-found path and drops the
	// alternates. Deterministic under the fixed build order. Default.
	CollapseFirst CollapsePolicy = "first"

	// CollapseAll reports the first-found path plus the raw set of
	// alternate equal-length discovery edges.
	CollapseAll CollapsePolicy = "all"

	// CollapseAmbiguous reports the first-found path and flags the
	// record as ambiguous, without including the alternates.
	CollapseAmbiguous CollapsePolicy = "ambiguous"
)

// Valid reports whether the policy is one of the known values.
func (p CollapsePolicy) Valid() bool {
	switch p {
	case CollapseFirst, CollapseAll, CollapseAmbiguous:
		return true
	}
	return false
}

// RelationshipPath is the canonical in-memory output record for one
// (root, target) pair. Wire encoding is a separate, swappable concern;
// see the encode package.
type RelationshipPath struct {
	// Tree is the site+tree the record belongs to.
	Tree TreeKey

	// Root is the anchoring individual.
	Root IndividualID

	// Target is the reached individual.
	Target IndividualID

	// Path is the root→target edge sequence. Empty for the self record.
	Path []*Edge

	// Length is the edge count of Path.
	Length int

	// Relationship holds the classifier-derived fields.
	Relationship Relationship

	// Ambiguous is true when more than one shortest path reaches the
	// target and the collapse policy asked for flagging.
	Ambiguous bool

	// AltParents is the raw set of alternate equal-length discovery
	// edges. Populated only under CollapseAll.
	AltParents []*Edge
}

// TreeInput is the self-contained input for one tree's computation.
type TreeInput struct {
	// Tree identifies the site+tree.
	Tree TreeKey

	// Individuals are the individual records for the tree.
	Individuals []Individual

	// Families are the family records for the tree.
	Families []Family
}

// TreeResult is the complete outcome of one tree's computation.
//
// Err is set for fatal per-tree conditions (empty tree, capacity limits);
// a tree with a non-nil Err carries no partial output.
type TreeResult struct {
	// Tree identifies the site+tree.
	Tree TreeKey

	// Root is the selected anchoring individual.
	Root IndividualID

	// Paths holds one record per (root, reachable target) pair, in
	// ascending target order, self record first.
	Paths []RelationshipPath

	// NoPath lists targets that are definitely disconnected from the
	// root, ascending.
	NoPath []IndividualID

	// LimitExceeded lists targets the search gave up on before reaching,
	// ascending. Distinct from NoPath so consumers can tell "definitely
	// disconnected" from "search gave up".
	LimitExceeded []IndividualID

	// Warnings lists recovered data-quality faults from the build.
	Warnings []Warning

	// Truncated is true if the BFS pass hit a depth or visited bound.
	Truncated bool

	// DurationMilli is the total computation time in milliseconds.
	DurationMilli int64

	// Err is the fatal per-tree error, if any.
	Err error
}

// ComputeConfig configures per-tree computation.
type ComputeConfig struct {
	// Selector chooses the root. Nil means LowestIDSelector.
	Selector RootSelector

	// SearchOptions bound the BFS pass.
	SearchOptions []SearchOption

	// GraphOptions bound the graph build.
	GraphOptions []GraphOption

	// Collapse is the pedigree-collapse reporting policy.
	// Empty means CollapseFirst.
	Collapse CollapsePolicy

	// Logger receives warnings and progress. May be nil.
	Logger *slog.Logger
}

// ComputeTree runs the full pipeline for one tree: build, root selection,
// one BFS pass, and classification of every reachable target.
//
// Description:
//
//	The computation is a self-contained unit of work with no shared
//	mutable state; many trees may run concurrently (see Processor).
//	EmptyTree and capacity errors are fatal for the tree and reported on
//	TreeResult.Err with no partial output. Data-quality faults are
//	recovered and surfaced as warnings.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	input - The tree's individual and family records.
//	cfg - Computation configuration. Zero value is usable.
//
// Outputs:
//
//	TreeResult - Output records or a fatal per-tree error.
func ComputeTree(ctx context.Context, input TreeInput, cfg ComputeConfig) TreeResult {
	ctx, span := batchTracer.Start(ctx, "kinship.ComputeTree",
		trace.WithAttributes(
			attribute.String("site", input.Tree.Site),
			attribute.Int64("tree", int64(input.Tree.Tree)),
		),
	)
	defer span.End()

	start := time.Now()
	result := TreeResult{Tree: input.Tree}

	selector := cfg.Selector
	if selector == nil {
		selector = LowestIDSelector{}
	}
	collapse := cfg.Collapse
	if collapse == "" {
		collapse = CollapseFirst
	}

	root, err := selector.Select(input.Tree, input.Individuals)
	if err != nil {
		result.Err = fmt.Errorf("root selection for tree %s/%d: %w", input.Tree.Site, input.Tree.Tree, err)
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
		treesProcessed.WithLabelValues("error").Inc()
		return result
	}
	result.Root = root

	build, err := BuildGraph(ctx, input.Tree, input.Individuals, input.Families, BuilderConfig{
		Logger:       cfg.Logger,
		GraphOptions: cfg.GraphOptions,
	})
	if err != nil {
		result.Err = fmt.Errorf("graph build for tree %s/%d: %w", input.Tree.Site, input.Tree.Tree, err)
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
		treesProcessed.WithLabelValues("error").Inc()
		return result
	}
	result.Warnings = build.Warnings

	search, err := FindPaths(ctx, build.Graph, root, cfg.SearchOptions...)
	if err != nil {
		result.Err = fmt.Errorf("path search for tree %s/%d: %w", input.Tree.Site, input.Tree.Tree, err)
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
		treesProcessed.WithLabelValues("error").Inc()
		return result
	}
	result.Truncated = search.Truncated

	if search.Cancelled {
		result.Err = fmt.Errorf("tree %s/%d: %w", input.Tree.Site, input.Tree.Tree, ErrSearchCancelled)
		span.SetStatus(codes.Error, result.Err.Error())
		treesProcessed.WithLabelValues("cancelled").Inc()
		return result
	}

	// Self record first, then every reachable target ascending.
	result.Paths = append(result.Paths, makeRecord(input.Tree, root, search.PathTo(root), collapse))
	for _, target := range search.Reachable() {
		result.Paths = append(result.Paths, makeRecord(input.Tree, root, search.PathTo(target), collapse))
	}

	for _, id := range build.Graph.IDs() {
		if _, reached := search.Depth(id); reached {
			continue
		}
		outcome := search.PathTo(id)
		if outcome.Kind == PathLimitExceeded {
			result.LimitExceeded = append(result.LimitExceeded, id)
		} else {
			result.NoPath = append(result.NoPath, id)
		}
	}

	result.DurationMilli = time.Since(start).Milliseconds()
	span.SetAttributes(
		attribute.Int("paths", len(result.Paths)),
		attribute.Int("no_path", len(result.NoPath)),
		attribute.Int("limit_exceeded", len(result.LimitExceeded)),
	)
	span.SetStatus(codes.Ok, "")
	treesProcessed.WithLabelValues("ok").Inc()

	return result
}

// makeRecord assembles one output record under the collapse policy.
func makeRecord(tree TreeKey, root IndividualID, outcome *PathResult, collapse CollapsePolicy) RelationshipPath {
	record := RelationshipPath{
		Tree:         tree,
		Root:         root,
		Target:       outcome.Target,
		Path:         outcome.Path,
		Length:       len(outcome.Path),
		Relationship: Classify(outcome.Path),
	}
	if outcome.Ambiguous() {
		switch collapse {
		case CollapseAll:
			record.AltParents = outcome.AltParents
			record.Ambiguous = true
		case CollapseAmbiguous:
			record.Ambiguous = true
		}
	}
	return record
}

// ProcessorConfig configures batch processing across trees.
type ProcessorConfig struct {
	// Workers is the number of trees computed concurrently.
	// Zero means runtime.NumCPU().
	Workers int

	// Compute is the per-tree configuration.
	Compute ComputeConfig

	// Logger receives batch progress. May be nil.
	Logger *slog.Logger
}

// Processor computes many trees in parallel.
//
// Each tree's computation is independent; the only coordination is result
// collection. The processor is stateless and safe for concurrent use.
type Processor struct {
	config ProcessorConfig
}

// NewProcessor creates a Processor with the given configuration.
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Processor{config: cfg}
}

// Run computes every input tree and returns results in input order.
//
// Description:
//
//	Trees run concurrently up to the configured worker count. A fatal
//	per-tree condition (empty tree, capacity limit) is recorded on that
//	tree's TreeResult.Err and does not abort the batch. Only context
//	cancellation stops the run early.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	inputs - One TreeInput per tree.
//
// Outputs:
//
//	[]TreeResult - Same order as inputs.
//	error - Non-nil only on context cancellation.
func (p *Processor) Run(ctx context.Context, inputs []TreeInput) ([]TreeResult, error) {
	runID := uuid.NewString()
	logger := p.config.Logger
	if logger != nil {
		logger = logger.With(slog.String("run_id", runID))
		logger.Info("starting batch run",
			slog.Int("trees", len(inputs)),
			slog.Int("workers", p.config.Workers),
		)
	}

	results := make([]TreeResult, len(inputs))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(p.config.Workers)

	for i, input := range inputs {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = ComputeTree(ctx, input, p.config.Compute)
			if results[i].Err != nil && logger != nil {
				logger.Error("tree computation failed",
					slog.String("site", input.Tree.Site),
					slog.Uint64("tree", input.Tree.Tree),
					slog.String("error", results[i].Err.Error()),
				)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, err
	}

	if logger != nil {
		logger.Info("batch run complete", slog.Int("trees", len(results)))
	}
	return results, nil
}
