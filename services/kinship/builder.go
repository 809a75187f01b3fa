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
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var builderTracer = otel.Tracer("kinship.builder")

// WarningKind categorizes data-quality warnings raised during a build.
type WarningKind int

const (
	// WarnDanglingFamily indicates a child-in-family reference to a family
	// that does not exist in the input set. The edge is skipped.
	WarnDanglingFamily WarningKind = iota

	// WarnSpouseNotInTree indicates a family names a husband or wife that
	// is not present in the individual set. The spouse edge is skipped.
	WarnSpouseNotInTree

	// WarnParentNotInTree indicates a referenced parent is not present in
	// the individual set. The parent/child edge pair is skipped.
	WarnParentNotInTree
)

// String returns the string representation of the WarningKind.
func (k WarningKind) String() string {
	switch k {
	case WarnDanglingFamily:
		return "dangling_family_reference"
	case WarnSpouseNotInTree:
		return "spouse_not_in_tree"
	case WarnParentNotInTree:
		return "parent_not_in_tree"
	default:
		return "unknown"
	}
}

// Warning records one recovered data-integrity fault. Warnings never abort
// a tree's computation; they are surfaced on the BuildResult and logged.
type Warning struct {
	// Kind categorizes the fault.
	Kind WarningKind

	// Individual is the individual the fault was detected on, if any.
	Individual IndividualID

	// Family is the family involved in the fault, if any.
	Family FamilyID
}

// BuildResult contains the graph plus warnings and build statistics.
type BuildResult struct {
	// Graph is the constructed, frozen graph.
	Graph *Graph

	// Warnings lists recovered data-quality faults, in detection order.
	Warnings []Warning

	// Stats contains build statistics.
	Stats BuildStats
}

// BuildStats contains statistics about a completed build.
type BuildStats struct {
	// Individuals is the number of individual records processed.
	Individuals int

	// Families is the number of family records processed.
	Families int

	// EdgesCreated is the number of edges added.
	EdgesCreated int

	// DurationMilli is the build duration in milliseconds.
	DurationMilli int64
}

// BuilderConfig configures BuildGraph behavior.
type BuilderConfig struct {
	// Logger receives data-quality warnings. May be nil.
	Logger *slog.Logger

	// GraphOptions are forwarded to the constructed graph.
	GraphOptions []GraphOption
}

// BuildGraph constructs the family relation graph for one tree.
//
// Description:
//
//	Indexes families by identifier, adds every individual as a node, then
//	derives edges: spouse edges in both directions for each family with
//	both husband and wife present, and parent→child plus reciprocal
//	child→parent edges for each individual's child-in-family reference.
//	Blood is set only on biological parent/child edges.
//
//	Record iteration order is fixed: families, then individuals, each in
//	ascending identifier order. Edge insertion order is therefore
//	deterministic, which fixes BFS tie-breaking for equal-length paths.
//
//	Data-integrity faults (a reference to a missing family, a parent or
//	spouse absent from the individual set) skip the affected edge and are
//	reported as warnings; they never abort the build. Capacity limits
//	(MaxNodes/MaxEdges) are fatal.
//
// Inputs:
//
//	ctx - Context for cancellation, checked between record groups.
//	tree - Site+tree key the records belong to.
//	individuals - Individual records for the tree.
//	families - Family records for the tree.
//	cfg - Builder configuration. Zero value is usable.
//
// Outputs:
//
//	*BuildResult - Frozen graph, warnings, and statistics.
//	error - Non-nil on cancellation or capacity limits.
func BuildGraph(ctx context.Context, tree TreeKey, individuals []Individual, families []Family, cfg BuilderConfig) (*BuildResult, error) {
	ctx, span := builderTracer.Start(ctx, "kinship.BuildGraph")
	defer span.End()
	span.SetAttributes(
		attribute.String("site", tree.Site),
		attribute.Int64("tree", int64(tree.Tree)),
		attribute.Int("individuals", len(individuals)),
		attribute.Int("families", len(families)),
	)

	start := time.Now()

	g := NewGraph(tree, cfg.GraphOptions...)
	result := &BuildResult{
		Graph:    g,
		Warnings: make([]Warning, 0),
	}

	// Fixed iteration order: ascending identifiers.
	individuals = sortedIndividuals(individuals)
	families = sortedFamilies(families)

	famIndex := make(map[FamilyID]*Family, len(families))
	for i := range families {
		famIndex[families[i].ID] = &families[i]
	}

	inTree := make(map[IndividualID]bool, len(individuals))
	for _, ind := range individuals {
		if err := g.AddNode(ind.ID); err != nil {
			return nil, err
		}
		inTree[ind.ID] = true
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Spouse edges, both directions.
	for _, fam := range families {
		if fam.Husband == 0 || fam.Wife == 0 {
			continue
		}
		if !inTree[fam.Husband] || !inTree[fam.Wife] {
			result.warn(cfg.Logger, Warning{Kind: WarnSpouseNotInTree, Family: fam.ID})
			continue
		}
		for _, pair := range [2][2]IndividualID{{fam.Husband, fam.Wife}, {fam.Wife, fam.Husband}} {
			err := g.addEdge(&Edge{
				From:    pair[0],
				To:      pair[1],
				Kind:    EdgeKindSpouse,
				SubKind: SubKindNone,
				Family:  fam.ID,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Parent/child edge pairs from child-in-family references.
	for _, ind := range individuals {
		if ind.ChildOfFamily == 0 {
			continue
		}
		fam, ok := famIndex[ind.ChildOfFamily]
		if !ok {
			result.warn(cfg.Logger, Warning{
				Kind:       WarnDanglingFamily,
				Individual: ind.ID,
				Family:     ind.ChildOfFamily,
			})
			continue
		}

		sub := subKindFor(ind.ChildRef)
		blood := sub == SubKindBiological

		for _, parent := range [2]IndividualID{fam.Husband, fam.Wife} {
			if parent == 0 {
				continue
			}
			if !inTree[parent] {
				result.warn(cfg.Logger, Warning{
					Kind:       WarnParentNotInTree,
					Individual: ind.ID,
					Family:     fam.ID,
				})
				continue
			}
			parentEdge := &Edge{
				From:    parent,
				To:      ind.ID,
				Kind:    EdgeKindParent,
				SubKind: sub,
				Family:  fam.ID,
				Blood:   blood,
			}
			childEdge := &Edge{
				From:    ind.ID,
				To:      parent,
				Kind:    EdgeKindChild,
				SubKind: sub,
				Family:  fam.ID,
				Blood:   blood,
			}
			if err := g.addEdge(parentEdge); err != nil {
				return nil, err
			}
			if err := g.addEdge(childEdge); err != nil {
				return nil, err
			}
		}
	}

	g.Freeze()

	result.Stats = BuildStats{
		Individuals:   len(individuals),
		Families:      len(families),
		EdgesCreated:  g.EdgeCount(),
		DurationMilli: time.Since(start).Milliseconds(),
	}

	span.SetAttributes(
		attribute.Int("edges_created", result.Stats.EdgesCreated),
		attribute.Int("warnings", len(result.Warnings)),
	)
	recordBuildMetrics(time.Since(start), g.NodeCount(), g.EdgeCount(), len(result.Warnings))

	return result, nil
}

// warn appends a warning and logs it at Warn level.
func (r *BuildResult) warn(logger *slog.Logger, w Warning) {
	r.Warnings = append(r.Warnings, w)
	if logger != nil {
		logger.Warn("data-quality fault, edge skipped",
			slog.String("kind", w.Kind.String()),
			slog.Uint64("individual", uint64(w.Individual)),
			slog.Uint64("family", uint64(w.Family)),
		)
	}
}

// sortedIndividuals returns a copy sorted by ascending ID.
func sortedIndividuals(in []Individual) []Individual {
	out := make([]Individual, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// sortedFamilies returns a copy sorted by ascending ID.
func sortedFamilies(in []Family) []Family {
	out := make([]Family, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
