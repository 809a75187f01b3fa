// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package kinship provides family graph construction, shortest relationship
// path discovery, and relationship classification.
//
// The kinship package models one genealogical tree as a directed graph where
// nodes are individuals and edges represent family-derived relations
// (parent, child, spouse) tagged with a sub-kind (biological, adopted,
// foster). A single breadth-first pass from a selected root individual finds
// the shortest path to every reachable individual, and the classifier derives
// blood-relationship status, generation counts, the common ancestor, and a
// canonical human-readable description from each path.
//
// # Ownership Model
//
// The graph stores identifier-keyed adjacency, not object references:
//   - Edges refer to individuals by ID, never by pointer
//   - Individual and Family records are treated as immutable once loaded
//   - Spouse and parent/child cycles (pedigree collapse) are therefore safe
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use during building. It is designed for:
//   - Single-writer access during the build phase (AddNode, addEdge calls)
//   - Read-only access after Freeze() is called
//
// After Freeze(), the graph can be safely read from multiple goroutines.
// Independent trees carry no shared mutable state and may be computed in
// parallel; see Processor.
//
// # Lifecycle
//
// A typical per-tree lifecycle:
//  1. Build with BuildGraph(individuals, families)
//  2. Select a root with a RootSelector
//  3. Search with FindPaths() (one BFS pass covers all targets)
//  4. Classify each found path with Classify()
package kinship

import "errors"

// Sentinel errors for kinship operations.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	// Once Freeze() is called, the graph becomes read-only and no further
	// nodes or edges can be added.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")

	// ErrNodeNotFound is returned when an operation references an individual
	// that is not present in the graph.
	ErrNodeNotFound = errors.New("individual not found")

	// ErrDuplicateNode is returned when adding an individual whose ID
	// already exists in the graph.
	ErrDuplicateNode = errors.New("duplicate individual ID")

	// ErrMaxNodesExceeded is returned when the graph has reached its
	// configured maximum node capacity.
	ErrMaxNodesExceeded = errors.New("maximum node count exceeded")

	// ErrMaxEdgesExceeded is returned when the graph has reached its
	// configured maximum edge capacity.
	ErrMaxEdgesExceeded = errors.New("maximum edge count exceeded")

	// ErrEmptyTree is returned by root selection when the tree has no
	// individuals. Fatal for that tree; no partial output is emitted.
	ErrEmptyTree = errors.New("tree has no individuals")

	// ErrGraphNotFrozen is returned when a search is attempted on a graph
	// that is still in the building state.
	ErrGraphNotFrozen = errors.New("graph must be frozen before searching")

	// ErrSearchCancelled is returned when a path search is cancelled via
	// context before completing.
	ErrSearchCancelled = errors.New("path search cancelled")
)
