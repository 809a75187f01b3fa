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
	"fmt"
	"sort"
	"time"
)

// Default configuration values.
const (
	// DefaultMaxNodes is the default maximum number of individuals a graph can hold.
	DefaultMaxNodes = 1_000_000

	// DefaultMaxEdges is the default maximum number of edges a graph can hold.
	DefaultMaxEdges = 10_000_000
)

// IndividualID uniquely identifies an individual within one site+tree.
// Zero is reserved as "unset" for optional references.
type IndividualID uint64

// FamilyID uniquely identifies a family within one site+tree.
// Zero is reserved as "unset" for optional references.
type FamilyID uint64

// TreeKey identifies one tree within one site. Individual and family
// identifiers are unique only within a TreeKey.
type TreeKey struct {
	// Site is the hosting site identifier.
	Site string

	// Tree is the tree identifier within the site.
	Tree uint64
}

// ChildRefKind describes how an individual is attached to the family
// it is a child of.
type ChildRefKind int

const (
	// ChildRefNone indicates the individual has no child-in-family reference.
	ChildRefNone ChildRefKind = iota

	// ChildRefBiological indicates a biological child reference.
	ChildRefBiological

	// ChildRefAdopted indicates an adopted child reference.
	ChildRefAdopted

	// ChildRefFoster indicates a foster child reference.
	ChildRefFoster
)

// childRefNames maps ChildRefKind values to their string representations.
var childRefNames = map[ChildRefKind]string{
	ChildRefNone:       "none",
	ChildRefBiological: "biological",
	ChildRefAdopted:    "adopted",
	ChildRefFoster:     "foster",
}

// String returns the string representation of the ChildRefKind.
func (k ChildRefKind) String() string {
	if name, ok := childRefNames[k]; ok {
		return name
	}
	return "none"
}

// Individual is one person record in a tree. Immutable once loaded for a
// computation run.
type Individual struct {
	// ID is the individual identifier, unique per site+tree. Required.
	ID IndividualID

	// ChildOfFamily optionally links the family in which this individual
	// is a child. Zero means no link.
	ChildOfFamily FamilyID

	// ChildRef is the kind of the child-in-family reference. Meaningful
	// only when ChildOfFamily is non-zero.
	ChildRef ChildRefKind
}

// Family is one spousal union and/or parental unit. Husband and Wife are
// both optional; a family with neither contributes no edges.
type Family struct {
	// ID is the family identifier, unique per site+tree. Required.
	ID FamilyID

	// Husband is the optional husband individual ID. Zero means absent.
	Husband IndividualID

	// Wife is the optional wife individual ID. Zero means absent.
	Wife IndividualID
}

// EdgeKind defines the kind of relation an edge represents.
type EdgeKind int

const (
	// EdgeKindUnknown indicates an unrecognized relation kind.
	EdgeKindUnknown EdgeKind = iota

	// EdgeKindParent indicates the edge goes from a parent to their child.
	EdgeKindParent

	// EdgeKindChild indicates the edge goes from a child to their parent.
	EdgeKindChild

	// EdgeKindSpouse indicates a spousal relation.
	EdgeKindSpouse
)

// edgeKindNames maps EdgeKind values to their string representations.
var edgeKindNames = map[EdgeKind]string{
	EdgeKindUnknown: "unknown",
	EdgeKindParent:  "parent",
	EdgeKindChild:   "child",
	EdgeKindSpouse:  "spouse",
}

// String returns the string representation of the EdgeKind.
func (k EdgeKind) String() string {
	if name, ok := edgeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// EdgeSubKind qualifies a parent/child edge with the nature of the link.
// Spouse edges always carry SubKindNone.
type EdgeSubKind int

const (
	// SubKindNone indicates no qualification (spouse edges).
	SubKindNone EdgeSubKind = iota

	// SubKindBiological indicates a biological parent/child link.
	SubKindBiological

	// SubKindAdopted indicates an adopted parent/child link.
	SubKindAdopted

	// SubKindFoster indicates a foster parent/child link.
	SubKindFoster
)

// subKindNames maps EdgeSubKind values to their string representations.
var subKindNames = map[EdgeSubKind]string{
	SubKindNone:       "none",
	SubKindBiological: "biological",
	SubKindAdopted:    "adopted",
	SubKindFoster:     "foster",
}

// String returns the string representation of the EdgeSubKind.
func (k EdgeSubKind) String() string {
	if name, ok := subKindNames[k]; ok {
		return name
	}
	return "none"
}

// subKindFor maps a child reference kind to the edge sub-kind for the
// parent/child edges it produces.
func subKindFor(ref ChildRefKind) EdgeSubKind {
	switch ref {
	case ChildRefBiological:
		return SubKindBiological
	case ChildRefAdopted:
		return SubKindAdopted
	case ChildRefFoster:
		return SubKindFoster
	default:
		return SubKindNone
	}
}

// Edge represents a directed relation between two individuals.
//
// Symmetric relations are always added in pairs: a parent edge implies a
// reciprocal child edge, and spouse edges exist in both directions. Blood
// is true only for biological parent/child edges.
type Edge struct {
	// From is the ID of the source individual.
	From IndividualID

	// To is the ID of the target individual.
	To IndividualID

	// Kind is the relation kind (parent, child, spouse).
	Kind EdgeKind

	// SubKind qualifies parent/child edges (biological, adopted, foster).
	SubKind EdgeSubKind

	// Family is the originating family identifier.
	Family FamilyID

	// Blood is true for biological parent/child edges only.
	Blood bool
}

// Node represents one individual in the graph with its outgoing edges.
type Node struct {
	// ID is the individual identifier.
	ID IndividualID

	// Outgoing contains edges where this individual is the source, in
	// insertion order. Insertion order is deterministic: the builder
	// processes families and individuals in ascending identifier order,
	// which fixes BFS tie-breaking.
	Outgoing []*Edge
}

// GraphState represents the lifecycle state of the graph.
type GraphState int

const (
	// GraphStateBuilding indicates the graph is accepting node/edge additions.
	GraphStateBuilding GraphState = iota

	// GraphStateReadOnly indicates the graph is frozen and read-only.
	GraphStateReadOnly
)

// String returns the string representation of the GraphState.
func (s GraphState) String() string {
	switch s {
	case GraphStateBuilding:
		return "building"
	case GraphStateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// GraphOptions configures Graph behavior and limits.
type GraphOptions struct {
	// MaxNodes is the maximum number of individuals the graph can hold.
	// Default: 1,000,000
	MaxNodes int

	// MaxEdges is the maximum number of edges the graph can hold.
	// Default: 10,000,000
	MaxEdges int
}

// DefaultGraphOptions returns sensible defaults for graph configuration.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		MaxNodes: DefaultMaxNodes,
		MaxEdges: DefaultMaxEdges,
	}
}

// GraphOption is a functional option for configuring Graph.
type GraphOption func(*GraphOptions)

// WithMaxNodes sets the maximum number of individuals the graph can hold.
func WithMaxNodes(n int) GraphOption {
	return func(o *GraphOptions) {
		o.MaxNodes = n
	}
}

// WithMaxEdges sets the maximum number of edges the graph can hold.
func WithMaxEdges(n int) GraphOption {
	return func(o *GraphOptions) {
		o.MaxEdges = n
	}
}

// Graph represents the family relation graph for one tree.
//
// Thread Safety:
//
//	Graph is NOT safe for concurrent use during building. It is designed
//	for single-writer access during build, then read-only after Freeze().
//	After Freeze() is called, the graph can be safely read from multiple
//	goroutines, but no further modifications are allowed.
//
// Lifecycle:
//
//  1. Create with NewGraph(tree)
//  2. Build with AddNode() and edge additions (normally via BuildGraph)
//  3. Call Freeze() to finalize
//  4. Query with GetNode(), FindPaths(), etc.
type Graph struct {
	// Tree identifies the site+tree this graph was built for.
	Tree TreeKey

	// nodes maps individual ID to Node. Unexported to prevent direct access.
	nodes map[IndividualID]*Node

	// edges contains all edges in the graph, in insertion order.
	edges []*Edge

	// ids contains all individual IDs in ascending order. Fixed at Freeze().
	// Gives deterministic iteration for whole-graph operations.
	ids []IndividualID

	// state is the current lifecycle state.
	state GraphState

	// options contains configuration.
	options GraphOptions

	// BuiltAtMilli is the Unix timestamp in milliseconds when Freeze() was
	// called. Zero if the graph has not been frozen.
	BuiltAtMilli int64
}

// NewGraph creates a new empty graph for the given tree.
//
// Description:
//
//	Creates a graph in the Building state, ready to accept AddNode and
//	edge additions. The graph must be frozen with Freeze() before
//	searching.
//
// Inputs:
//
//	tree - Site+tree key the graph belongs to.
//	opts - Optional configuration options.
//
// Example:
//
//	g := NewGraph(TreeKey{Site: "main", Tree: 7},
//	    WithMaxNodes(100_000),
//	)
func NewGraph(tree TreeKey, opts ...GraphOption) *Graph {
	options := DefaultGraphOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Graph{
		Tree:    tree,
		nodes:   make(map[IndividualID]*Node),
		edges:   make([]*Edge, 0),
		state:   GraphStateBuilding,
		options: options,
	}
}

// State returns the current lifecycle state of the graph.
func (g *Graph) State() GraphState {
	return g.state
}

// IsFrozen returns true if the graph is in read-only mode.
func (g *Graph) IsFrozen() bool {
	return g.state == GraphStateReadOnly
}

// NodeCount returns the number of individuals in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// GetNode returns the node for the given individual ID, or nil if absent.
func (g *Graph) GetNode(id IndividualID) *Node {
	return g.nodes[id]
}

// IDs returns all individual IDs in ascending order.
//
// The slice is built lazily during Freeze(); before freezing it is nil.
// Callers must not modify the returned slice.
func (g *Graph) IDs() []IndividualID {
	return g.ids
}

// AddNode adds an individual to the graph.
//
// Outputs:
//
//	error - ErrGraphFrozen, ErrDuplicateNode, or ErrMaxNodesExceeded.
func (g *Graph) AddNode(id IndividualID) error {
	if g.state == GraphStateReadOnly {
		return ErrGraphFrozen
	}
	if _, exists := g.nodes[id]; exists {
		return ErrDuplicateNode
	}
	if len(g.nodes) >= g.options.MaxNodes {
		return ErrMaxNodesExceeded
	}

	g.nodes[id] = &Node{ID: id}
	return nil
}

// addEdge appends a single directed edge. Both endpoints must already
// exist as nodes. Callers are responsible for adding reciprocal edges;
// BuildGraph always does.
func (g *Graph) addEdge(e *Edge) error {
	if g.state == GraphStateReadOnly {
		return ErrGraphFrozen
	}
	if len(g.edges) >= g.options.MaxEdges {
		return ErrMaxEdgesExceeded
	}

	from, ok := g.nodes[e.From]
	if !ok {
		return ErrNodeNotFound
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrNodeNotFound
	}

	from.Outgoing = append(from.Outgoing, e)
	g.edges = append(g.edges, e)
	return nil
}

// Freeze transitions the graph to read-only mode.
//
// Description:
//
//	After calling Freeze(), AddNode and edge additions return
//	ErrGraphFrozen. This operation is irreversible. The BuiltAtMilli
//	timestamp is set and the ascending ID index is materialized.
//
// Thread Safety:
//
//	After Freeze() returns, the graph can be safely read from multiple
//	goroutines concurrently.
func (g *Graph) Freeze() {
	if g.state == GraphStateReadOnly {
		return
	}

	g.ids = make([]IndividualID, 0, len(g.nodes))
	for id := range g.nodes {
		g.ids = append(g.ids, id)
	}
	sortIDs(g.ids)

	g.state = GraphStateReadOnly
	g.BuiltAtMilli = time.Now().UnixMilli()
}

// Validate checks that the graph is in a consistent state for searching.
//
// Description:
//
//	Verifies all edges reference existing individuals. BuildGraph cannot
//	produce dangling edges, but graphs assembled by hand can.
//
// Outputs:
//
//	error - Non-nil if the graph is corrupt (dangling edges).
func (g *Graph) Validate() error {
	for _, edge := range g.edges {
		if _, ok := g.nodes[edge.From]; !ok {
			return edgeEndpointError(edge.From)
		}
		if _, ok := g.nodes[edge.To]; !ok {
			return edgeEndpointError(edge.To)
		}
	}
	return nil
}

func edgeEndpointError(id IndividualID) error {
	return fmt.Errorf("edge references individual %d not in graph: %w", id, ErrNodeNotFound)
}

// sortIDs sorts individual IDs ascending.
func sortIDs(ids []IndividualID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
