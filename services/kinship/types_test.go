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
	"errors"
	"testing"
)

// Helper to build a test tree key.
func testTree() TreeKey {
	return TreeKey{Site: "main", Tree: 1}
}

func TestGraphState_String(t *testing.T) {
	tests := []struct {
		state    GraphState
		expected string
	}{
		{GraphStateBuilding, "building"},
		{GraphStateReadOnly, "readonly"},
		{GraphState(99), "unknown"},
	}

	for _, tc := range tests {
		got := tc.state.String()
		if got != tc.expected {
			t.Errorf("GraphState(%d).String() = %q, expected %q", tc.state, got, tc.expected)
		}
	}
}

func TestEdgeKind_String(t *testing.T) {
	tests := []struct {
		kind     EdgeKind
		expected string
	}{
		{EdgeKindUnknown, "unknown"},
		{EdgeKindParent, "parent"},
		{EdgeKindChild, "child"},
		{EdgeKindSpouse, "spouse"},
		{EdgeKind(99), "unknown"},
	}

	for _, tc := range tests {
		got := tc.kind.String()
		if got != tc.expected {
			t.Errorf("EdgeKind(%d).String() = %q, expected %q", tc.kind, got, tc.expected)
		}
	}
}

func TestEdgeSubKind_String(t *testing.T) {
	tests := []struct {
		kind     EdgeSubKind
		expected string
	}{
		{SubKindNone, "none"},
		{SubKindBiological, "biological"},
		{SubKindAdopted, "adopted"},
		{SubKindFoster, "foster"},
		{EdgeSubKind(99), "none"},
	}

	for _, tc := range tests {
		got := tc.kind.String()
		if got != tc.expected {
			t.Errorf("EdgeSubKind(%d).String() = %q, expected %q", tc.kind, got, tc.expected)
		}
	}
}

func TestChildRefKind_String(t *testing.T) {
	tests := []struct {
		kind     ChildRefKind
		expected string
	}{
		{ChildRefNone, "none"},
		{ChildRefBiological, "biological"},
		{ChildRefAdopted, "adopted"},
		{ChildRefFoster, "foster"},
		{ChildRefKind(99), "none"},
	}

	for _, tc := range tests {
		got := tc.kind.String()
		if got != tc.expected {
			t.Errorf("ChildRefKind(%d).String() = %q, expected %q", tc.kind, got, tc.expected)
		}
	}
}

func TestSubKindFor(t *testing.T) {
	tests := []struct {
		ref      ChildRefKind
		expected EdgeSubKind
	}{
		{ChildRefBiological, SubKindBiological},
		{ChildRefAdopted, SubKindAdopted},
		{ChildRefFoster, SubKindFoster},
		{ChildRefNone, SubKindNone},
	}

	for _, tc := range tests {
		got := subKindFor(tc.ref)
		if got != tc.expected {
			t.Errorf("subKindFor(%v) = %v, expected %v", tc.ref, got, tc.expected)
		}
	}
}

func TestNewGraph_Defaults(t *testing.T) {
	g := NewGraph(testTree())

	if g.State() != GraphStateBuilding {
		t.Errorf("new graph state = %v, expected building", g.State())
	}
	if g.IsFrozen() {
		t.Error("new graph should not be frozen")
	}
	if g.NodeCount() != 0 {
		t.Errorf("new graph node count = %d, expected 0", g.NodeCount())
	}
	if g.options.MaxNodes != 1_000_000 {
		t.Errorf("default MaxNodes = %d, expected 1000000", g.options.MaxNodes)
	}
	if g.options.MaxEdges != 10_000_000 {
		t.Errorf("default MaxEdges = %d, expected 10000000", g.options.MaxEdges)
	}
}

func TestNewGraph_Options(t *testing.T) {
	g := NewGraph(testTree(), WithMaxNodes(10), WithMaxEdges(20))

	if g.options.MaxNodes != 10 {
		t.Errorf("MaxNodes = %d, expected 10", g.options.MaxNodes)
	}
	if g.options.MaxEdges != 20 {
		t.Errorf("MaxEdges = %d, expected 20", g.options.MaxEdges)
	}
}

func TestGraph_AddNode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		g := NewGraph(testTree())
		if err := g.AddNode(1); err != nil {
			t.Fatalf("AddNode(1) failed: %v", err)
		}
		if g.NodeCount() != 1 {
			t.Errorf("node count = %d, expected 1", g.NodeCount())
		}
		if g.GetNode(1) == nil {
			t.Error("GetNode(1) returned nil after AddNode")
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		g := NewGraph(testTree())
		_ = g.AddNode(1)
		err := g.AddNode(1)
		if !errors.Is(err, ErrDuplicateNode) {
			t.Errorf("expected ErrDuplicateNode, got %v", err)
		}
	})

	t.Run("frozen", func(t *testing.T) {
		g := NewGraph(testTree())
		_ = g.AddNode(1)
		g.Freeze()
		err := g.AddNode(2)
		if !errors.Is(err, ErrGraphFrozen) {
			t.Errorf("expected ErrGraphFrozen, got %v", err)
		}
	})

	t.Run("capacity", func(t *testing.T) {
		g := NewGraph(testTree(), WithMaxNodes(2))
		_ = g.AddNode(1)
		_ = g.AddNode(2)
		err := g.AddNode(3)
		if !errors.Is(err, ErrMaxNodesExceeded) {
			t.Errorf("expected ErrMaxNodesExceeded, got %v", err)
		}
	})
}

func TestGraph_addEdge(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		g := NewGraph(testTree())
		_ = g.AddNode(1)
		_ = g.AddNode(2)
		err := g.addEdge(&Edge{From: 1, To: 2, Kind: EdgeKindSpouse})
		if err != nil {
			t.Fatalf("addEdge failed: %v", err)
		}
		if g.EdgeCount() != 1 {
			t.Errorf("edge count = %d, expected 1", g.EdgeCount())
		}
		if len(g.GetNode(1).Outgoing) != 1 {
			t.Error("edge not attached to source node")
		}
	})

	t.Run("missing endpoint", func(t *testing.T) {
		g := NewGraph(testTree())
		_ = g.AddNode(1)
		err := g.addEdge(&Edge{From: 1, To: 99, Kind: EdgeKindSpouse})
		if !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("expected ErrNodeNotFound, got %v", err)
		}
	})

	t.Run("frozen", func(t *testing.T) {
		g := NewGraph(testTree())
		_ = g.AddNode(1)
		_ = g.AddNode(2)
		g.Freeze()
		err := g.addEdge(&Edge{From: 1, To: 2, Kind: EdgeKindSpouse})
		if !errors.Is(err, ErrGraphFrozen) {
			t.Errorf("expected ErrGraphFrozen, got %v", err)
		}
	})

	t.Run("capacity", func(t *testing.T) {
		g := NewGraph(testTree(), WithMaxEdges(1))
		_ = g.AddNode(1)
		_ = g.AddNode(2)
		_ = g.addEdge(&Edge{From: 1, To: 2, Kind: EdgeKindSpouse})
		err := g.addEdge(&Edge{From: 2, To: 1, Kind: EdgeKindSpouse})
		if !errors.Is(err, ErrMaxEdgesExceeded) {
			t.Errorf("expected ErrMaxEdgesExceeded, got %v", err)
		}
	})
}

func TestGraph_Freeze(t *testing.T) {
	g := NewGraph(testTree())
	_ = g.AddNode(3)
	_ = g.AddNode(1)
	_ = g.AddNode(2)
	g.Freeze()

	if !g.IsFrozen() {
		t.Error("graph should be frozen after Freeze")
	}
	if g.State() != GraphStateReadOnly {
		t.Errorf("state = %v, expected readonly", g.State())
	}

	// Freeze is idempotent.
	g.Freeze()
	if !g.IsFrozen() {
		t.Error("second Freeze should keep the graph frozen")
	}

	ids := g.IDs()
	if len(ids) != 3 {
		t.Fatalf("IDs() returned %d ids, expected 3", len(ids))
	}
	for i, want := range []IndividualID{1, 2, 3} {
		if ids[i] != want {
			t.Errorf("IDs()[%d] = %d, expected %d (ascending order)", i, ids[i], want)
		}
	}
}

func TestGraph_Validate(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		g := NewGraph(testTree())
		_ = g.AddNode(1)
		_ = g.AddNode(2)
		_ = g.addEdge(&Edge{From: 1, To: 2, Kind: EdgeKindSpouse})
		g.Freeze()
		if err := g.Validate(); err != nil {
			t.Errorf("Validate failed on consistent graph: %v", err)
		}
	})

	t.Run("dangling edge", func(t *testing.T) {
		g := NewGraph(testTree())
		_ = g.AddNode(1)
		_ = g.AddNode(2)
		_ = g.addEdge(&Edge{From: 1, To: 2, Kind: EdgeKindSpouse})
		// Corrupt the graph by hand.
		delete(g.nodes, 2)
		err := g.Validate()
		if !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("expected ErrNodeNotFound for dangling edge, got %v", err)
		}
	})
}

func TestSortIDs(t *testing.T) {
	ids := []IndividualID{5, 1, 4, 2, 3}
	sortIDs(ids)
	for i := 0; i < len(ids)-1; i++ {
		if ids[i] > ids[i+1] {
			t.Fatalf("ids not sorted: %v", ids)
		}
	}
}
