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
	"strconv"
)

// Relationship holds the fields derived from one root→target path.
type Relationship struct {
	// Blood is true iff every edge in the path is a biological
	// parent/child edge. Trivially true for the zero-length self path.
	Blood bool

	// Degree is the total edge count of the path.
	Degree int

	// GenerationsUp counts biological edges traversed toward a parent.
	GenerationsUp int

	// GenerationsDown counts biological edges traversed toward a child.
	GenerationsDown int

	// CommonAncestor is the individual at the apex where the path turns
	// from upward to downward. Zero when the path is monotonic (pure
	// ancestor/descendant), or when no blood connection exists.
	CommonAncestor IndividualID

	// Description is the canonical human-readable relationship label.
	Description string

	// DirectAncestor is true iff the path goes only upward.
	DirectAncestor bool

	// DirectDescendant is true iff the path goes only downward.
	DirectDescendant bool
}

// Classify derives relationship fields from a root→target path.
//
// Description:
//
//	Walks the path once. Edges toward a parent increment generations-up
//	and edges toward a child increment generations-down, but only for
//	biological links; spouse, adopted, and foster edges are recorded in
//	the blood flag and degree without moving the generation counters.
//	The common ancestor is the individual where the walk first turns
//	from upward to downward; a monotonic or non-blood path has none.
//
// Inputs:
//
//	path - Root→target edge sequence. Empty means root==target.
//
// Outputs:
//
//	Relationship - Derived fields. Never errors: every path classifies.
func Classify(path []*Edge) Relationship {
	rel := Relationship{
		Blood:  true,
		Degree: len(path),
	}

	if len(path) == 0 {
		rel.Description = "self"
		return rel
	}

	sawUp := false
	for _, edge := range path {
		if !edge.Blood {
			rel.Blood = false
		}
		switch {
		case edge.Kind == EdgeKindChild && edge.SubKind == SubKindBiological:
			rel.GenerationsUp++
			sawUp = true
		case edge.Kind == EdgeKindParent && edge.SubKind == SubKindBiological:
			if sawUp && rel.GenerationsDown == 0 {
				// The walk turns downward here; the edge source is
				// the apex of the path.
				rel.CommonAncestor = edge.From
			}
			rel.GenerationsDown++
		}
	}

	rel.DirectAncestor = rel.GenerationsUp > 0 && rel.GenerationsDown == 0
	rel.DirectDescendant = rel.GenerationsDown > 0 && rel.GenerationsUp == 0

	if rel.DirectAncestor || rel.DirectDescendant || !rel.Blood {
		rel.CommonAncestor = 0
	}

	rel.Description = describePath(path, rel.GenerationsUp, rel.GenerationsDown)
	return rel
}

// describePath picks the canonical label for a non-empty path.
//
// A single spouse edge is the one direct relationship outside the
// up/down table. Everything else goes through Describe.
func describePath(path []*Edge, up, down int) string {
	if up == 0 && down == 0 && len(path) == 1 && path[0].Kind == EdgeKindSpouse {
		return "spouse"
	}
	if up == 0 && down == 0 {
		// Spouse chains and non-biological parent links carry no
		// generation information; never label them "self".
		return genericDescription(up, down)
	}
	return Describe(up, down)
}

// Describe returns the canonical description for a (generations-up,
// generations-down) pair.
//
// Description:
//
//	Deterministic lookup keyed by (up, down). The table is total: every
//	non-negative pair maps to some description and never errors. Pairs
//	outside the named rules fall back to a generic "up U down D" label.
//
//	Rules:
//	  (0,0) self            (1,1) sibling
//	  (1,0) parent          (0,1) child
//	  (2,0) grandparent     (0,2) grandchild
//	  (2,1) aunt/uncle      (1,2) niece/nephew
//	  (n,n) n>2  → (n-1)th cousin
//	  (n,0) n>2  → (n-2)x great-grandparent
//	  (0,n) n>2  → (n-2)x great-grandchild
//
// Inputs:
//
//	up - Biological generations from root up to the apex. Must be >= 0.
//	down - Biological generations from the apex down to the target. Must be >= 0.
//
// Outputs:
//
//	string - Non-empty canonical description.
func Describe(up, down int) string {
	if up < 0 || down < 0 {
		return genericDescription(up, down)
	}

	switch {
	case up == 0 && down == 0:
		return "self"
	case up == 1 && down == 0:
		return "parent"
	case up == 0 && down == 1:
		return "child"
	case up == 1 && down == 1:
		return "sibling"
	case up == 2 && down == 0:
		return "grandparent"
	case up == 0 && down == 2:
		return "grandchild"
	case up == 2 && down == 1:
		return "aunt/uncle"
	case up == 1 && down == 2:
		return "niece/nephew"
	case up == down && up > 2:
		return ordinalString(up-1) + " cousin"
	case down == 0 && up > 2:
		return strconv.Itoa(up-2) + "x great-grandparent"
	case up == 0 && down > 2:
		return strconv.Itoa(down-2) + "x great-grandchild"
	default:
		return genericDescription(up, down)
	}
}

// genericDescription is the total-table fallback.
func genericDescription(up, down int) string {
	return fmt.Sprintf("up %d down %d", up, down)
}

// ordinalString renders a positive integer with its English ordinal
// suffix: 1st, 2nd, 3rd, 4th, 11th, 21st, ...
func ordinalString(n int) string {
	return strconv.Itoa(n) + ordinalSuffix(n)
}

// ordinalSuffix returns the ordinal suffix for n.
func ordinalSuffix(n int) string {
	switch n % 100 {
	case 11, 12, 13:
		return "th"
	default:
		switch n % 10 {
		case 1:
			return "st"
		case 2:
			return "nd"
		case 3:
			return "rd"
		default:
			return "th"
		}
	}
}
