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

// RootSelector chooses the individual that anchors all paths for a tree.
//
// Implementations must be deterministic: calling Select twice on the
// identical individual set must return the identical ID. Regression tests
// depend on reproducible root selection.
type RootSelector interface {
	// Select returns exactly one individual ID to serve as root.
	//
	// Returns ErrEmptyTree if the tree has no individuals; that tree's
	// computation is fatal and no partial output is emitted.
	Select(tree TreeKey, individuals []Individual) (IndividualID, error)
}

// LowestIDSelector selects the minimum individual identifier present.
//
// This is the default policy. It is pure and stateless.
type LowestIDSelector struct{}

// Select implements RootSelector.
func (LowestIDSelector) Select(_ TreeKey, individuals []Individual) (IndividualID, error) {
	if len(individuals) == 0 {
		return 0, ErrEmptyTree
	}
	min := individuals[0].ID
	for _, ind := range individuals[1:] {
		if ind.ID < min {
			min = ind.ID
		}
	}
	return min, nil
}

// OverrideSelector consults a configured site+tree override table and falls
// back to lowest-identifier selection when the tree has no override.
//
// The override table is validated at configuration load time; a root that
// is not present in the tree's individual set falls back to lowest-ID with
// the assumption that the table is stale for that tree.
type OverrideSelector struct {
	// Overrides maps site+tree keys to the root to use for that tree.
	Overrides map[TreeKey]IndividualID

	// fallback is the lowest-ID policy.
	fallback LowestIDSelector
}

// NewOverrideSelector creates an OverrideSelector with the given table.
// A nil table behaves exactly like LowestIDSelector.
func NewOverrideSelector(overrides map[TreeKey]IndividualID) *OverrideSelector {
	return &OverrideSelector{Overrides: overrides}
}

// Select implements RootSelector.
func (s *OverrideSelector) Select(tree TreeKey, individuals []Individual) (IndividualID, error) {
	if len(individuals) == 0 {
		return 0, ErrEmptyTree
	}
	root, ok := s.Overrides[tree]
	if !ok {
		return s.fallback.Select(tree, individuals)
	}
	for _, ind := range individuals {
		if ind.ID == root {
			return root, nil
		}
	}
	return s.fallback.Select(tree, individuals)
}
