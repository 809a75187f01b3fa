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

func TestLowestIDSelector(t *testing.T) {
	t.Run("selects minimum", func(t *testing.T) {
		individuals := []Individual{{ID: 7}, {ID: 3}, {ID: 12}}
		root, err := LowestIDSelector{}.Select(testTree(), individuals)
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if root != 3 {
			t.Errorf("root = %d, expected 3", root)
		}
	})

	t.Run("single individual", func(t *testing.T) {
		root, err := LowestIDSelector{}.Select(testTree(), []Individual{{ID: 9}})
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if root != 9 {
			t.Errorf("root = %d, expected 9", root)
		}
	})

	t.Run("empty tree", func(t *testing.T) {
		_, err := LowestIDSelector{}.Select(testTree(), nil)
		if !errors.Is(err, ErrEmptyTree) {
			t.Errorf("expected ErrEmptyTree, got %v", err)
		}
	})
}

func TestOverrideSelector(t *testing.T) {
	individuals := []Individual{{ID: 3}, {ID: 7}, {ID: 12}}

	t.Run("override hit", func(t *testing.T) {
		s := NewOverrideSelector(map[TreeKey]IndividualID{
			testTree(): 7,
		})
		root, err := s.Select(testTree(), individuals)
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if root != 7 {
			t.Errorf("root = %d, expected override 7", root)
		}
	})

	t.Run("no entry falls back to lowest", func(t *testing.T) {
		s := NewOverrideSelector(map[TreeKey]IndividualID{
			{Site: "other", Tree: 2}: 7,
		})
		root, err := s.Select(testTree(), individuals)
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if root != 3 {
			t.Errorf("root = %d, expected fallback 3", root)
		}
	})

	t.Run("override not in tree falls back", func(t *testing.T) {
		s := NewOverrideSelector(map[TreeKey]IndividualID{
			testTree(): 999,
		})
		root, err := s.Select(testTree(), individuals)
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if root != 3 {
			t.Errorf("root = %d, expected fallback 3 when override absent from tree", root)
		}
	})

	t.Run("empty tree", func(t *testing.T) {
		s := NewOverrideSelector(nil)
		_, err := s.Select(testTree(), nil)
		if !errors.Is(err, ErrEmptyTree) {
			t.Errorf("expected ErrEmptyTree, got %v", err)
		}
	})
}
