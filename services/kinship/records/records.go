// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package records loads flat individual and family records for trees.
//
// Fetching records from a persistent store is an external collaborator's
// responsibility; this package covers the file-based seam the CLI uses.
// One JSON document holds one tree's complete record set. Loading
// verifies structural sanity (unique identifiers, known reference kinds)
// but leaves referential faults such as dangling family links to the
// graph builder, which recovers from them with warnings.
package records

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"sort"

	"github.com/AleutianAI/kingraph/services/kinship"
)

// MaxDocumentSize is the maximum allowed tree document size (256MB).
const MaxDocumentSize = 256 * 1024 * 1024

// individualDoc is the wire form of one individual record.
type individualDoc struct {
	ID            uint64 `json:"id"`
	ChildOfFamily uint64 `json:"child_of_family,omitempty"`
	ChildRef      string `json:"child_ref,omitempty"`
}

// familyDoc is the wire form of one family record.
type familyDoc struct {
	ID      uint64 `json:"id"`
	Husband uint64 `json:"husband,omitempty"`
	Wife    uint64 `json:"wife,omitempty"`
}

// treeDoc is the wire form of one tree's complete record set.
type treeDoc struct {
	Site        string          `json:"site"`
	Tree        uint64          `json:"tree"`
	Individuals []individualDoc `json:"individuals"`
	Families    []familyDoc     `json:"families"`
}

// LoadTree reads one tree's record set from a JSON document.
//
// Description:
//
//	Reads the file (size-capped), decodes it, and verifies structural
//	sanity: non-zero unique individual and family identifiers and known
//	child reference kinds. A child-in-family reference without a kind
//	defaults to biological, matching how sparse source extracts omit the
//	common case.
//
// Inputs:
//
//	path - Path to the JSON tree document.
//
// Outputs:
//
//	kinship.TreeInput - The loaded record set.
//	error - Non-nil on read, decode, or sanity failure.
func LoadTree(path string) (kinship.TreeInput, error) {
	info, err := os.Stat(path)
	if err != nil {
		return kinship.TreeInput{}, fmt.Errorf("stat tree document %s: %w", path, err)
	}
	if info.Size() > MaxDocumentSize {
		return kinship.TreeInput{}, fmt.Errorf("tree document %s exceeds %d bytes", path, MaxDocumentSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return kinship.TreeInput{}, fmt.Errorf("read tree document %s: %w", path, err)
	}

	var doc treeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return kinship.TreeInput{}, fmt.Errorf("decode tree document %s: %w", path, err)
	}

	input, err := fromDoc(doc)
	if err != nil {
		return kinship.TreeInput{}, fmt.Errorf("tree document %s: %w", path, err)
	}
	return input, nil
}

// LoadBatch reads a set of tree documents.
func LoadBatch(paths []string) ([]kinship.TreeInput, error) {
	inputs := make([]kinship.TreeInput, 0, len(paths))
	for _, path := range paths {
		input, err := LoadTree(path)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

// Fingerprint hashes one tree's record set for cache keying.
//
// Description:
//
//	Computes an FNV-1a hash over every individual and family record in
//	sorted order, so two record sets with the same content always hash
//	the same regardless of input order. Any record change produces a
//	different fingerprint.
//
// Inputs:
//
//	input - The tree's record set. Not modified; sorting happens on
//	        copies.
//
// Outputs:
//
//	uint64 - The fingerprint.
func Fingerprint(input kinship.TreeInput) uint64 {
	individuals := make([]kinship.Individual, len(input.Individuals))
	copy(individuals, input.Individuals)
	sort.Slice(individuals, func(i, j int) bool {
		return individuals[i].ID < individuals[j].ID
	})
	families := make([]kinship.Family, len(input.Families))
	copy(families, input.Families)
	sort.Slice(families, func(i, j int) bool {
		return families[i].ID < families[j].ID
	})

	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.BigEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	h.Write([]byte(input.Tree.Site))
	write(input.Tree.Tree)
	for _, ind := range individuals {
		write(uint64(ind.ID))
		write(uint64(ind.ChildOfFamily))
		write(uint64(ind.ChildRef))
	}
	for _, fam := range families {
		write(uint64(fam.ID))
		write(uint64(fam.Husband))
		write(uint64(fam.Wife))
	}
	return h.Sum64()
}

// fromDoc converts and sanity-checks one decoded document.
func fromDoc(doc treeDoc) (kinship.TreeInput, error) {
	input := kinship.TreeInput{
		Tree:        kinship.TreeKey{Site: doc.Site, Tree: doc.Tree},
		Individuals: make([]kinship.Individual, 0, len(doc.Individuals)),
		Families:    make([]kinship.Family, 0, len(doc.Families)),
	}

	seenInd := make(map[uint64]bool, len(doc.Individuals))
	for i, ind := range doc.Individuals {
		if ind.ID == 0 {
			return kinship.TreeInput{}, fmt.Errorf("individual %d: zero identifier", i)
		}
		if seenInd[ind.ID] {
			return kinship.TreeInput{}, fmt.Errorf("duplicate individual identifier %d", ind.ID)
		}
		seenInd[ind.ID] = true

		ref := kinship.ChildRefNone
		if ind.ChildOfFamily != 0 {
			var err error
			ref, err = parseChildRef(ind.ChildRef)
			if err != nil {
				return kinship.TreeInput{}, fmt.Errorf("individual %d: %w", ind.ID, err)
			}
		}

		input.Individuals = append(input.Individuals, kinship.Individual{
			ID:            kinship.IndividualID(ind.ID),
			ChildOfFamily: kinship.FamilyID(ind.ChildOfFamily),
			ChildRef:      ref,
		})
	}

	seenFam := make(map[uint64]bool, len(doc.Families))
	for i, fam := range doc.Families {
		if fam.ID == 0 {
			return kinship.TreeInput{}, fmt.Errorf("family %d: zero identifier", i)
		}
		if seenFam[fam.ID] {
			return kinship.TreeInput{}, fmt.Errorf("duplicate family identifier %d", fam.ID)
		}
		seenFam[fam.ID] = true

		input.Families = append(input.Families, kinship.Family{
			ID:      kinship.FamilyID(fam.ID),
			Husband: kinship.IndividualID(fam.Husband),
			Wife:    kinship.IndividualID(fam.Wife),
		})
	}

	return input, nil
}

// parseChildRef maps a document reference kind to the engine kind.
func parseChildRef(s string) (kinship.ChildRefKind, error) {
	switch s {
	case "", "biological":
		return kinship.ChildRefBiological, nil
	case "adopted":
		return kinship.ChildRefAdopted, nil
	case "foster":
		return kinship.ChildRefFoster, nil
	default:
		return kinship.ChildRefNone, fmt.Errorf("unknown child reference kind %q", s)
	}
}
