// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package encode provides wire encodings for relationship path records.
//
// The engine keeps one canonical in-memory representation
// (kinship.RelationshipPath); wire encoding is a separate, swappable
// concern behind the Encoder interface. Two encodings ship:
//
//   - JSONEncoder: verbose field-per-attribute JSON, self-describing.
//   - CompactEncoder: MessagePack, trading self-description for size.
//
// Both encode the identical logical record and round-trip losslessly.
package encode

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/AleutianAI/kingraph/services/kinship"
)

// Encoder serializes relationship path records.
type Encoder interface {
	// Name identifies the encoding ("json", "compact").
	Name() string

	// Marshal encodes one record.
	Marshal(record *kinship.RelationshipPath) ([]byte, error)

	// Unmarshal decodes one record.
	Unmarshal(data []byte, record *kinship.RelationshipPath) error
}

// ForFormat returns the encoder for a format name.
func ForFormat(format string) (Encoder, error) {
	switch format {
	case "json", "":
		return JSONEncoder{}, nil
	case "compact":
		return CompactEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// edgeDTO is the wire form of one path edge.
type edgeDTO struct {
	From    uint64 `json:"from" msgpack:"f"`
	To      uint64 `json:"to" msgpack:"t"`
	Kind    string `json:"kind" msgpack:"k"`
	SubKind string `json:"sub_kind" msgpack:"s"`
	Family  uint64 `json:"family" msgpack:"y"`
	Blood   bool   `json:"blood" msgpack:"b"`
}

// recordDTO is the wire form of one relationship path record.
type recordDTO struct {
	Site             string    `json:"site" msgpack:"si"`
	Tree             uint64    `json:"tree" msgpack:"tr"`
	Root             uint64    `json:"root" msgpack:"r"`
	Target           uint64    `json:"target" msgpack:"tg"`
	Path             []edgeDTO `json:"path" msgpack:"p"`
	Length           int       `json:"length" msgpack:"l"`
	Blood            bool      `json:"blood_relationship" msgpack:"b"`
	Degree           int       `json:"degree" msgpack:"d"`
	CommonAncestor   uint64    `json:"common_ancestor,omitempty" msgpack:"ca"`
	GenerationsUp    int       `json:"generations_up" msgpack:"gu"`
	GenerationsDown  int       `json:"generations_down" msgpack:"gd"`
	Description      string    `json:"description" msgpack:"de"`
	DirectAncestor   bool      `json:"direct_ancestor" msgpack:"da"`
	DirectDescendant bool      `json:"direct_descendant" msgpack:"dd"`
	Ambiguous        bool      `json:"ambiguous,omitempty" msgpack:"am"`
	AltParents       []edgeDTO `json:"alt_parents,omitempty" msgpack:"ap"`
}

// toDTO converts the canonical record to its wire form.
func toDTO(record *kinship.RelationshipPath) recordDTO {
	return recordDTO{
		Site:             record.Tree.Site,
		Tree:             record.Tree.Tree,
		Root:             uint64(record.Root),
		Target:           uint64(record.Target),
		Path:             toEdgeDTOs(record.Path),
		Length:           record.Length,
		Blood:            record.Relationship.Blood,
		Degree:           record.Relationship.Degree,
		CommonAncestor:   uint64(record.Relationship.CommonAncestor),
		GenerationsUp:    record.Relationship.GenerationsUp,
		GenerationsDown:  record.Relationship.GenerationsDown,
		Description:      record.Relationship.Description,
		DirectAncestor:   record.Relationship.DirectAncestor,
		DirectDescendant: record.Relationship.DirectDescendant,
		Ambiguous:        record.Ambiguous,
		AltParents:       toEdgeDTOs(record.AltParents),
	}
}

func toEdgeDTOs(edges []*kinship.Edge) []edgeDTO {
	if edges == nil {
		return nil
	}
	out := make([]edgeDTO, len(edges))
	for i, e := range edges {
		out[i] = edgeDTO{
			From:    uint64(e.From),
			To:      uint64(e.To),
			Kind:    e.Kind.String(),
			SubKind: e.SubKind.String(),
			Family:  uint64(e.Family),
			Blood:   e.Blood,
		}
	}
	return out
}

// fromDTO converts a wire record back to the canonical form.
func fromDTO(dto recordDTO, record *kinship.RelationshipPath) {
	record.Tree = kinship.TreeKey{Site: dto.Site, Tree: dto.Tree}
	record.Root = kinship.IndividualID(dto.Root)
	record.Target = kinship.IndividualID(dto.Target)
	record.Path = fromEdgeDTOs(dto.Path)
	record.Length = dto.Length
	record.Relationship = kinship.Relationship{
		Blood:            dto.Blood,
		Degree:           dto.Degree,
		GenerationsUp:    dto.GenerationsUp,
		GenerationsDown:  dto.GenerationsDown,
		CommonAncestor:   kinship.IndividualID(dto.CommonAncestor),
		Description:      dto.Description,
		DirectAncestor:   dto.DirectAncestor,
		DirectDescendant: dto.DirectDescendant,
	}
	record.Ambiguous = dto.Ambiguous
	record.AltParents = fromEdgeDTOs(dto.AltParents)
}

func fromEdgeDTOs(dtos []edgeDTO) []*kinship.Edge {
	if dtos == nil {
		return nil
	}
	out := make([]*kinship.Edge, len(dtos))
	for i, d := range dtos {
		out[i] = &kinship.Edge{
			From:    kinship.IndividualID(d.From),
			To:      kinship.IndividualID(d.To),
			Kind:    edgeKindFromString(d.Kind),
			SubKind: subKindFromString(d.SubKind),
			Family:  kinship.FamilyID(d.Family),
			Blood:   d.Blood,
		}
	}
	return out
}

func edgeKindFromString(s string) kinship.EdgeKind {
	switch s {
	case "parent":
		return kinship.EdgeKindParent
	case "child":
		return kinship.EdgeKindChild
	case "spouse":
		return kinship.EdgeKindSpouse
	default:
		return kinship.EdgeKindUnknown
	}
}

func subKindFromString(s string) kinship.EdgeSubKind {
	switch s {
	case "biological":
		return kinship.SubKindBiological
	case "adopted":
		return kinship.SubKindAdopted
	case "foster":
		return kinship.SubKindFoster
	default:
		return kinship.SubKindNone
	}
}

// JSONEncoder is the verbose, self-describing encoding.
type JSONEncoder struct{}

// Name implements Encoder.
func (JSONEncoder) Name() string { return "json" }

// Marshal implements Encoder.
func (JSONEncoder) Marshal(record *kinship.RelationshipPath) ([]byte, error) {
	return json.Marshal(toDTO(record))
}

// Unmarshal implements Encoder.
func (JSONEncoder) Unmarshal(data []byte, record *kinship.RelationshipPath) error {
	var dto recordDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return fmt.Errorf("decode json record: %w", err)
	}
	fromDTO(dto, record)
	return nil
}

// CompactEncoder is the size-optimized MessagePack encoding.
type CompactEncoder struct{}

// Name implements Encoder.
func (CompactEncoder) Name() string { return "compact" }

// Marshal implements Encoder.
func (CompactEncoder) Marshal(record *kinship.RelationshipPath) ([]byte, error) {
	return msgpack.Marshal(toDTO(record))
}

// Unmarshal implements Encoder.
func (CompactEncoder) Unmarshal(data []byte, record *kinship.RelationshipPath) error {
	var dto recordDTO
	if err := msgpack.Unmarshal(data, &dto); err != nil {
		return fmt.Errorf("decode compact record: %w", err)
	}
	fromDTO(dto, record)
	return nil
}

// StreamWriter writes records as newline-delimited encoded documents.
//
// JSON output is NDJSON; compact output is length-prefixed MessagePack
// frames (a raw newline is not a safe delimiter for binary data).
type StreamWriter struct {
	w   io.Writer
	enc Encoder
}

// NewStreamWriter creates a StreamWriter over w using enc.
func NewStreamWriter(w io.Writer, enc Encoder) *StreamWriter {
	return &StreamWriter{w: w, enc: enc}
}

// Write encodes and writes one record.
func (s *StreamWriter) Write(record *kinship.RelationshipPath) error {
	data, err := s.enc.Marshal(record)
	if err != nil {
		return err
	}
	if s.enc.Name() == "compact" {
		var frame [4]byte
		n := len(data)
		frame[0] = byte(n >> 24)
		frame[1] = byte(n >> 16)
		frame[2] = byte(n >> 8)
		frame[3] = byte(n)
		if _, err := s.w.Write(frame[:]); err != nil {
			return err
		}
		_, err = s.w.Write(data)
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	_, err = s.w.Write([]byte{'\n'})
	return err
}
