// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config provides configuration loading for the kinship engine.
//
// Configuration is YAML with struct validation. Malformed configuration
// (bad YAML, invalid enum values, non-numeric override roots) is fatal at
// load time, never at per-tree granularity.
//
// Thread Safety:
//
//	Loaded Config values are immutable; safe for concurrent use.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/kingraph/services/kinship"
)

const (
	// MaxYAMLFileSize is the maximum allowed configuration file size (1MB).
	// Prevents memory issues from accidentally loading large files.
	MaxYAMLFileSize = 1024 * 1024

	// MaxOverrideRows is the maximum override table size.
	MaxOverrideRows = 100_000
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// RootPolicy names for the root_policy field.
const (
	PolicyLowestID = "lowest-id"
	PolicyOverride = "override"
)

// OverrideRow is one row of the root override table.
//
// Root is a string in the source document; non-numeric or zero values are
// rejected at load time.
type OverrideRow struct {
	Site string `yaml:"site" validate:"required"`
	Tree uint64 `yaml:"tree" validate:"required"`
	Root string `yaml:"root" validate:"required"`
}

// SearchConfig bounds the per-tree BFS pass.
type SearchConfig struct {
	// MaxDepth is the maximum path depth. Zero means the engine default.
	MaxDepth int `yaml:"max_depth" validate:"min=0,max=500"`

	// MaxVisited is the maximum visited individuals per search.
	// Zero means the engine default.
	MaxVisited int `yaml:"max_visited" validate:"min=0,max=10000000"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is the minimum log level.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// JSON enables JSON log output.
	JSON bool `yaml:"json"`

	// Dir enables file logging to the given directory.
	Dir string `yaml:"dir"`
}

// Config is the full engine configuration surface.
type Config struct {
	// RootPolicy selects how tree roots are chosen.
	RootPolicy string `yaml:"root_policy" validate:"required,oneof=lowest-id override"`

	// Overrides is the root override table, used when RootPolicy is
	// "override".
	Overrides []OverrideRow `yaml:"overrides" validate:"omitempty,dive"`

	// Search bounds each tree's BFS pass.
	Search SearchConfig `yaml:"search"`

	// CollapsePolicy decides how pedigree collapse is surfaced.
	CollapsePolicy string `yaml:"collapse_policy" validate:"omitempty,oneof=first all ambiguous"`

	// Workers is the number of trees computed concurrently.
	// Zero means one worker per CPU.
	Workers int `yaml:"workers" validate:"min=0,max=1024"`

	// Log configures logging output.
	Log LogConfig `yaml:"log"`
}

// Default returns the embedded default configuration.
//
// Panics only if the embedded document is invalid, which is a build
// defect, not a runtime condition.
func Default() Config {
	cfg, err := parse(defaultConfigYAML)
	if err != nil {
		panic("embedded default config invalid: " + err.Error())
	}
	return cfg
}

// Load reads and validates a configuration file.
//
// Description:
//
//	Reads the file (size-capped), parses the YAML, validates the struct,
//	and verifies every override root parses as a positive integer. Any
//	failure is fatal: an error here should abort startup.
//
// Inputs:
//
//	path - Path to the YAML configuration file.
//
// Outputs:
//
//	Config - Validated configuration.
//	error - Non-nil on read, parse, or validation failure.
func Load(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("stat config %s: %w", path, err)
	}
	if info.Size() > MaxYAMLFileSize {
		return Config{}, fmt.Errorf("config %s exceeds %d bytes", path, MaxYAMLFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return parse(data)
}

// parse unmarshals, validates, and sanity-checks a config document.
func parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	if len(cfg.Overrides) > MaxOverrideRows {
		return Config{}, fmt.Errorf("override table has %d rows, limit %d", len(cfg.Overrides), MaxOverrideRows)
	}

	// Override roots must be positive integers. Checked here so a bad
	// table fails the whole load, never a single tree later.
	for i, row := range cfg.Overrides {
		root, err := strconv.ParseUint(row.Root, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("override row %d (site %q tree %d): non-numeric root %q", i, row.Site, row.Tree, row.Root)
		}
		if root == 0 {
			return Config{}, fmt.Errorf("override row %d (site %q tree %d): root must be positive", i, row.Site, row.Tree)
		}
	}

	return cfg, nil
}

// Selector builds the RootSelector the configuration describes.
func (c Config) Selector() kinship.RootSelector {
	if c.RootPolicy != PolicyOverride {
		return kinship.LowestIDSelector{}
	}

	table := make(map[kinship.TreeKey]kinship.IndividualID, len(c.Overrides))
	for _, row := range c.Overrides {
		// Parse errors cannot happen here; Load rejects bad rows.
		root, _ := strconv.ParseUint(row.Root, 10, 64)
		table[kinship.TreeKey{Site: row.Site, Tree: row.Tree}] = kinship.IndividualID(root)
	}
	return kinship.NewOverrideSelector(table)
}

// SearchOptions builds the engine search options the configuration
// describes. Zero values fall through to engine defaults.
func (c Config) SearchOptions() []kinship.SearchOption {
	opts := make([]kinship.SearchOption, 0, 2)
	if c.Search.MaxDepth > 0 {
		opts = append(opts, kinship.WithMaxDepth(c.Search.MaxDepth))
	}
	if c.Search.MaxVisited > 0 {
		opts = append(opts, kinship.WithMaxVisited(c.Search.MaxVisited))
	}
	return opts
}

// Collapse returns the configured collapse policy, defaulting to "first".
func (c Config) Collapse() kinship.CollapsePolicy {
	if c.CollapsePolicy == "" {
		return kinship.CollapseFirst
	}
	return kinship.CollapsePolicy(c.CollapsePolicy)
}
