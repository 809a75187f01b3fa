// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/kingraph/services/kinship"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0640))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, PolicyLowestID, cfg.RootPolicy)
	assert.Equal(t, "first", cfg.CollapsePolicy)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Overrides)
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `
root_policy: override
overrides:
  - site: main
    tree: 7
    root: "42"
search:
  max_depth: 25
  max_visited: 1000
collapse_policy: all
workers: 4
log:
  level: debug
  json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, PolicyOverride, cfg.RootPolicy)
	require.Len(t, cfg.Overrides, 1)
	assert.Equal(t, "main", cfg.Overrides[0].Site)
	assert.Equal(t, uint64(7), cfg.Overrides[0].Tree)
	assert.Equal(t, "42", cfg.Overrides[0].Root)
	assert.Equal(t, 25, cfg.Search.MaxDepth)
	assert.Equal(t, 1000, cfg.Search.MaxVisited)
	assert.Equal(t, "all", cfg.CollapsePolicy)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "root_policy: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_UnknownRootPolicy(t *testing.T) {
	path := writeConfig(t, "root_policy: highest-id\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}

func TestLoad_NonNumericOverrideRoot(t *testing.T) {
	path := writeConfig(t, `
root_policy: override
overrides:
  - site: main
    tree: 7
    root: "abc"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-numeric root")
}

func TestLoad_ZeroOverrideRoot(t *testing.T) {
	path := writeConfig(t, `
root_policy: override
overrides:
  - site: main
    tree: 7
    root: "0"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}

func TestLoad_SearchBoundsValidated(t *testing.T) {
	path := writeConfig(t, `
root_policy: lowest-id
search:
  max_depth: 9999
`)
	_, err := Load(path)
	require.Error(t, err, "depth beyond the engine ceiling must fail at load")
}

func TestConfig_Selector(t *testing.T) {
	t.Run("lowest-id", func(t *testing.T) {
		cfg := Default()
		_, ok := cfg.Selector().(kinship.LowestIDSelector)
		assert.True(t, ok)
	})

	t.Run("override", func(t *testing.T) {
		cfg := Config{
			RootPolicy: PolicyOverride,
			Overrides: []OverrideRow{
				{Site: "main", Tree: 7, Root: "42"},
			},
		}
		selector := cfg.Selector()
		root, err := selector.Select(
			kinship.TreeKey{Site: "main", Tree: 7},
			[]kinship.Individual{{ID: 5}, {ID: 42}},
		)
		require.NoError(t, err)
		assert.Equal(t, kinship.IndividualID(42), root)
	})
}

func TestConfig_SearchOptions(t *testing.T) {
	t.Run("zero uses engine defaults", func(t *testing.T) {
		cfg := Default()
		assert.Empty(t, cfg.SearchOptions())
	})

	t.Run("explicit bounds", func(t *testing.T) {
		cfg := Config{Search: SearchConfig{MaxDepth: 10, MaxVisited: 100}}
		assert.Len(t, cfg.SearchOptions(), 2)
	})
}

func TestConfig_Collapse(t *testing.T) {
	assert.Equal(t, kinship.CollapseFirst, Config{}.Collapse())
	assert.Equal(t, kinship.CollapseAll, Config{CollapsePolicy: "all"}.Collapse())
	assert.Equal(t, kinship.CollapseAmbiguous, Config{CollapsePolicy: "ambiguous"}.Collapse())
}
