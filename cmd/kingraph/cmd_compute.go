// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/kingraph/services/kinship"
	"github.com/AleutianAI/kingraph/services/kinship/encode"
	"github.com/AleutianAI/kingraph/services/kinship/records"
	resultcache "github.com/AleutianAI/kingraph/services/kinship/storage/badger"
)

// runCompute loads the tree documents, computes relationship paths for
// each tree, and streams the records to the output.
//
// When a cache directory is configured, each tree's encoded output block
// is stored under a key covering the input records, the engine settings,
// and the output format. An unchanged tree on a later run is served from
// the cache without recomputation.
func runCompute(cmd *cobra.Command, args []string) error {
	enc, err := encode.ForFormat(outputFormat)
	if err != nil {
		return err
	}

	inputs, err := records.LoadBatch(args)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output %s: %w", outputPath, err)
		}
		defer f.Close()
		out = f
	}

	var cache *resultcache.ResultCache
	if cacheDir != "" && !noCache {
		cache, err = resultcache.Open(resultcache.Config{
			Path:   cacheDir,
			Logger: logger.Slog(),
		})
		if err != nil {
			// A broken cache only costs recomputation.
			logger.Warn("result cache unavailable", "dir", cacheDir, "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	settings := settingsFingerprint(enc.Name())
	keys := make([][]byte, len(inputs))
	cached := make([][]byte, len(inputs))
	pending := make([]kinship.TreeInput, 0, len(inputs))
	pendingIdx := make([]int, 0, len(inputs))

	for i, input := range inputs {
		if cache != nil {
			keys[i] = resultcache.Key(input.Tree.Site, input.Tree.Tree,
				records.Fingerprint(input)^settings)
			block, hit, err := cache.Get(keys[i])
			if err != nil {
				logger.Warn("cache read failed",
					"site", input.Tree.Site, "tree", input.Tree.Tree, "error", err)
			} else if hit {
				logger.Debug("cache hit",
					"site", input.Tree.Site, "tree", input.Tree.Tree)
				cached[i] = block
				continue
			}
		}
		pending = append(pending, input)
		pendingIdx = append(pendingIdx, i)
	}

	w := workers
	if w <= 0 {
		w = cfg.Workers
	}
	processor := kinship.NewProcessor(kinship.ProcessorConfig{
		Workers: w,
		Compute: kinship.ComputeConfig{
			Selector:      cfg.Selector(),
			SearchOptions: cfg.SearchOptions(),
			Collapse:      cfg.Collapse(),
			Logger:        logger.Slog(),
		},
		Logger: logger.Slog(),
	})
	results, err := processor.Run(cmd.Context(), pending)
	if err != nil {
		return err
	}

	computed := make(map[int]*kinship.TreeResult, len(results))
	for i := range results {
		computed[pendingIdx[i]] = &results[i]
	}

	failed := 0
	for i, input := range inputs {
		if cached[i] != nil {
			if _, err := out.Write(cached[i]); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			continue
		}

		result := computed[i]
		if result.Err != nil {
			failed++
			logger.Error("tree computation failed",
				"site", input.Tree.Site, "tree", input.Tree.Tree, "error", result.Err)
			continue
		}

		var buf bytes.Buffer
		sw := encode.NewStreamWriter(&buf, enc)
		for j := range result.Paths {
			if err := sw.Write(&result.Paths[j]); err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
		}
		if _, err := out.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		logger.Info("tree processed",
			"site", input.Tree.Site,
			"tree", input.Tree.Tree,
			"root", result.Root,
			"paths", len(result.Paths),
			"no_path", len(result.NoPath),
			"limit_exceeded", len(result.LimitExceeded),
			"warnings", len(result.Warnings),
			"truncated", result.Truncated,
			"duration_ms", result.DurationMilli,
		)

		// No caching of truncated runs; a larger bound should recompute.
		if cache != nil && !result.Truncated {
			if err := cache.Set(keys[i], buf.Bytes()); err != nil {
				logger.Warn("cache write failed",
					"site", input.Tree.Site, "tree", input.Tree.Tree, "error", err)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d trees failed", failed, len(inputs))
	}
	return nil
}

// settingsFingerprint hashes the engine settings that change output, so
// cache entries from a different configuration never collide.
func settingsFingerprint(format string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(format))
	h.Write([]byte(cfg.RootPolicy))
	h.Write([]byte(cfg.CollapsePolicy))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(cfg.Search.MaxDepth))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(cfg.Search.MaxVisited))
	h.Write(buf[:])
	for _, row := range cfg.Overrides {
		h.Write([]byte(row.Site))
		binary.BigEndian.PutUint64(buf[:], row.Tree)
		h.Write(buf[:])
		h.Write([]byte(row.Root))
	}
	return h.Sum64()
}
