// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command kingraph computes relationship paths for family trees.
//
// Each input is a JSON tree document holding one tree's individual and
// family records. For every tree, kingraph builds the kinship graph,
// selects a root, runs one breadth-first pass, and emits one relationship
// record per reachable individual.
//
// Usage:
//
//	kingraph compute tree1.json tree2.json
//	kingraph compute --format compact --output results.bin trees/*.json
//	kingraph compute --cache-dir ~/.kingraph/cache trees/*.json
//	kingraph describe 2 1
//
// With a configuration file:
//
//	kingraph --config kingraph.yaml compute trees/*.json
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AleutianAI/kingraph/pkg/logging"
	"github.com/AleutianAI/kingraph/services/kinship/config"
)

var (
	cfg    config.Config
	logger *logging.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error("command failed", "error", err)
			logger.Close()
		} else {
			log.Printf("Error: %v", err)
		}
		os.Exit(1)
	}
	if logger != nil {
		logger.Close()
	}
}
