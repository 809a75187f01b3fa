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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/kingraph/pkg/logging"
	"github.com/AleutianAI/kingraph/services/kinship/config"
)

// version is set at build time via -ldflags.
var version = "dev"

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string
	logDir     string
	jsonLogs   bool
	quiet      bool

	outputPath   string
	outputFormat string
	cacheDir     string
	noCache      bool
	workers      int

	rootCmd = &cobra.Command{
		Use:   "kingraph",
		Short: "Compute relationship paths for family trees",
		Long: `Kingraph builds an in-memory kinship graph per tree, anchors it
at a root individual, and emits one relationship record for every
individual the root can reach.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if configPath != "" {
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			} else {
				cfg = config.Default()
			}

			// CLI flags override the config file.
			levelName := cfg.Log.Level
			if logLevel != "" {
				levelName = logLevel
			}
			level, err := logging.ParseLevel(levelName)
			if err != nil {
				return err
			}
			dir := cfg.Log.Dir
			if logDir != "" {
				dir = logDir
			}
			logger = logging.New(logging.Config{
				Level:   level,
				LogDir:  dir,
				Service: "kingraph",
				JSON:    jsonLogs || cfg.Log.JSON,
				Quiet:   quiet,
			})
			return nil
		},
	}

	computeCmd = &cobra.Command{
		Use:   "compute [tree document...]",
		Short: "Compute relationship paths for one or more tree documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCompute, // Defined in cmd_compute.go
	}

	describeCmd = &cobra.Command{
		Use:   "describe [generations-up] [generations-down]",
		Short: "Print the relationship description for a generation pair",
		Args:  cobra.ExactArgs(2),
		RunE:  runDescribe, // Defined in cmd_describe.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the kingraph version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for log files (disabled when empty)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress stderr logging")

	computeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (stdout when empty)")
	computeCmd.Flags().StringVar(&outputFormat, "format", "json", "Output format: json or compact")
	computeCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Result cache directory (caching disabled when empty)")
	computeCmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the result cache even when --cache-dir is set")
	computeCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent trees (0 uses the config value)")

	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(versionCmd)
}
