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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/kingraph/services/kinship"
)

// runDescribe prints the relationship description for one
// (generations-up, generations-down) pair.
//
// Useful for checking what a record's generation counters mean without
// digging through output files:
//
//	$ kingraph describe 2 0
//	grandparent
//	$ kingraph describe 1 1
//	sibling
func runDescribe(cmd *cobra.Command, args []string) error {
	up, err := strconv.Atoi(args[0])
	if err != nil || up < 0 {
		return fmt.Errorf("generations-up must be a non-negative integer, got %q", args[0])
	}
	down, err := strconv.Atoi(args[1])
	if err != nil || down < 0 {
		return fmt.Errorf("generations-down must be a non-negative integer, got %q", args[1])
	}

	fmt.Fprintln(cmd.OutOrStdout(), kinship.Describe(up, down))
	return nil
}
