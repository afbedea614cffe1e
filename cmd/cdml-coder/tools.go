// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/cdml-coder/internal/diff"
	"github.com/petar-djukic/cdml-coder/internal/envmerge"
)

// newDiffCmd creates the "diff" command.
func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old.cdml> <new.cdml>",
		Short: "Show structural differences between two CDML documents",
		Long:  "Diff parses both documents and prints the structural change set as JSON, without touching git or the LLM.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldText, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			newText, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[1], err)
			}

			result := diff.Diff(string(oldText), string(newText))
			printJSON(result)
			return nil
		},
	}
}

// newMergeCmd creates the "merge" command.
func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <base.cdml>",
		Short: "Merge environment overlay files into a base CDML document",
		Long:  "Merge applies the platform, distro, and arch overlay chain for the base document and prints the merged result.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, _ := cmd.Flags().GetString("platform")
			arch, _ := cmd.Flags().GetString("arch")
			distro, _ := cmd.Flags().GetString("distro")

			merged, err := envmerge.Apply(args[0], platform, arch, distro)
			if err != nil {
				return fmt.Errorf("merging %s: %w", args[0], err)
			}

			fmt.Print(envmerge.Render(merged))
			return nil
		},
	}

	cmd.Flags().String("platform", runtime.GOOS, "Target platform (e.g., linux, darwin)")
	cmd.Flags().String("arch", runtime.GOARCH, "Target architecture (e.g., amd64, arm64)")
	cmd.Flags().String("distro", "", "Target distribution (e.g., ubuntu, fedora)")

	return cmd
}
