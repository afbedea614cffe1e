// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	gitpkg "github.com/petar-djukic/cdml-coder/internal/git"
	"github.com/petar-djukic/cdml-coder/pkg/coder"
)

// newRunCmd creates the "run" command.
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate code for a document's pending changes",
		Long:  "Run diffs the document against its last committed revision and generates code for every changed element.",
		RunE:  runCoder,
	}

	cmd.Flags().StringP("doc", "d", "", "CDML document, relative to workdir (required)")
	cmd.MarkFlagRequired("doc")

	return cmd
}

// runCoder executes one generation pass.
func runCoder(cmd *cobra.Command, args []string) error {
	doc, _ := cmd.Flags().GetString("doc")

	cfg := coder.Config{
		DocPath:    doc,
		WorkDir:    viper.GetString("workdir"),
		Model:      viper.GetString("model"),
		Region:     viper.GetString("region"),
		MaxRetries: viper.GetInt("max-retries"),
		CheckCmd:   viper.GetString("check-cmd"),
		MaxTokens:  viper.GetInt("max-tokens"),
		NoGit:      viper.GetBool("no-git"),
		Debug:      viper.GetBool("debug"),
	}

	c, err := coder.New(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := c.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if result != nil {
			printJSON(result)
		}
		return err
	}

	printJSON(result)
	return nil
}

// printJSON outputs a value as indented JSON to stdout.
func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

// newUndoCmd creates the "undo" command.
func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last cdml-coder commit",
		Long:  "Undo performs a soft reset of the last commit if it was made by cdml-coder.",
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir := viper.GetString("workdir")

			repo, err := gitpkg.Open(gitpkg.Config{WorkDir: workDir})
			if err != nil {
				return fmt.Errorf("opening repository: %w", err)
			}

			if err := repo.Undo(); err != nil {
				return fmt.Errorf("undo failed: %w", err)
			}

			fmt.Println("Successfully reverted last cdml-coder commit.")
			return nil
		},
	}
}
