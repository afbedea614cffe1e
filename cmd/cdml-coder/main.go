// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command cdml-coder drives code generation from declarative CDML
// documents.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "cdml-coder",
		Short: "CDML-driven code generation agent",
		Long:  "cdml-coder diffs a declarative CDML document against its last committed revision, assembles a context-rich prompt per changed element, generates code via LLM, and writes the results back to the repository.",
	}

	// Global flags.
	rootCmd.PersistentFlags().String("workdir", ".", "Repository root directory")
	rootCmd.PersistentFlags().String("model", "", "Bedrock model ID")
	rootCmd.PersistentFlags().String("region", "", "AWS region for Bedrock")
	rootCmd.PersistentFlags().Int("max-retries", 3, "Maximum verification retries")
	rootCmd.PersistentFlags().String("check-cmd", "", "Check command run after writes (e.g., 'make test')")
	rootCmd.PersistentFlags().Int("max-tokens", 8192, "Maximum tokens for LLM response")
	rootCmd.PersistentFlags().Bool("no-git", false, "Disable git operations")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	// Bind flags to viper.
	viper.BindPFlag("workdir", rootCmd.PersistentFlags().Lookup("workdir"))
	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
	viper.BindPFlag("max-retries", rootCmd.PersistentFlags().Lookup("max-retries"))
	viper.BindPFlag("check-cmd", rootCmd.PersistentFlags().Lookup("check-cmd"))
	viper.BindPFlag("max-tokens", rootCmd.PersistentFlags().Lookup("max-tokens"))
	viper.BindPFlag("no-git", rootCmd.PersistentFlags().Lookup("no-git"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	// Env vars: CDML_CODER_MODEL, CDML_CODER_REGION, etc.
	viper.SetEnvPrefix("CDML_CODER")
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".cdml-coder")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print cdml-coder version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cdml-coder %s\n", version)
		},
	}
}
