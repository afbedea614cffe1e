// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package coder defines the public interface for cdml-coder, a library
// that turns declarative CDML document changes into generated code.
package coder

import (
	"context"
	"errors"

	"github.com/petar-djukic/cdml-coder/pkg/types"
)

// Error types for the Coder API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLLMFailure    = errors.New("LLM call failed")
)

// Config configures a Coder instance.
type Config struct {
	DocPath    string // Source document, relative to WorkDir (required)
	WorkDir    string // Repository root (required)
	Model      string // Bedrock model ID (required)
	Region     string // AWS region (required)
	MaxRetries int    // Maximum verification retries (default 3)
	CheckCmd   string // Check command run after writes (empty = skip)
	MaxTokens  int    // Maximum tokens for LLM response (default 8192)
	NoGit      bool   // Disable git operations
	Debug      bool   // Enable debug logging
}

// Result holds the outcome of a Coder.Run invocation.
type Result struct {
	ModifiedFiles []string         // Paths of files written
	Errors        []string         // Remaining errors after all retries
	TokensUsed    types.TokenUsage // Total tokens consumed
	Retries       int              // Number of retry iterations performed
	Success       bool             // True if no errors remain
}

// Coder runs one generation pass over a document revision.
type Coder interface {
	// Run executes the full lifecycle: diff the document against its last
	// committed revision, assemble a prompt per changed element, generate,
	// write the returned files, verify, retry on failure, and commit.
	Run(ctx context.Context) (*Result, error)
}
