// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package coder

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/petar-djukic/cdml-coder/internal/llm"
	"github.com/petar-djukic/cdml-coder/internal/pipeline"
)

const (
	defaultMaxRetries = 3
	defaultMaxTokens  = 8192
	defaultLLMTimeout = 5 * time.Minute
)

// New validates the config, initializes the LLM client, and returns a
// ready-to-use Coder. It does not read the document; that happens in Run.
func New(cfg Config) (Coder, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)

	client, err := llm.NewClient(context.Background(), llm.ClientConfig{
		ModelID:   cfg.Model,
		Region:    cfg.Region,
		Timeout:   defaultLLMTimeout,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMFailure, err)
	}

	logger := zap.NewNop()
	if cfg.Debug {
		if l, err := zap.NewDevelopment(); err == nil {
			logger = l
		}
	}

	runner := pipeline.NewRunner(pipeline.Deps{
		Generator:  client,
		WorkDir:    cfg.WorkDir,
		DocPath:    cfg.DocPath,
		MaxRetries: cfg.MaxRetries,
		CheckCmd:   cfg.CheckCmd,
		NoGit:      cfg.NoGit,
		Logger:     logger,
	})

	return &coderAdapter{runner: runner}, nil
}

// coderAdapter adapts internal/pipeline.Runner to the public Coder interface.
type coderAdapter struct {
	runner *pipeline.Runner
}

func (a *coderAdapter) Run(ctx context.Context) (*Result, error) {
	ir, err := a.runner.Run(ctx)
	if ir == nil {
		return &Result{}, err
	}
	return &Result{
		ModifiedFiles: ir.ModifiedFiles,
		Errors:        ir.Errors,
		TokensUsed:    ir.TokensUsed,
		Retries:       ir.Retries,
		Success:       ir.Success,
	}, err
}

// validateConfig checks that required fields are present.
func validateConfig(cfg Config) error {
	if cfg.DocPath == "" {
		return fmt.Errorf("DocPath is required")
	}
	if cfg.WorkDir == "" {
		return fmt.Errorf("WorkDir is required")
	}
	if info, err := os.Stat(cfg.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("WorkDir %q does not exist or is not a directory", cfg.WorkDir)
	}
	if cfg.Model == "" {
		return fmt.Errorf("Model is required")
	}
	if cfg.Region == "" {
		return fmt.Errorf("Region is required")
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
}
