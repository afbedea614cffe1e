// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package verify runs an optional check command after generated files are
// written and captures its output for retry feedback. Generated artifacts
// can be in any language, so the check is a single configurable shell
// command rather than a fixed toolchain.
package verify

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

const defaultTimeout = 120 * time.Second

// Config configures the verifier.
type Config struct {
	WorkDir string        // Working directory the command runs in
	Cmd     string        // Check command run via the shell; empty disables verification
	Timeout time.Duration // Command timeout (default 120s)
}

// Result holds the outcome of one verification run.
type Result struct {
	OK     bool   // Command exited zero (or no command configured)
	Output string // Combined stdout+stderr, forwarded to the model on failure
}

// Run executes the configured check command. An empty command verifies
// trivially; a timeout or non-zero exit fails with the captured output.
func Run(ctx context.Context, cfg Config) *Result {
	if cfg.Cmd == "" {
		return &Result{OK: true}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "sh", "-c", cfg.Cmd)
	cmd.Dir = cfg.WorkDir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	return &Result{OK: err == nil, Output: buf.String()}
}
