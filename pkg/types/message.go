// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// TokenUsage tracks token consumption for generation calls.
type TokenUsage struct {
	InputTokens  int // Tokens in the prompt
	OutputTokens int // Tokens in the response
}

// Total returns the sum of input and output tokens.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// GeneratedFile is one complete file returned by the generation backend.
type GeneratedFile struct {
	Path    string // Target path relative to the project root
	Content string // Complete file contents
}
