// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package respond

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleFileBlock(t *testing.T) {
	response := "Here is the implementation.\n\n" +
		"internal/billing/gateway.go\n" +
		"```go\n" +
		"package billing\n" +
		"\n" +
		"func Charge() {}\n" +
		"```\n"

	result, err := Parse(response)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, "internal/billing/gateway.go", result.Files[0].Path)
	assert.Equal(t, "package billing\n\nfunc Charge() {}\n", result.Files[0].Content)
	assert.Equal(t, "Here is the implementation.", result.ReasoningText)
	assert.Equal(t, 1, result.BlocksFound)
	assert.Equal(t, 1, result.BlocksParsed)
}

func TestParse_MultipleFiles(t *testing.T) {
	response := "`cmd/app/main.go`:\n" +
		"```go\n" +
		"package main\n" +
		"```\n" +
		"\n" +
		"And the config:\n" +
		"\n" +
		"config.yaml\n" +
		"```yaml\n" +
		"port: 8080\n" +
		"```\n"

	result, err := Parse(response)
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, "cmd/app/main.go", result.Files[0].Path, "backticks and trailing colon are stripped")
	assert.Equal(t, "config.yaml", result.Files[1].Path)
	assert.Equal(t, "port: 8080\n", result.Files[1].Content)
	assert.Contains(t, result.ReasoningText, "And the config:")
}

func TestParse_UnclosedFence(t *testing.T) {
	response := "main.go\n```go\npackage main\n"

	result, err := Parse(response)
	require.NoError(t, err)

	assert.Empty(t, result.Files)
	require.Len(t, result.ParseErrors, 1)
	assert.Contains(t, result.ParseErrors[0].Message, "unclosed")
	assert.Equal(t, 1, result.BlocksFound)
	assert.Equal(t, 0, result.BlocksParsed)
}

func TestParse_FenceWithoutPath(t *testing.T) {
	response := "Some explanation first.\n```go\npackage main\n```\n"

	result, err := Parse(response)
	require.NoError(t, err)

	assert.Empty(t, result.Files)
	require.Len(t, result.ParseErrors, 1)
	assert.Contains(t, result.ParseErrors[0].Message, "missing file path")
}

func TestParse_NoBlocksAtAll(t *testing.T) {
	_, err := Parse("I could not produce any code for this request.")
	var notFound *NoFilesFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = Parse("   \n\n  ")
	assert.ErrorAs(t, err, &notFound)
}

func TestParse_LanguageTagNeverCloses(t *testing.T) {
	response := "a.md\n```markdown\nsome\n```go\nstill inside? no\n```\n"

	result, err := Parse(response)
	require.NoError(t, err)

	// The ```go line opens-like but only a bare ``` closes; the block ends
	// at the final bare fence.
	require.Len(t, result.Files, 1)
	assert.Contains(t, result.Files[0].Content, "```go")
}

func TestParse_EmptyFileBlock(t *testing.T) {
	result, err := Parse(".gitkeep\n```\n```\n")
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "", result.Files[0].Content)
}

func TestParse_MixedGoodAndBadBlocks(t *testing.T) {
	response := "a.go\n```go\npackage a\n```\n" +
		"no path here\n\n```go\npackage b\n```\n"

	result, err := Parse(response)
	require.NoError(t, err)

	assert.Equal(t, 2, result.BlocksFound)
	assert.Equal(t, 1, result.BlocksParsed)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "a.go", result.Files[0].Path)
	require.Len(t, result.ParseErrors, 1)
}
