// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package respond parses LLM generation responses into complete file
// contents and writes them to the repository.
package respond

import (
	"fmt"
	"strings"

	"github.com/petar-djukic/cdml-coder/pkg/types"
)

// ParseError describes a malformed file block in the LLM response.
type ParseError struct {
	Position int    // Line number where the block starts (1-based)
	RawText  string // The raw text of the malformed block
	Message  string // What went wrong
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Position, e.Message)
}

// NoFilesFoundError is returned when the response contains no file blocks.
type NoFilesFoundError struct{}

func (e *NoFilesFoundError) Error() string {
	return "no file blocks found in response"
}

// ParseResult holds the outcome of parsing an LLM response.
type ParseResult struct {
	Files         []types.GeneratedFile // Successfully parsed files
	ParseErrors   []*ParseError         // Errors from malformed blocks
	ReasoningText string                // Non-file text from the response
	BlocksFound   int                   // Total blocks attempted
	BlocksParsed  int                   // Blocks that produced valid files
}

// Parse extracts file blocks from an LLM response. A block is a file path
// line immediately followed by a fenced code block holding the complete
// file content. Fences without a preceding path line and unclosed fences
// produce ParseErrors. When no blocks are found at all, returns a
// NoFilesFoundError.
func Parse(response string) (*ParseResult, error) {
	if strings.TrimSpace(response) == "" {
		return nil, &NoFilesFoundError{}
	}

	result := &ParseResult{}
	lines := strings.Split(response, "\n")
	var reasoning strings.Builder
	i := 0

	for i < len(lines) {
		fenceIdx := -1
		for j := i; j < len(lines); j++ {
			if isFenceOpen(lines[j]) {
				fenceIdx = j
				break
			}
		}

		if fenceIdx < 0 {
			// No more blocks. Rest is reasoning.
			for ; i < len(lines); i++ {
				appendReasoning(&reasoning, lines[i])
			}
			break
		}

		// The line immediately before the fence is the file path;
		// everything earlier is reasoning text.
		pathLine := fenceIdx - 1
		for ; i < pathLine; i++ {
			appendReasoning(&reasoning, lines[i])
		}

		filePath := ""
		if pathLine >= 0 {
			filePath = extractFilePath(lines[pathLine])
			if filePath == "" {
				appendReasoning(&reasoning, lines[pathLine])
			}
		}

		i = fenceIdx + 1
		result.BlocksFound++

		var content strings.Builder
		closed := false
		for i < len(lines) {
			if isFenceClose(lines[i]) {
				closed = true
				i++
				break
			}
			if content.Len() > 0 {
				content.WriteByte('\n')
			}
			content.WriteString(lines[i])
			i++
		}

		if !closed {
			result.ParseErrors = append(result.ParseErrors, &ParseError{
				Position: fenceIdx + 1,
				RawText:  reconstructBlock(lines, fenceIdx, i),
				Message:  "unclosed code fence",
			})
			continue
		}

		if filePath == "" {
			result.ParseErrors = append(result.ParseErrors, &ParseError{
				Position: fenceIdx + 1,
				RawText:  reconstructBlock(lines, fenceIdx, i),
				Message:  "missing file path before code fence",
			})
			continue
		}

		text := content.String()
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}

		result.Files = append(result.Files, types.GeneratedFile{
			Path:    filePath,
			Content: text,
		})
		result.BlocksParsed++
	}

	result.ReasoningText = strings.TrimSpace(reasoning.String())

	if result.BlocksFound == 0 {
		return nil, &NoFilesFoundError{}
	}

	return result, nil
}

// extractFilePath cleans a file path line, stripping backticks, a trailing
// colon, and whitespace. Lines that read like prose are not paths.
func extractFilePath(line string) string {
	s := strings.TrimSpace(line)
	s = strings.Trim(s, "`")
	s = strings.TrimSuffix(s, ":")
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, " \t") {
		return ""
	}
	return s
}

// isFenceOpen matches an opening fence, with or without a language tag.
func isFenceOpen(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

// isFenceClose matches a bare closing fence. A fence with a language tag
// opens a block, it never closes one.
func isFenceClose(line string) bool {
	return strings.TrimSpace(line) == "```"
}

// reconstructBlock joins lines from start to end for error reporting.
func reconstructBlock(lines []string, start, end int) string {
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func appendReasoning(b *strings.Builder, line string) {
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(line)
}
