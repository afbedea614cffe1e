// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package outline renders compact symbol outlines of source files using
// tree-sitter. An outline stands in for full file content when a context
// reference asks for structure rather than text.
package outline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
)

// langSpec holds the tree-sitter language and definition query for a file type.
type langSpec struct {
	lang *sitter.Language
	defQ string // Tree-sitter query for definitions (capture @name)
}

// supportedLangs maps file extensions to their langSpec.
var supportedLangs = map[string]*langSpec{
	".go": {
		lang: golang.GetLanguage(),
		defQ: `
			(function_declaration name: (identifier) @name)
			(method_declaration name: (field_identifier) @name)
			(type_declaration (type_spec name: (type_identifier) @name))
		`,
	},
	".py": {
		lang: python.GetLanguage(),
		defQ: `
			(function_definition name: (identifier) @name)
			(class_definition name: (identifier) @name)
		`,
	},
	".js": {
		lang: javascript.GetLanguage(),
		defQ: `
			(function_declaration name: (identifier) @name)
			(class_declaration name: (identifier) @name)
			(variable_declarator name: (identifier) @name)
		`,
	},
	".ts": {
		lang: typescript.GetLanguage(),
		defQ: `
			(function_declaration name: (identifier) @name)
			(class_declaration name: (identifier) @name)
			(variable_declarator name: (identifier) @name)
			(interface_declaration name: (type_identifier) @name)
		`,
	},
	".yaml": {
		lang: yaml.GetLanguage(),
		defQ: `
			(block_mapping_pair key: (flow_node) @name)
		`,
	},
	".yml": {
		lang: yaml.GetLanguage(),
		defQ: `
			(block_mapping_pair key: (flow_node) @name)
		`,
	},
}

// Supported reports whether outlines can be produced for the file.
func Supported(path string) bool {
	_, ok := supportedLangs[filepath.Ext(path)]
	return ok
}

// cacheEntry stores a rendered outline keyed by file path and mod time.
type cacheEntry struct {
	modTime time.Time
	text    string
}

// Outliner produces symbol outlines with a per-file mod-time cache.
type Outliner struct {
	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewOutliner creates an outliner with an empty cache.
func NewOutliner() *Outliner {
	return &Outliner{cache: make(map[string]cacheEntry)}
}

// File returns an outline of the file, one "line │ signature" row per
// definition in line order. Unsupported extensions and parse failures
// return an error; the caller decides whether to fall back to full content.
func (o *Outliner) File(ctx context.Context, path string) (string, error) {
	spec, ok := supportedLangs[filepath.Ext(path)]
	if !ok {
		return "", fmt.Errorf("no outline support for %s", filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	o.mu.Lock()
	if cached, ok := o.cache[path]; ok && cached.modTime.Equal(info.ModTime()) {
		text := cached.text
		o.mu.Unlock()
		return text, nil
	}
	o.mu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	text, err := render(ctx, content, spec)
	if err != nil {
		return "", err
	}

	o.mu.Lock()
	o.cache[path] = cacheEntry{modTime: info.ModTime(), text: text}
	o.mu.Unlock()
	return text, nil
}

func render(ctx context.Context, content []byte, spec *langSpec) (string, error) {
	root, err := sitter.ParseCtx(ctx, content, spec.lang)
	if err != nil || root == nil {
		return "", fmt.Errorf("parsing source: %w", err)
	}

	q, err := sitter.NewQuery([]byte(spec.defQ), spec.lang)
	if err != nil {
		return "", err
	}
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	lines := strings.Split(string(content), "\n")
	seen := make(map[int]bool) // One row per line even with multiple captures.
	var b strings.Builder

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			line := int(c.Node.StartPoint().Row) + 1
			if seen[line] {
				continue
			}
			seen[line] = true
			fmt.Fprintf(&b, "%4d │ %s\n", line, signature(lines, line))
		}
	}
	return b.String(), nil
}

// signature returns the trimmed source line, capped for prompt economy.
func signature(lines []string, line int) string {
	if line < 1 || line > len(lines) {
		return ""
	}
	sig := strings.TrimSpace(lines[line-1])
	if len(sig) > 100 {
		sig = sig[:97] + "..."
	}
	return sig
}
