// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package assemble builds the generation prompt for one element change:
// the target state rendered from the structural diff, scope-resolved code
// references, architectural facts, interface contracts, and facet-filtered
// dependency interfaces.
package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/cdml-coder/internal/diff"
	"github.com/petar-djukic/cdml-coder/internal/facets"
	"github.com/petar-djukic/cdml-coder/internal/fqn"
	"github.com/petar-djukic/cdml-coder/internal/manifest"
	"github.com/petar-djukic/cdml-coder/internal/outline"
	"github.com/petar-djukic/cdml-coder/pkg/types"
)

// refReadWorkers bounds concurrent reference file reads.
const refReadWorkers = 8

// Input carries everything one assembly call needs. Manifest and Registry
// may be nil; assembly then proceeds without refs, facts, or interface
// obligations. Constraints are locked-element descriptions the caller
// derived; the assembler never inspects lock attributes itself.
type Input struct {
	Change      *types.ElementChange
	ScopePath   string
	Manifest    *types.ContextManifest
	Registry    types.Registry
	ProjectRoot string
	Constraints []string
	Logger      *zap.Logger
}

// Assembler assembles prompts. The outliner cache persists across calls.
type Assembler struct {
	outliner *outline.Outliner
}

// New creates an assembler with a fresh outline cache.
func New() *Assembler {
	return &Assembler{outliner: outline.NewOutliner()}
}

// Assemble builds the prompt payload for one element change. Reference
// files are read concurrently; unreadable ones are silently omitted, the
// prompt degrades rather than fails.
func (a *Assembler) Assemble(ctx context.Context, in Input) (*types.AssembledPrompt, error) {
	if in.Change == nil {
		return nil, fmt.Errorf("nil change")
	}
	logger := in.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &types.AssembledPrompt{
		TargetState:  RenderTargetState(in.Change),
		CurrentFiles: make(map[string]string),
		Constraints:  in.Constraints,
	}

	var sc types.ScopeContext
	if in.Manifest != nil {
		sc = manifest.ResolveScope(in.Manifest, in.ScopePath)
	}

	for _, fact := range sc.Facts {
		text := fact.Text
		if fact.Source != "" {
			text = fmt.Sprintf("%s (%s)", text, fact.Source)
		}
		p.Facts = append(p.Facts, text)
	}

	if err := a.readRefs(ctx, in, sc.Refs, p, logger); err != nil {
		return nil, err
	}

	scope := manifest.ScopeSegments(in.ScopePath)
	for _, ob := range sc.Interfaces {
		switch ob.Kind {
		case types.ObligationFulfills:
			if proj, ok := resolveContract(ob, scope, in.Registry); ok {
				p.Contracts = append(p.Contracts, proj)
			} else {
				logger.Debug("skipping unresolvable fulfills obligation",
					zap.String("component", ob.Component))
			}
		case types.ObligationDepends:
			if proj, ok := resolveDependency(ob, scope, in.Registry); ok {
				p.Dependencies = append(p.Dependencies, proj)
			} else {
				logger.Debug("skipping unresolvable depends obligation",
					zap.String("component", ob.Component))
			}
		}
	}

	p.Prompt = composePrompt(p)
	return p, nil
}

// readRefs reads reference files concurrently and fills CurrentFiles and
// ModifyTargets. Read failures drop the ref from the current-state map;
// generation still proceeds. Modify targets are recorded regardless of
// readability: a modify ref may name a file the generation is about to
// create.
func (a *Assembler) readRefs(ctx context.Context, in Input, refs []types.CodeRef, p *types.AssembledPrompt, logger *zap.Logger) error {
	for _, ref := range refs {
		if ref.Role == "modify" {
			p.ModifyTargets = append(p.ModifyTargets, ref)
		}
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(refReadWorkers)

	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, ok := a.readRef(ctx, in.ProjectRoot, ref, logger)
			if !ok {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			p.CurrentFiles[ref.File] = content
			return nil
		})
	}
	return g.Wait()
}

// readRef loads one reference, applying the role, line range, and key
// filter. The second return is false when the ref cannot be served.
func (a *Assembler) readRef(ctx context.Context, root string, ref types.CodeRef, logger *zap.Logger) (string, bool) {
	path := filepath.Join(root, ref.File)

	if ref.Role == "outline" {
		text, err := a.outliner.File(ctx, path)
		if err != nil {
			logger.Debug("skipping outline ref", zap.String("file", ref.File), zap.Error(err))
			return "", false
		}
		return text, true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("skipping unreadable ref", zap.String("file", ref.File), zap.Error(err))
		return "", false
	}
	content := string(data)

	if ref.Lines != "" {
		sliced, err := sliceLines(content, ref.Lines)
		if err != nil {
			logger.Debug("skipping ref with bad line range",
				zap.String("file", ref.File), zap.String("lines", ref.Lines))
			return "", false
		}
		content = sliced
	}
	if len(ref.Keys) > 0 {
		content = filterKeys(content, ref.Keys)
	}
	return content, true
}

// sliceLines returns the 1-indexed inclusive line range "N" or "N-M".
func sliceLines(content, spec string) (string, error) {
	lines := strings.Split(content, "\n")

	start, end := 0, 0
	var err error
	if i := strings.Index(spec, "-"); i >= 0 {
		if start, err = strconv.Atoi(spec[:i]); err != nil {
			return "", fmt.Errorf("bad line range %q", spec)
		}
		if end, err = strconv.Atoi(spec[i+1:]); err != nil {
			return "", fmt.Errorf("bad line range %q", spec)
		}
	} else {
		if start, err = strconv.Atoi(spec); err != nil {
			return "", fmt.Errorf("bad line range %q", spec)
		}
		end = start
	}

	if start < 1 || end < start || start > len(lines) {
		return "", fmt.Errorf("line range %q out of bounds", spec)
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n"), nil
}

// filterKeys keeps lines whose key (text before the first "=", trimmed) is
// in the requested set. Lines without "=" are dropped.
func filterKeys(content string, keys []string) string {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}

	var out []string
	for _, line := range strings.Split(content, "\n") {
		i := strings.Index(line, "=")
		if i < 0 {
			continue
		}
		if want[strings.TrimSpace(line[:i])] {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// resolveContract resolves a fulfills obligation to the full interface of
// the named component. A contract always carries every facet; fulfilling
// code does not get to pick a subset.
func resolveContract(ob types.InterfaceObligation, scope []string, reg types.Registry) (types.ProjectedInterface, bool) {
	if reg == nil {
		return types.ProjectedInterface{}, false
	}
	f, err := fqn.Parse(ob.Component)
	if err != nil {
		return types.ProjectedInterface{}, false
	}
	ref, err := fqn.Resolve(f, scope, reg)
	if err != nil || ref.Component.Interface == nil {
		return types.ProjectedInterface{}, false
	}
	return types.ProjectedInterface{
		Source:  ref.Key,
		Purpose: "contract to fulfill",
		Facets:  ref.Component.Interface.Facets,
	}, true
}

// resolveDependency resolves a depends obligation and projects the target
// interface down to the requested facets.
func resolveDependency(ob types.InterfaceObligation, scope []string, reg types.Registry) (types.ProjectedInterface, bool) {
	if reg == nil {
		return types.ProjectedInterface{}, false
	}
	f, err := fqn.Parse(ob.Component)
	if err != nil {
		return types.ProjectedInterface{}, false
	}
	ref, err := fqn.Resolve(f, scope, reg)
	if err != nil || ref.Component.Interface == nil {
		return types.ProjectedInterface{}, false
	}
	dep := types.DependencyDefinition{
		Target: ob.Component,
		Facets: ob.Facets,
		Usage:  ob.Usage,
	}
	return facets.Project(dep, ref.Component.Interface, ref.Key), true
}

// RenderTargetState renders one change node as readable text: kind, path,
// current attributes, text delta, and one-line summaries of direct
// children so the model sees the element in context.
func RenderTargetState(c *types.ElementChange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", c.Kind, c.Path)

	if len(c.NewAttrs) > 0 {
		keys := make([]string, 0, len(c.NewAttrs))
		for k := range c.NewAttrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s=%q\n", k, c.NewAttrs[k])
		}
	}

	switch {
	case c.OldText != "" && c.NewText != "":
		fmt.Fprintf(&b, "  text: %s\n", diff.RenderTextDelta(c.OldText, c.NewText))
	case c.NewText != "":
		fmt.Fprintf(&b, "  text: %s\n", c.NewText)
	case c.OldText != "":
		fmt.Fprintf(&b, "  text removed: %s\n", c.OldText)
	}

	for _, child := range c.Children {
		fmt.Fprintf(&b, "  - [%s] %s\n", child.Kind, child.Tag)
	}
	return b.String()
}

// composePrompt renders the final prompt text in a fixed section order.
func composePrompt(p *types.AssembledPrompt) string {
	var b strings.Builder

	b.WriteString("# Target state\n\n")
	b.WriteString(p.TargetState)
	b.WriteString("\n")

	if len(p.CurrentFiles) > 0 {
		b.WriteString("# Current state\n\n")
		paths := make([]string, 0, len(p.CurrentFiles))
		for path := range p.CurrentFiles {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			fmt.Fprintf(&b, "%s\n```\n%s\n```\n\n", path, strings.TrimRight(p.CurrentFiles[path], "\n"))
		}
	}

	if len(p.Contracts) > 0 {
		b.WriteString("# Interface contracts\n\n")
		b.WriteString(facets.Format(p.Contracts))
		b.WriteString("\n")
	}

	if len(p.Dependencies) > 0 {
		b.WriteString("# Dependency interfaces\n\n")
		b.WriteString(facets.Format(p.Dependencies))
		b.WriteString("\n")
	}

	if len(p.Constraints) > 0 {
		b.WriteString("# Constraints\n\n")
		for _, c := range p.Constraints {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}

	if len(p.Facts) > 0 {
		b.WriteString("# Facts\n\n")
		for _, f := range p.Facts {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}

	if len(p.ModifyTargets) > 0 {
		b.WriteString("# Files to modify\n\n")
		for _, ref := range p.ModifyTargets {
			line := "- " + ref.File
			if ref.Lines != "" {
				line += " (lines " + ref.Lines + ")"
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(instructionFooter)
	return b.String()
}

const instructionFooter = `# Instructions

Implement the target state described above.
- Satisfy every interface contract in full.
- Respect the dependency interfaces; do not reach past their facets.
- Never modify locked elements listed under constraints.
- Follow the architectural facts and decisions.
- Return the complete content of every file you create or change. For each
  file, write its path on a line of its own, then the full file content in
  a fenced code block.
`
