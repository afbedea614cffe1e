// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package manifest round-trips the side-car context manifest that maps a
// source document's scope paths to code references, architectural facts,
// and interface obligations, and resolves a scope's effective context by
// walking its prefix chain.
package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/petar-djukic/cdml-coder/internal/cdml"
	"github.com/petar-djukic/cdml-coder/pkg/types"
)

const rootTag = "context-manifest"

// ErrNotManifest is returned when the parsed document has no
// context-manifest root element.
var ErrNotManifest = errors.New("no context-manifest root element")

// Parse reads a context manifest from its CDML form. Missing optional
// attributes default to empty; a missing root element is a loud error.
func Parse(content string) (*types.ContextManifest, error) {
	doc := cdml.Parse(content)
	root := doc.FindChild(rootTag)
	if root == nil {
		return nil, ErrNotManifest
	}

	m := &types.ContextManifest{
		ForFile:       root.AttrOr("for-file", ""),
		AutoGenerated: root.AttrOr("auto-generated", "") == "true",
	}

	if global := root.FindChild("global"); global != nil {
		m.Global = parseScopeContext(global)
	}
	for _, scopeEl := range root.FindChildren("scope") {
		m.Scopes = append(m.Scopes, types.ContextScope{
			Path:    scopeEl.AttrOr("path", ""),
			Context: parseScopeContext(scopeEl),
		})
	}
	return m, nil
}

func parseScopeContext(el *types.Element) types.ScopeContext {
	var sc types.ScopeContext

	for _, c := range el.Children {
		switch c.Tag {
		case "ref":
			sc.Refs = append(sc.Refs, types.CodeRef{
				File:  c.AttrOr("file", ""),
				Role:  c.AttrOr("role", ""),
				Lines: c.AttrOr("lines", ""),
				Keys:  splitList(c.AttrOr("keys", "")),
			})
		case "fact":
			sc.Facts = append(sc.Facts, types.Fact{
				Text:   c.DirectText(),
				Source: c.AttrOr("source", ""),
			})
		case "fulfills":
			sc.Interfaces = append(sc.Interfaces, types.InterfaceObligation{
				Kind:      types.ObligationFulfills,
				Component: c.AttrOr("component", ""),
			})
		case "depends":
			sc.Interfaces = append(sc.Interfaces, types.InterfaceObligation{
				Kind:      types.ObligationDepends,
				Component: c.AttrOr("component", ""),
				Facets:    splitList(c.AttrOr("facets", "")),
				Usage:     c.AttrOr("usage", ""),
			})
		case "tool":
			sc.Tools = append(sc.Tools, types.ToolDirective{
				Name:   c.AttrOr("name", ""),
				Policy: c.AttrOr("policy", "allow"),
			})
		}
	}
	return sc
}

// Serialize renders a manifest back to CDML. The round trip preserves all
// fields; exact whitespace is not guaranteed stable.
func Serialize(m *types.ContextManifest) string {
	root := types.NewElement(rootTag)
	root.SetAttr("for-file", m.ForFile)
	root.SetAttr("auto-generated", strconv.FormatBool(m.AutoGenerated))

	global := types.NewElement("global")
	writeScopeContext(global, m.Global)
	root.AppendChild(global)

	for _, scope := range m.Scopes {
		el := types.NewElement("scope")
		el.SetAttr("path", scope.Path)
		writeScopeContext(el, scope.Context)
		root.AppendChild(el)
	}
	return cdml.Serialize(root)
}

func writeScopeContext(parent *types.Element, sc types.ScopeContext) {
	for _, ob := range sc.Interfaces {
		el := types.NewElement(string(ob.Kind))
		el.SetAttr("component", ob.Component)
		if ob.Kind == types.ObligationDepends {
			if len(ob.Facets) > 0 {
				el.SetAttr("facets", strings.Join(ob.Facets, ","))
			}
			if ob.Usage != "" {
				el.SetAttr("usage", ob.Usage)
			}
		}
		parent.AppendChild(el)
	}
	for _, ref := range sc.Refs {
		el := types.NewElement("ref")
		el.SetAttr("file", ref.File)
		if ref.Role != "" {
			el.SetAttr("role", ref.Role)
		}
		if ref.Lines != "" {
			el.SetAttr("lines", ref.Lines)
		}
		if len(ref.Keys) > 0 {
			el.SetAttr("keys", strings.Join(ref.Keys, ","))
		}
		parent.AppendChild(el)
	}
	for _, fact := range sc.Facts {
		el := types.NewElement("fact")
		if fact.Source != "" {
			el.SetAttr("source", fact.Source)
		}
		el.Text = fact.Text
		parent.AppendChild(el)
	}
	for _, tool := range sc.Tools {
		el := types.NewElement("tool")
		el.SetAttr("name", tool.Name)
		el.SetAttr("policy", tool.Policy)
		parent.AppendChild(el)
	}
}

// ResolveScope collects the effective context for a scope path. The path's
// prefix chain is matched exactly ("a > b > c" matches scopes "a", "a > b",
// and "a > b > c"; nothing else), and matched entries are concatenated
// general to specific onto the global entries. Everything is additive;
// later entries never override earlier ones, but consumers that display
// "later = more specific" rely on this ordering.
func ResolveScope(m *types.ContextManifest, scopePath string) types.ScopeContext {
	out := types.ScopeContext{}
	appendContext(&out, m.Global)

	segments := splitScopePath(scopePath)
	for i := 1; i <= len(segments); i++ {
		candidate := strings.Join(segments[:i], " > ")
		for _, scope := range m.Scopes {
			if scope.Path == candidate {
				appendContext(&out, scope.Context)
			}
		}
	}
	return out
}

func appendContext(dst *types.ScopeContext, src types.ScopeContext) {
	dst.Refs = append(dst.Refs, src.Refs...)
	dst.Facts = append(dst.Facts, src.Facts...)
	dst.Interfaces = append(dst.Interfaces, src.Interfaces...)
	dst.Tools = append(dst.Tools, src.Tools...)
}

func splitScopePath(path string) []string {
	var out []string
	for _, s := range strings.Split(path, ">") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ScopeSegments exposes scope-path splitting for callers that need the
// segment list (FQN resolution within a scope).
func ScopeSegments(path string) []string {
	return splitScopePath(path)
}

// Describe returns a short human-readable summary of a manifest, used in
// debug logging.
func Describe(m *types.ContextManifest) string {
	return fmt.Sprintf("manifest for %s: %d scope(s), %d global ref(s)",
		m.ForFile, len(m.Scopes), len(m.Global.Refs))
}
