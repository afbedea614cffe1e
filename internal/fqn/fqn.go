// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package fqn parses, builds, and resolves fully qualified component
// names. The grammar is
//
//	[project ":"] segment (":" segment)* ["#" fragment [":" sub-segment]*] ["@" version]
//
// A project prefix cannot be distinguished from an ordinary first segment
// without a registry, so Parse leaves it undetected; Resolve assigns it.
package fqn

import (
	"strings"

	"github.com/petar-djukic/cdml-coder/pkg/types"
)

// Parse reads a raw FQN string. Grammar violations (empty input, empty
// version, empty fragment, empty segment) are loud errors; they are never
// silently defaulted.
func Parse(raw string) (*types.FQN, error) {
	if raw == "" {
		return nil, &ParseError{Raw: raw, Reason: "empty input"}
	}

	f := &types.FQN{Raw: raw}
	rest := raw

	// Version follows everything else: text after the last "@".
	if at := strings.LastIndexByte(rest, '@'); at >= 0 {
		f.Version = rest[at+1:]
		if f.Version == "" {
			return nil, &ParseError{Raw: raw, Reason: "empty version after '@'"}
		}
		rest = rest[:at]
	}

	// Fragment: text after the first "#", further split into type and sub-path.
	if hash := strings.IndexByte(rest, '#'); hash >= 0 {
		frag := rest[hash+1:]
		rest = rest[:hash]
		parts := strings.Split(frag, ":")
		if parts[0] == "" {
			return nil, &ParseError{Raw: raw, Reason: "empty fragment after '#'"}
		}
		f.Fragment = parts[0]
		for _, sub := range parts[1:] {
			if sub == "" {
				return nil, &ParseError{Raw: raw, Reason: "empty fragment sub-segment"}
			}
			f.FragmentPath = append(f.FragmentPath, sub)
		}
	}

	if rest == "" {
		return nil, &ParseError{Raw: raw, Reason: "no segments"}
	}
	for _, seg := range strings.Split(rest, ":") {
		if seg == "" {
			return nil, &ParseError{Raw: raw, Reason: "empty segment"}
		}
		f.Segments = append(f.Segments, seg)
	}

	return f, nil
}

// Stringify renders an FQN back to its text form. For any valid FQN string
// without redundant whitespace, Stringify(Parse(s)) == s.
func Stringify(f *types.FQN) string {
	var b strings.Builder
	if f.Project != "" {
		b.WriteString(f.Project)
		b.WriteByte(':')
	}
	b.WriteString(strings.Join(f.Segments, ":"))
	if f.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(f.Fragment)
		for _, sub := range f.FragmentPath {
			b.WriteByte(':')
			b.WriteString(sub)
		}
	}
	if f.Version != "" {
		b.WriteByte('@')
		b.WriteString(f.Version)
	}
	return b.String()
}

// Build joins an optional project, ancestor names, and a component name
// into an FQN string.
func Build(name string, ancestors []string, project string) string {
	parts := make([]string, 0, len(ancestors)+2)
	if project != "" {
		parts = append(parts, project)
	}
	parts = append(parts, ancestors...)
	parts = append(parts, name)
	return strings.Join(parts, ":")
}

// IsAbsolute reports whether the FQN addresses a component from a project
// root: either it carries an explicit project, or its first segment names a
// registered project or the registry's current project.
func IsAbsolute(f *types.FQN, reg types.Registry) bool {
	if f.Project != "" {
		return true
	}
	if reg == nil || len(f.Segments) == 0 {
		return false
	}
	first := f.Segments[0]
	return reg.IsProject(first) || first == reg.ProjectName()
}

// Resolve looks an FQN up against a registry from within the given scope.
//
// Absolute FQNs are looked up directly, then retried with the current
// project's prefix. Relative FQNs walk the scope chain from the most
// specific prefix to the bare segment join. The FQN itself is never
// mutated; resolution is a pure function.
func Resolve(f *types.FQN, scope []string, reg types.Registry) (*types.ResolvedRef, error) {
	if reg == nil {
		return nil, &ResolveError{Raw: f.Raw}
	}

	key := strings.Join(f.Segments, ":")
	var candidates []string

	if IsAbsolute(f, reg) {
		candidates = []string{key, reg.ProjectName() + ":" + key}
	} else {
		for k := len(scope); k >= 1; k-- {
			candidates = append(candidates, strings.Join(scope[:k], ":")+":"+key)
		}
		candidates = append(candidates, key)
	}

	for _, c := range candidates {
		comp, ok := reg.Lookup(c)
		if !ok {
			continue
		}
		ref := &types.ResolvedRef{Key: c, Component: comp}
		if f.Fragment != "" {
			ref.Fragment = resolveFragment(comp, f.Fragment)
		}
		return ref, nil
	}

	return nil, &ResolveError{Raw: f.Raw, Candidates: candidates}
}

// resolveFragment maps a fragment type to the component's matching facet.
// A fragment that matches nothing resolves to nil; absence of an optional
// view is not an error.
func resolveFragment(comp *types.ComponentDefinition, fragment string) any {
	switch fragment {
	case "api", "interface":
		if comp.Interface != nil {
			return comp.Interface
		}
		return nil
	case "impl", "implementation":
		return comp.Implementation
	}

	for i := range comp.Aspects {
		if comp.Aspects[i].Type == fragment {
			return &comp.Aspects[i]
		}
	}
	if comp.Interface != nil {
		for i := range comp.Interface.Facets {
			if comp.Interface.Facets[i].Type == fragment {
				return &comp.Interface.Facets[i]
			}
		}
	}
	return nil
}
