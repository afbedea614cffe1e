// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package facets projects component interfaces down to the facet subset a
// dependency relationship requests. Filtering never invents facets: every
// facet in a projection existed, unfiltered, in the source interface.
package facets

import (
	"fmt"
	"strings"

	"github.com/petar-djukic/cdml-coder/internal/fqn"
	"github.com/petar-djukic/cdml-coder/pkg/types"
)

// Project filters a source interface down to the facet types the dependency
// names, preserving source order. A dependency with no facet list sees the
// whole interface. The projection's purpose is the dependency's usage
// annotation, or empty.
func Project(dep types.DependencyDefinition, source *types.InterfaceDefinition, sourceFQN string) types.ProjectedInterface {
	proj := types.ProjectedInterface{
		Source:  sourceFQN,
		Purpose: dep.Usage,
	}

	if len(dep.Facets) == 0 {
		proj.Facets = append(proj.Facets, source.Facets...)
		return proj
	}

	requested := make(map[string]bool, len(dep.Facets))
	for _, f := range dep.Facets {
		requested[f] = true
	}
	for _, facet := range source.Facets {
		if requested[facet.Type] {
			proj.Facets = append(proj.Facets, facet)
		}
	}
	return proj
}

// ResolveProjectedDependencies resolves each of a component's declared
// dependencies within the current scope and projects the resolved
// interfaces, preserving declaration order. Dependencies that fail to
// parse or resolve, and dependencies on components without an interface,
// are skipped: validation is someone else's job, and a best-effort context
// is better than none.
func ResolveProjectedDependencies(comp *types.ComponentDefinition, scope []string, reg types.Registry) []types.ProjectedInterface {
	var out []types.ProjectedInterface

	for _, dep := range comp.Dependencies {
		f, err := fqn.Parse(dep.Target)
		if err != nil {
			continue
		}
		ref, err := fqn.Resolve(f, scope, reg)
		if err != nil || ref.Component.Interface == nil {
			continue
		}
		out = append(out, Project(dep, ref.Component.Interface, ref.Key))
	}
	return out
}

// Format renders projected interfaces as readable text, grouped by source
// FQN, each facet as "type: content".
func Format(list []types.ProjectedInterface) string {
	var b strings.Builder
	for i, proj := range list {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(proj.Source)
		if proj.Purpose != "" {
			fmt.Fprintf(&b, " (%s)", proj.Purpose)
		}
		b.WriteByte('\n')
		for _, facet := range proj.Facets {
			content := facet.Content
			if strings.Contains(content, "\n") {
				content = "\n" + indent(content, "    ")
			}
			fmt.Fprintf(&b, "  %s: %s\n", facet.Type, content)
		}
	}
	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
