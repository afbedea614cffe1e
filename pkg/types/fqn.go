// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// FQN is a parsed fully qualified component name. The grammar is
//
//	[project ":"] segment (":" segment)* ["#" fragment [":" sub-segment]*] ["@" version]
//
// The project prefix is ambiguous without a registry, so parsing never
// assigns Project; resolution does. Segments is never empty for a
// successfully parsed FQN.
type FQN struct {
	Project      string   // Explicit project name; assigned during resolution
	Segments     []string // Path segments, at least one
	Fragment     string   // Facet fragment type ("api", "infra", ...); empty when absent
	FragmentPath []string // Sub-path inside the fragment; only meaningful with Fragment
	Version      string   // Version string after "@"; empty when absent
	Raw          string   // Original text the FQN was parsed from
}

// ResolvedRef is the result of resolving an FQN against a registry.
type ResolvedRef struct {
	Key       string               // Registry key that matched
	Component *ComponentDefinition // The resolved component
	// Fragment holds the resolved fragment value: *InterfaceDefinition for
	// "api"/"interface", the implementation payload string for
	// "impl"/"implementation", *AspectDefinition or *InterfaceFacet for
	// other fragment types. Nil when the FQN has no fragment or the
	// fragment does not exist (absence is not an error).
	Fragment any
}

// Registry resolves component keys. Implemented by internal/project.
type Registry interface {
	// ProjectName returns the current project's name.
	ProjectName() string
	// IsProject reports whether name is a known project.
	IsProject(name string) bool
	// Lookup returns the component registered under key.
	Lookup(key string) (*ComponentDefinition, bool)
}
