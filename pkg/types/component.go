// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// ComponentDefinition is a named unit discovered from a project's component
// files. The interface is the only part a dependent may see; the
// implementation payload is strictly private to the component.
type ComponentDefinition struct {
	FQN            string                 // Colon-joined scope key within the project
	Name           string                 // Component name (last FQN segment)
	DisplayName    string                 // Human-readable name; defaults to Name
	SourceFile     string                 // Component file the definition came from
	Interface      *InterfaceDefinition   // Exposed interface; nil when the component exposes nothing
	Constraints    *ConstraintDefinition  // Environment requirements; nil when unconstrained
	Dependencies   []DependencyDefinition // Declared dependencies in declaration order
	Implementation string                 // Opaque implementation payload, never exposed to dependents
	Aspects        []AspectDefinition     // Auxiliary views linked from aspect files
}

// InterfaceDefinition is what a component exposes to its dependents.
type InterfaceDefinition struct {
	Facets     []InterfaceFacet // Ordered facet list
	Implements []string         // FQNs of interface definitions this one implements
	Extends    []string         // FQNs of interface definitions this one extends
}

// InterfaceFacet is a named, independently exposable slice of an interface.
type InterfaceFacet struct {
	Type    string // Facet type tag ("compute", "network", "api", ...)
	Content string // Facet content, text or serialized markup
}

// DependencyDefinition declares a component's dependency on another
// component, optionally restricted to a facet subset.
type DependencyDefinition struct {
	Target string   // Raw FQN text of the dependency
	Facets []string // Requested facet types; empty means all facets
	Usage  string   // Free-text usage annotation
}

// ConstraintDefinition captures a component's environment requirements.
type ConstraintDefinition struct {
	OS        string
	Arch      string
	Distro    string
	Resources string
	Ports     string
	Services  string
}

// AspectKinds is the fixed set of recognized aspect types.
var AspectKinds = map[string]bool{
	"infra":          true,
	"infrastructure": true,
	"api":            true,
	"data":           true,
	"security":       true,
	"monitoring":     true,
}

// AspectDefinition links an auxiliary view file to its owning component.
type AspectDefinition struct {
	Type      string // Aspect type, one of AspectKinds
	File      string // Aspect file path
	Component string // Owning component FQN key
}

// ProjectedInterface is a source interface filtered down to the facets a
// dependency relationship requests. Every facet in a projection existed,
// unfiltered, in the source interface.
type ProjectedInterface struct {
	Source  string           // FQN of the providing component
	Purpose string           // Usage annotation from the dependency; may be empty
	Facets  []InterfaceFacet // Projected facets in source order
}
