// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// ContextManifest is the parsed side-car manifest for one source document.
// It maps scope paths to code references, architectural facts, and
// interface obligations.
type ContextManifest struct {
	ForFile       string         // Source document the manifest belongs to
	AutoGenerated bool           // True when the manifest was machine-written
	Global        ScopeContext   // Entries with no scope restriction
	Scopes        []ContextScope // Scope entries in document order
}

// ContextScope is one scope entry keyed by a " > "-delimited path.
type ContextScope struct {
	Path    string // Exact scope path, e.g. "app > api"
	Context ScopeContext
}

// ScopeContext carries the context entries attached to one scope (or the
// global section). All entries are additive; nothing overrides anything.
type ScopeContext struct {
	Refs       []CodeRef
	Facts      []Fact
	Interfaces []InterfaceObligation
	Tools      []ToolDirective
}

// CodeRef points at a code artifact, optionally narrowed to a line range or
// a set of key=value keys.
type CodeRef struct {
	File  string   // Project-root-relative path
	Role  string   // What the artifact is for ("context", "modify", "outline", ...)
	Lines string   // "N" or "N-M", 1-indexed inclusive; empty for the whole file
	Keys  []string // Keep only lines whose key (text before "=") is listed; empty for all
}

// Fact is a free-text architectural fact, optionally tagged with the
// decision source it came from.
type Fact struct {
	Text   string
	Source string // Decision source tag, e.g. an ADR identifier; may be empty
}

// ObligationKind distinguishes interface obligations.
type ObligationKind string

const (
	ObligationFulfills ObligationKind = "fulfills"
	ObligationDepends  ObligationKind = "depends"
)

// InterfaceObligation declares that a scope fulfills a component's
// interface or depends on one.
type InterfaceObligation struct {
	Kind      ObligationKind
	Component string   // Raw FQN text of the component
	Facets    []string // Facet subset for depends obligations; empty means all
	Usage     string   // Usage annotation for depends obligations
}

// ToolDirective grants or denies a scope access to a named tool.
type ToolDirective struct {
	Name   string // Tool name
	Policy string // "allow" or "deny"
}
