// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// ChangeKind classifies one node of a diff result.
type ChangeKind string

const (
	ChangeAdded     ChangeKind = "added"
	ChangeRemoved   ChangeKind = "removed"
	ChangeModified  ChangeKind = "modified"
	ChangeUnchanged ChangeKind = "unchanged"
)

// ElementChange is one node of a structural diff result. A node is
// "modified" iff its attributes changed, its text changed after whitespace
// normalization, or any descendant is non-unchanged. Added and removed
// nodes have their entire subtree uniformly marked added or removed.
type ElementChange struct {
	Kind     ChangeKind        // What happened to this element
	Tag      string            // Element tag name
	Path     string            // " > "-joined path from the document root
	OldAttrs map[string]string // Previous attributes; set when attributes changed or element removed
	NewAttrs map[string]string // Current attributes; set when attributes changed or element added
	OldText  string            // Previous direct text; set only when text changed
	NewText  string            // Current direct text; set only when text changed
	Children []*ElementChange  // Ordered child changes
}

// ChangeSummary tallies change kinds across an entire diff result tree,
// nested nodes included.
type ChangeSummary struct {
	Added     int
	Removed   int
	Modified  int
	Unchanged int
}

// DiffResult is the outcome of diffing two document revisions.
type DiffResult struct {
	HasChanges bool             // True when any node is non-unchanged
	Changes    []*ElementChange // Top-level element changes in document order
	Summary    ChangeSummary
}
