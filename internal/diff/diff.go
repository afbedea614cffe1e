// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package diff aligns two revisions of a CDML document and emits a change
// tree. Alignment is positional: sibling lists are walked by index, never
// by content similarity. Inserting an element anywhere but the end of a
// sibling list therefore shifts every later element onto a different
// counterpart and produces cascading remove/add pairs. That is a known
// property of the alignment, kept deliberately; do not replace it with an
// LCS-based matcher.
package diff

import (
	"strings"

	"github.com/petar-djukic/cdml-coder/internal/cdml"
	"github.com/petar-djukic/cdml-coder/pkg/types"
)

// Diff parses both document revisions and aligns their top-level element
// sequences. Neither input tree is ever mutated; each call parses fresh.
func Diff(oldText, newText string) *types.DiffResult {
	oldDoc := cdml.Parse(oldText)
	newDoc := cdml.Parse(newText)

	result := &types.DiffResult{
		Changes: diffSequence(oldDoc.Children, newDoc.Children, ""),
	}
	for _, c := range result.Changes {
		tally(c, &result.Summary)
	}
	result.HasChanges = result.Summary.Added+result.Summary.Removed+result.Summary.Modified > 0
	return result
}

// diffSequence walks two sibling lists by index. Index positions present
// on only one side become whole-subtree additions or removals; a tag
// mismatch at the same index becomes a removal plus an addition.
func diffSequence(old, new []*types.Element, parentPath string) []*types.ElementChange {
	var changes []*types.ElementChange

	n := len(old)
	if len(new) > n {
		n = len(new)
	}

	for i := 0; i < n; i++ {
		switch {
		case i >= len(old):
			changes = append(changes, markSubtree(new[i], childPath(parentPath, new[i].Tag), types.ChangeAdded))
		case i >= len(new):
			changes = append(changes, markSubtree(old[i], childPath(parentPath, old[i].Tag), types.ChangeRemoved))
		case old[i].Tag != new[i].Tag:
			changes = append(changes,
				markSubtree(old[i], childPath(parentPath, old[i].Tag), types.ChangeRemoved),
				markSubtree(new[i], childPath(parentPath, new[i].Tag), types.ChangeAdded))
		default:
			changes = append(changes, diffElement(old[i], new[i], childPath(parentPath, old[i].Tag)))
		}
	}

	return changes
}

// diffElement compares two same-tag elements: attributes by set+value
// equality, direct text after whitespace normalization, children
// recursively by position.
func diffElement(old, new *types.Element, path string) *types.ElementChange {
	change := &types.ElementChange{
		Kind: types.ChangeUnchanged,
		Tag:  old.Tag,
		Path: path,
	}

	attrsChanged := !attrsEqual(old.Attrs, new.Attrs)
	if attrsChanged {
		change.OldAttrs = copyAttrs(old.Attrs)
		change.NewAttrs = copyAttrs(new.Attrs)
	}

	oldText := normalizeText(old.Text)
	newText := normalizeText(new.Text)
	textChanged := oldText != newText
	if textChanged {
		change.OldText = oldText
		change.NewText = newText
	}

	change.Children = diffSequence(old.Children, new.Children, path)

	childChanged := false
	for _, c := range change.Children {
		if c.Kind != types.ChangeUnchanged {
			childChanged = true
			break
		}
	}

	if attrsChanged || textChanged || childChanged {
		change.Kind = types.ChangeModified
	}
	return change
}

// markSubtree recursively marks an element and all of its descendants with
// a uniform added or removed kind. An added or removed subtree is never
// partially modified.
func markSubtree(el *types.Element, path string, kind types.ChangeKind) *types.ElementChange {
	change := &types.ElementChange{
		Kind: kind,
		Tag:  el.Tag,
		Path: path,
	}

	if kind == types.ChangeAdded {
		if len(el.Attrs) > 0 {
			change.NewAttrs = copyAttrs(el.Attrs)
		}
		if t := normalizeText(el.Text); t != "" {
			change.NewText = t
		}
	} else {
		if len(el.Attrs) > 0 {
			change.OldAttrs = copyAttrs(el.Attrs)
		}
		if t := normalizeText(el.Text); t != "" {
			change.OldText = t
		}
	}

	for _, c := range el.Children {
		change.Children = append(change.Children, markSubtree(c, childPath(path, c.Tag), kind))
	}
	return change
}

// ChangedElements flattens a diff result into every non-unchanged node in
// document order, parents before children. Unchanged nodes are recursed
// into but not collected: a child can be changed while its parent merely
// counts as modified.
func ChangedElements(result *types.DiffResult) []*types.ElementChange {
	var out []*types.ElementChange
	for _, c := range result.Changes {
		collectChanged(c, &out)
	}
	return out
}

func collectChanged(c *types.ElementChange, out *[]*types.ElementChange) {
	if c.Kind != types.ChangeUnchanged {
		*out = append(*out, c)
	}
	for _, child := range c.Children {
		collectChanged(child, out)
	}
}

func tally(c *types.ElementChange, s *types.ChangeSummary) {
	switch c.Kind {
	case types.ChangeAdded:
		s.Added++
	case types.ChangeRemoved:
		s.Removed++
	case types.ChangeModified:
		s.Modified++
	default:
		s.Unchanged++
	}
	for _, child := range c.Children {
		tally(child, s)
	}
}

func childPath(parentPath, tag string) string {
	if parentPath == "" {
		return tag
	}
	return parentPath + " > " + tag
}

// normalizeText collapses whitespace runs to single spaces and trims,
// so formatting-only edits never count as changes.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attrsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func copyAttrs(attrs map[string]string) map[string]string {
	cp := make(map[string]string, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	return cp
}
