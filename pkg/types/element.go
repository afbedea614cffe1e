// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types holds the shared data model for cdml-coder: the CDML
// element tree, fully qualified names, change trees, component and
// interface definitions, context manifests, and prompt payloads.
package types

import "strings"

// DocumentTag is the tag of the synthetic root element returned by the
// parser. Its children are the document's top-level elements.
const DocumentTag = "#document"

// Element is a node in a parsed CDML document tree. Tag and attribute
// names are case-sensitive; attribute insertion order is preserved for
// serialization but irrelevant for equality. An Element is never mutated
// after parsing except by the environment merger, which owns its target
// tree exclusively for the duration of the merge.
type Element struct {
	Tag      string            // Case-sensitive tag name
	Attrs    map[string]string // Attribute values, exact strings as written
	AttrKeys []string          // Attribute names in document order
	Text     string            // Direct text content, original whitespace preserved
	Children []*Element        // Ordered child elements
	Parent   *Element          // Enclosing element; nil for the document node
}

// NewElement creates an element with an empty attribute map.
func NewElement(tag string) *Element {
	return &Element{
		Tag:   tag,
		Attrs: make(map[string]string),
	}
}

// SetAttr sets an attribute value, recording insertion order for new keys.
func (e *Element) SetAttr(name, value string) {
	if _, ok := e.Attrs[name]; !ok {
		e.AttrKeys = append(e.AttrKeys, name)
	}
	e.Attrs[name] = value
}

// Attr returns an attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// AttrOr returns an attribute value, or the fallback when absent.
func (e *Element) AttrOr(name, fallback string) string {
	if v, ok := e.Attrs[name]; ok {
		return v
	}
	return fallback
}

// RemoveAttr deletes an attribute and its ordering entry.
func (e *Element) RemoveAttr(name string) {
	if _, ok := e.Attrs[name]; !ok {
		return
	}
	delete(e.Attrs, name)
	for i, k := range e.AttrKeys {
		if k == name {
			e.AttrKeys = append(e.AttrKeys[:i], e.AttrKeys[i+1:]...)
			break
		}
	}
}

// AppendChild adds a child element and sets its parent back-reference.
func (e *Element) AppendChild(child *Element) {
	child.Parent = e
	e.Children = append(e.Children, child)
}

// RemoveChild deletes the child at index i. Out-of-range indexes are ignored.
func (e *Element) RemoveChild(i int) {
	if i < 0 || i >= len(e.Children) {
		return
	}
	e.Children[i].Parent = nil
	e.Children = append(e.Children[:i], e.Children[i+1:]...)
}

// DirectText returns the element's own text content with surrounding
// whitespace trimmed. Text inside nested elements is excluded.
func (e *Element) DirectText() string {
	return strings.TrimSpace(e.Text)
}

// NestedText returns the depth-first concatenation of the element's text
// and all descendant text, newline-joined, skipping empty entries.
func (e *Element) NestedText() string {
	var parts []string
	e.collectText(&parts)
	return strings.Join(parts, "\n")
}

func (e *Element) collectText(parts *[]string) {
	if t := strings.TrimSpace(e.Text); t != "" {
		*parts = append(*parts, t)
	}
	for _, c := range e.Children {
		c.collectText(parts)
	}
}

// Siblings returns the element's siblings in document order, excluding the
// element itself. Returns nil for elements without a parent.
func (e *Element) Siblings() []*Element {
	if e.Parent == nil {
		return nil
	}
	var siblings []*Element
	for _, c := range e.Parent.Children {
		if c != e {
			siblings = append(siblings, c)
		}
	}
	return siblings
}

// FindChild returns the first direct child with the given tag, or nil.
func (e *Element) FindChild(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// FindChildren returns all direct children with the given tag, in order.
func (e *Element) FindChildren(tag string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy of the element subtree. The copy's parent is nil.
func (e *Element) Clone() *Element {
	cp := &Element{
		Tag:      e.Tag,
		Attrs:    make(map[string]string, len(e.Attrs)),
		AttrKeys: append([]string(nil), e.AttrKeys...),
		Text:     e.Text,
	}
	for k, v := range e.Attrs {
		cp.Attrs[k] = v
	}
	for _, c := range e.Children {
		cp.AppendChild(c.Clone())
	}
	return cp
}
