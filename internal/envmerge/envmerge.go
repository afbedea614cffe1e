// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package envmerge applies environment-specific override documents onto a
// base document. Overrides live in side-car files selected by platform,
// distribution, and architecture, applied least to most specific so the
// most specific file wins per attribute.
package envmerge

import (
	"fmt"
	"os"
	"strings"

	"github.com/petar-djukic/cdml-coder/internal/cdml"
	"github.com/petar-djukic/cdml-coder/pkg/types"
)

// DetectFiles returns the override files that exist for the given base
// document path and environment, least specific first. baseName is the
// document path with its ".cdml" suffix ("app.cdml" looks for
// "app.env.cdml", "app.env.linux.cdml", ...). Empty platform disables
// everything but the bare ".env" candidate; empty arch or distro disables
// the candidates that need them.
func DetectFiles(baseName, platform, arch, distro string) []string {
	stem := strings.TrimSuffix(baseName, ".cdml")

	var candidates []string
	candidates = append(candidates, stem+".env.cdml")
	if platform != "" {
		candidates = append(candidates, fmt.Sprintf("%s.env.%s.cdml", stem, platform))
		if arch != "" {
			candidates = append(candidates, fmt.Sprintf("%s.env.%s.%s.cdml", stem, platform, arch))
		}
		if distro != "" {
			candidates = append(candidates, fmt.Sprintf("%s.env.%s.%s.cdml", stem, platform, distro))
			if arch != "" {
				candidates = append(candidates, fmt.Sprintf("%s.env.%s.%s.%s.cdml", stem, platform, distro, arch))
			}
		}
	}

	var out []string
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			out = append(out, c)
		}
	}
	return out
}

// Merge overlays one override tree onto a base tree, returning a new tree.
// For each override child, the first base child with the same tag is the
// merge target: its attributes are overridden key by key, its text is
// replaced when the override carries non-empty text, and the merge recurses
// into its children. An override child with remove="true" deletes the
// target, or does nothing when no target exists; it is never appended.
// Other override children with no tag match are appended.
func Merge(base, override *types.Element) *types.Element {
	out := base.Clone()
	mergeInto(out, override)
	return out
}

func mergeInto(base, override *types.Element) {
	for _, oc := range override.Children {
		idx := childIndex(base, oc.Tag)
		if oc.AttrOr("remove", "") == "true" {
			// A removal directive never lands in the effective document,
			// even when its target is already gone.
			if idx >= 0 {
				base.RemoveChild(idx)
			}
			continue
		}
		if idx < 0 {
			base.AppendChild(oc.Clone())
			continue
		}
		target := base.Children[idx]
		for _, key := range oc.AttrKeys {
			target.SetAttr(key, oc.Attrs[key])
		}
		if strings.TrimSpace(oc.Text) != "" {
			target.Text = oc.Text
		}
		mergeInto(target, oc)
	}
}

func childIndex(e *types.Element, tag string) int {
	for i, c := range e.Children {
		if c.Tag == tag {
			return i
		}
	}
	return -1
}

// Apply reads the base document and every detected override file, merges
// them in order, and returns the effective document tree. Override files
// that fail to read are skipped.
func Apply(basePath, platform, arch, distro string) (*types.Element, error) {
	raw, err := os.ReadFile(basePath)
	if err != nil {
		return nil, fmt.Errorf("reading base document: %w", err)
	}
	doc := cdml.Parse(string(raw))

	for _, path := range DetectFiles(basePath, platform, arch, distro) {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		doc = Merge(doc, cdml.Parse(string(data)))
	}
	return doc, nil
}

// Render serializes an effective document, children of the synthetic
// document root concatenated.
func Render(doc *types.Element) string {
	if doc.Tag != types.DocumentTag {
		return cdml.Serialize(doc)
	}
	var b strings.Builder
	for i, c := range doc.Children {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(cdml.Serialize(c))
	}
	return b.String()
}
