// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// RenderTextDelta renders a compact inline delta between two text values:
// unchanged runs verbatim, removals as [-x-], insertions as [+y+]. Used by
// the context assembler's target-state block so the generation backend sees
// what changed inside a text edit, not just both versions.
func RenderTextDelta(oldText, newText string) string {
	if oldText == newText {
		return newText
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-")
			b.WriteString(d.Text)
			b.WriteString("-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("[+")
			b.WriteString(d.Text)
			b.WriteString("+]")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}
