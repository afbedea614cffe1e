// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package cdml

import (
	"strings"

	"github.com/petar-djukic/cdml-coder/pkg/types"
)

const indentStep = "  "

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Serialize renders an element tree back to CDML text. Attribute order
// follows insertion order; structure and attribute content round-trip
// exactly, exact whitespace does not.
func Serialize(el *types.Element) string {
	var b strings.Builder
	if el.Tag == types.DocumentTag {
		for _, c := range el.Children {
			writeElement(&b, c, 0)
		}
	} else {
		writeElement(&b, el, 0)
	}
	return b.String()
}

func writeElement(b *strings.Builder, el *types.Element, depth int) {
	indent := strings.Repeat(indentStep, depth)
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(el.Tag)
	for _, k := range el.AttrKeys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(el.Attrs[k]))
		b.WriteByte('"')
	}

	text := el.DirectText()
	if len(el.Children) == 0 && text == "" {
		b.WriteString("/>\n")
		return
	}

	b.WriteByte('>')
	if len(el.Children) == 0 {
		b.WriteString(textEscaper.Replace(text))
		b.WriteString("</")
		b.WriteString(el.Tag)
		b.WriteString(">\n")
		return
	}

	b.WriteByte('\n')
	if text != "" {
		b.WriteString(indent)
		b.WriteString(indentStep)
		b.WriteString(textEscaper.Replace(text))
		b.WriteByte('\n')
	}
	for _, c := range el.Children {
		writeElement(b, c, depth+1)
	}
	b.WriteString(indent)
	b.WriteString("</")
	b.WriteString(el.Tag)
	b.WriteString(">\n")
}
