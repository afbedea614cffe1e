// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cdml parses CDML markup into an element tree and serializes
// trees back to markup. The parser is deliberately lenient: CDML documents
// are hand-authored, so unclosed tags, stray close tags, and bare text must
// produce a best-effort tree instead of an error. Tag and attribute names
// are never case-folded; the FQN and registry layers depend on exact case.
package cdml

import (
	"strings"

	"github.com/petar-djukic/cdml-coder/pkg/types"
)

var unescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// Parse reads CDML text into a document tree. The returned element is a
// synthetic document node (types.DocumentTag) whose children are the
// document's top-level elements. Parse never fails; malformed input yields
// a partial tree with every recognizable element preserved.
func Parse(text string) *types.Element {
	doc := types.NewElement(types.DocumentTag)
	p := &parser{input: text, stack: []*types.Element{doc}}
	p.run()
	return doc
}

type parser struct {
	input string
	pos   int
	stack []*types.Element // Open elements; stack[0] is the document node
}

func (p *parser) top() *types.Element {
	return p.stack[len(p.stack)-1]
}

func (p *parser) run() {
	for p.pos < len(p.input) {
		lt := strings.IndexByte(p.input[p.pos:], '<')
		if lt < 0 {
			p.appendText(p.input[p.pos:])
			return
		}
		if lt > 0 {
			p.appendText(p.input[p.pos : p.pos+lt])
			p.pos += lt
		}
		p.parseTag()
	}
}

// appendText adds raw text to the innermost open element.
func (p *parser) appendText(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	top := p.top()
	if top.Text != "" {
		top.Text += "\n"
	}
	top.Text += unescaper.Replace(strings.TrimRight(s, " \t"))
}

// parseTag consumes one "<...>" construct starting at p.pos.
func (p *parser) parseTag() {
	rest := p.input[p.pos:]

	switch {
	case strings.HasPrefix(rest, "<!--"):
		end := strings.Index(rest, "-->")
		if end < 0 {
			p.pos = len(p.input)
			return
		}
		p.pos += end + len("-->")
		return

	case strings.HasPrefix(rest, "<!"), strings.HasPrefix(rest, "<?"):
		// Doctype or processing instruction; skip to the closing angle.
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			p.pos = len(p.input)
			return
		}
		p.pos += end + 1
		return

	case strings.HasPrefix(rest, "</"):
		p.pos += 2
		name := p.readName()
		p.skipTo('>')
		p.closeElement(name)
		return
	}

	// Opening tag.
	p.pos++ // consume '<'
	name := p.readName()
	if name == "" {
		// A bare '<' in text; keep it as content.
		p.appendText("<")
		return
	}

	el := types.NewElement(name)
	selfClosing := p.readAttrs(el)
	p.top().AppendChild(el)
	if !selfClosing {
		p.stack = append(p.stack, el)
	}
}

// closeElement pops the open-element stack down to the matching tag.
// Unclosed intermediate elements are implicitly closed; a close tag with no
// matching open element is ignored.
func (p *parser) closeElement(name string) {
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i].Tag == name {
			p.stack = p.stack[:i]
			return
		}
	}
}

// readName reads a tag or attribute name: letters, digits, and -_.: runes.
func (p *parser) readName() string {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '>' || c == '/' || c == '=' || c == '<' {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

// readAttrs reads attributes up to the end of the tag. Returns true when
// the tag is self-closing.
func (p *parser) readAttrs(el *types.Element) bool {
	for p.pos < len(p.input) {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return false // Unterminated tag at EOF; keep what we have.
		}
		switch p.input[p.pos] {
		case '>':
			p.pos++
			return false
		case '/':
			p.pos++
			if p.pos < len(p.input) && p.input[p.pos] == '>' {
				p.pos++
			}
			return true
		case '<':
			// A new tag opened before this one closed; recover by treating
			// the current tag as closed here.
			return false
		}

		name := p.readName()
		if name == "" {
			p.pos++
			continue
		}
		value := ""
		p.skipSpace()
		if p.pos < len(p.input) && p.input[p.pos] == '=' {
			p.pos++
			p.skipSpace()
			value = p.readAttrValue()
		}
		el.SetAttr(name, value)
	}
	return false
}

// readAttrValue reads a quoted or bare attribute value, unescaping the
// basic entities. The exact string as written is otherwise preserved.
func (p *parser) readAttrValue() string {
	if p.pos >= len(p.input) {
		return ""
	}
	quote := p.input[p.pos]
	if quote == '"' || quote == '\'' {
		p.pos++
		end := strings.IndexByte(p.input[p.pos:], quote)
		if end < 0 {
			v := p.input[p.pos:]
			p.pos = len(p.input)
			return unescaper.Replace(v)
		}
		v := p.input[p.pos : p.pos+end]
		p.pos += end + 1
		return unescaper.Replace(v)
	}

	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '>' || c == '/' {
			break
		}
		p.pos++
	}
	return unescaper.Replace(p.input[start:p.pos])
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return
		}
		p.pos++
	}
}

func (p *parser) skipTo(b byte) {
	idx := strings.IndexByte(p.input[p.pos:], b)
	if idx < 0 {
		p.pos = len(p.input)
		return
	}
	p.pos += idx + 1
}
