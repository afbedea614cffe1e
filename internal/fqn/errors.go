// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package fqn

import (
	"fmt"
	"strings"
)

// ParseError describes an FQN grammar violation. It carries the offending
// raw input so callers can present an actionable message.
type ParseError struct {
	Raw    string // The input that failed to parse
	Reason string // What was wrong with it
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid FQN %q: %s", e.Raw, e.Reason)
}

// ResolveError indicates an FQN could not be resolved against the registry.
// Candidates lists every registry key that was tried, in order.
type ResolveError struct {
	Raw        string   // The FQN that failed to resolve
	Candidates []string // Registry keys tried, most specific first
}

func (e *ResolveError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("cannot resolve %q: no registry", e.Raw)
	}
	return fmt.Sprintf("cannot resolve %q (tried %s)", e.Raw, strings.Join(e.Candidates, ", "))
}
